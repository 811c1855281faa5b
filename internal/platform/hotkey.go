package platform

import (
	"errors"
	"os"
	"os/signal"
	"sync"
)

// SignalHotkey turns a process signal into hotkey presses. The desktop's
// own shortcut settings bind the key combination to a command that sends
// the signal, e.g. `pkill -USR1 panel`.
type SignalHotkey struct {
	sig os.Signal

	mu   sync.Mutex
	ch   chan os.Signal
	done chan struct{}
}

// NewSignalHotkey listens for sig; nil selects the platform default
// (SIGUSR1 on unix, none on windows).
func NewSignalHotkey(sig os.Signal) *SignalHotkey {
	if sig == nil {
		sig = activationSignal()
	}
	return &SignalHotkey{sig: sig}
}

func (h *SignalHotkey) Register(onPress func()) error {
	if h.sig == nil {
		return errors.New("hotkey: no activation signal on this platform; use POST /api/show")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ch != nil {
		return errors.New("hotkey: already registered")
	}
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, h.sig)
	h.ch, h.done = ch, done

	go func() {
		for {
			select {
			case <-ch:
				onPress()
			case <-done:
				return
			}
		}
	}()
	return nil
}

func (h *SignalHotkey) Unregister() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ch == nil {
		return nil
	}
	signal.Stop(h.ch)
	close(h.done)
	h.ch, h.done = nil, nil
	return nil
}
