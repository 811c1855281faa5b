package platform

import (
	"errors"
	"sync"

	"github.com/atotto/clipboard"
)

// Clipboard reads and writes the system clipboard as text.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// Hotkey delivers presses of a system-wide activation shortcut.
type Hotkey interface {
	// Register starts calling onPress for every activation. A second
	// Register without Unregister fails.
	Register(onPress func()) error
	// Unregister stops delivery. It is safe to call when not registered.
	Unregister() error
}

// ErrClipboardUnsupported is returned when no clipboard backend exists,
// e.g. on Linux without xclip, xsel or wl-clipboard.
var ErrClipboardUnsupported = errors.New("clipboard: no supported backend on this system")

// SystemClipboard uses the OS clipboard.
type SystemClipboard struct{}

// ClipboardSupported reports whether SystemClipboard can work here.
func ClipboardSupported() bool { return !clipboard.Unsupported }

func (SystemClipboard) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", ErrClipboardUnsupported
	}
	return clipboard.ReadAll()
}

func (SystemClipboard) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnsupported
	}
	return clipboard.WriteAll(text)
}

// MemoryClipboard is an in-process clipboard for headless runs and tests.
type MemoryClipboard struct {
	mu   sync.Mutex
	text string
}

// NewMemoryClipboard returns a clipboard holding text.
func NewMemoryClipboard(text string) *MemoryClipboard {
	return &MemoryClipboard{text: text}
}

func (c *MemoryClipboard) ReadText() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, nil
}

func (c *MemoryClipboard) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	return nil
}
