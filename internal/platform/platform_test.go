package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClipboard(t *testing.T) {
	cb := NewMemoryClipboard("initial")

	got, err := cb.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "initial", got)

	require.NoError(t, cb.WriteText("updated"))
	got, err = cb.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "updated", got)
}

func TestSignalHotkeyWithoutSignal(t *testing.T) {
	h := &SignalHotkey{}
	assert.Error(t, h.Register(func() {}))
	assert.NoError(t, h.Unregister())
}
