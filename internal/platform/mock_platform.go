package platform

import "github.com/stretchr/testify/mock"

// MockClipboard is a mock implementation of Clipboard using testify/mock.
type MockClipboard struct {
	mock.Mock
}

func (m *MockClipboard) ReadText() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockClipboard) WriteText(text string) error {
	args := m.Called(text)
	return args.Error(0)
}

// MockHotkey is a mock implementation of Hotkey using testify/mock.
// Press invokes the handler captured by Register.
type MockHotkey struct {
	mock.Mock
	onPress func()
}

func (m *MockHotkey) Register(onPress func()) error {
	m.onPress = onPress
	args := m.Called(onPress)
	return args.Error(0)
}

func (m *MockHotkey) Unregister() error {
	args := m.Called()
	return args.Error(0)
}

// Press simulates a hotkey activation.
func (m *MockHotkey) Press() {
	if m.onPress != nil {
		m.onPress()
	}
}
