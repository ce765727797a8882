package notifier

// TextNotifier is a minimal text notification interface, kept small so
// components can depend on it without importing concrete implementations.
type TextNotifier interface {
	SendText(text string) error
}

// Noop discards all notifications.
type Noop struct{}

func (Noop) SendText(string) error { return nil }
