package ui

import (
	"fmt"
	"os/exec"
	"runtime"
)

// NotificationSender interface for platform-specific notification implementations
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", title, message).Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

// Notifier sends an optional desktop notification when a backup ends
type Notifier struct {
	sender NotificationSender
}

// NewNotifier creates a Notifier for the current platform. Platforms without a
// supported notification tool get a Notifier that only prints.
func NewNotifier() *Notifier {
	var sender NotificationSender

	switch runtime.GOOS {
	case "linux":
		sender = &LinuxNotificationSender{}
	case "darwin":
		sender = &MacOSNotificationSender{}
	}

	return &Notifier{sender: sender}
}

// NewNotifierWithSender creates a Notifier using sender
func NewNotifierWithSender(sender NotificationSender) *Notifier {
	return &Notifier{sender: sender}
}

// SendSuccess reports a finished backup
func (n *Notifier) SendSuccess(title, message string) {
	n.send(title, message)
}

// SendError reports a failed backup
func (n *Notifier) SendError(title, message string) {
	n.send(title, message)
}

func (n *Notifier) send(title, message string) {
	if n == nil || n.sender == nil {
		return
	}
	// Notifications are best effort
	_ = n.sender.Send(title, message)
}
