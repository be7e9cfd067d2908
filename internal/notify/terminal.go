package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// TerminalNotifier prints notifications as toasts on a terminal.
type TerminalNotifier struct {
	out          io.Writer
	mu           sync.Mutex
	enabled      bool
	bellEnabled  bool
	colorEnabled bool
}

// NewTerminalNotifier creates a TerminalNotifier writing to out. A nil out
// writes to stdout.
func NewTerminalNotifier(out io.Writer) *TerminalNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &TerminalNotifier{
		out:          out,
		enabled:      true,
		bellEnabled:  true,
		colorEnabled: true,
	}
}

// SetBellEnabled enables or disables the terminal bell.
func (tn *TerminalNotifier) SetBellEnabled(enabled bool) {
	tn.mu.Lock()
	defer tn.mu.Unlock()
	tn.bellEnabled = enabled
}

// SetColorEnabled enables or disables colored output.
func (tn *TerminalNotifier) SetColorEnabled(enabled bool) {
	tn.mu.Lock()
	defer tn.mu.Unlock()
	tn.colorEnabled = enabled
}

// SetEnabled enables or disables the notifier.
func (tn *TerminalNotifier) SetEnabled(enabled bool) {
	tn.mu.Lock()
	defer tn.mu.Unlock()
	tn.enabled = enabled
}

// Name returns the name of the notifier.
func (tn *TerminalNotifier) Name() string {
	return "terminal"
}

// IsEnabled returns whether the notifier is enabled.
func (tn *TerminalNotifier) IsEnabled() bool {
	tn.mu.Lock()
	defer tn.mu.Unlock()
	return tn.enabled
}

// Send prints the notification. Alerts ring the bell when enabled.
func (tn *TerminalNotifier) Send(_ context.Context, n Notification) error {
	tn.mu.Lock()
	defer tn.mu.Unlock()

	if tn.bellEnabled && n.Type == NotificationAlert {
		fmt.Fprint(tn.out, "\a")
	}
	_, err := fmt.Fprintln(tn.out, FormatNotification(n, tn.colorEnabled))
	return err
}

// FormatNotification formats a notification for terminal display.
func FormatNotification(n Notification, colorEnabled bool) string {
	var indicator string
	var c *color.Color

	switch n.Type {
	case NotificationAlert:
		indicator = "🔔 ALERT"
		c = color.New(color.FgYellow, color.Bold)
	case NotificationError:
		indicator = "❌ ERROR"
		c = color.New(color.FgRed)
	default:
		indicator = "ℹ️  INFO"
		c = color.New(color.FgWhite)
	}

	if colorEnabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}

	var sb strings.Builder
	sb.WriteString(c.Sprintf("[%s] %s", n.Timestamp.Format("15:04:05"), indicator))
	if n.Title != "" {
		sb.WriteString(" | ")
		sb.WriteString(n.Title)
	}
	sb.WriteString(" | ")
	sb.WriteString(n.Message)
	return sb.String()
}
