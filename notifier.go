package pricegrid

import (
	"context"
	"fmt"
	"strings"
)

// Notifier delivers the out-of-band messages the auth flows produce: the
// verification link after registration and the reset link after a password
// reset request. Delivery transport is the caller's concern.
type Notifier interface {
	SendVerificationLink(ctx context.Context, email, link string) error
	SendResetLink(ctx context.Context, email, link string) error
}

// BuildActionLink joins the frontend base URL, a path, and a token into the
// link embedded in notifications.
func BuildActionLink(frontendURL, path, token string) string {
	base := strings.TrimRight(frontendURL, "/")
	path = strings.Trim(path, "/")
	return fmt.Sprintf("%s/%s/%s", base, path, token)
}

// LogNotifier prints notifications to stdout. It is the default wiring for
// local development, where there is no mail transport to speak to.
type LogNotifier struct {
	Logger Logger
}

func NewLogNotifier(logger Logger) *LogNotifier {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) SendVerificationLink(_ context.Context, email, link string) error {
	n.print("account verification", email, link)
	return nil
}

func (n *LogNotifier) SendResetLink(_ context.Context, email, link string) error {
	n.print("password reset", email, link)
	return nil
}

func (n *LogNotifier) print(kind, email, link string) {
	fmt.Println("====== SENDING EMAIL NOTIFICATION =======")
	fmt.Printf("kind: %s\n", kind)
	fmt.Printf("to: %s\n", email)
	fmt.Printf("link: %s\n", link)
}
