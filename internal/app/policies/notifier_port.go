package policies

import "context"

// Notification is a message addressed to one user.
type Notification struct {
	UserID   string
	Template string
	Data     map[string]string
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
