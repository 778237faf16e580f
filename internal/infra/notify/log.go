package notify

import (
	"context"
	"log/slog"
	"sort"

	"iasrentals/internal/app/policies"
)

// LogNotifier delivers notifications to the application log. It stands in
// until an email or push channel exists.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, note policies.Notification) error {
	if n.Logger == nil {
		return nil
	}
	keys := make([]string, 0, len(note.Data))
	for k := range note.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]any, 0, len(keys)+2)
	attrs = append(attrs, slog.String("user_id", note.UserID), slog.String("template", note.Template))
	for _, k := range keys {
		attrs = append(attrs, slog.String(k, note.Data[k]))
	}
	n.Logger.InfoContext(ctx, "notification", attrs...)
	return nil
}

var _ policies.Notifier = LogNotifier{}
