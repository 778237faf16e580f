package notifications

import (
	"context"
	"log/slog"

	"iasrentals/internal/app/outbox"
)

// Inbox remembers which event ids a consumer already processed.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// Deduplicating drops records whose id the inbox has seen before. A record
// that fails downstream is forgotten so a redelivery can retry it.
type Deduplicating struct {
	Inbox  Inbox
	Next   outbox.Dispatcher
	Logger *slog.Logger
}

func (d *Deduplicating) Dispatch(ctx context.Context, record outbox.EventRecord) error {
	seen, err := d.Inbox.Seen(ctx, record.ID)
	if err != nil {
		return err
	}
	if seen {
		if d.Logger != nil {
			d.Logger.Debug("duplicate event skipped", "event", record.Name, "event_id", record.ID)
		}
		return nil
	}
	if err := d.Next.Dispatch(ctx, record); err != nil {
		if ferr := d.Inbox.Forget(ctx, record.ID); ferr != nil && d.Logger != nil {
			d.Logger.Warn("inbox forget failed", "event_id", record.ID, "error", ferr)
		}
		return err
	}
	return nil
}

var _ outbox.Dispatcher = (*Deduplicating)(nil)
