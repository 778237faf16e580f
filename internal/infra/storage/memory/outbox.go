package memory

import (
	"context"
	"log/slog"
	"sync"

	appoutbox "iasrentals/internal/app/outbox"
)

// Outbox buffers records until Flush, then hands them to Dispatcher in
// insertion order. Without a dispatcher flushed records are dropped.
type Outbox struct {
	mu         sync.Mutex
	records    []appoutbox.EventRecord
	Dispatcher appoutbox.Dispatcher
	Logger     *slog.Logger
}

func NewOutbox(dispatcher appoutbox.Dispatcher, logger *slog.Logger) *Outbox {
	return &Outbox{Dispatcher: dispatcher, Logger: logger}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

// Flush delivers buffered records. The producing command has already
// committed, so delivery failures are logged rather than returned.
func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	pending := o.records
	o.records = nil
	o.mu.Unlock()

	if o.Dispatcher == nil {
		return nil
	}
	for _, rec := range pending {
		if err := o.Dispatcher.Dispatch(ctx, rec); err != nil && o.Logger != nil {
			o.Logger.Warn("event dispatch failed", "event", rec.Name, "event_id", rec.ID, "error", err)
		}
	}
	return nil
}

// Pending returns a copy of the buffered records.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.records...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
