package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	appoutbox "iasrentals/internal/app/outbox"
)

// Claimed is an outbox record leased to one worker.
type Claimed struct {
	Record   appoutbox.EventRecord
	Attempts int
}

// Queue is the durable side of the outbox as seen by the relay.
type Queue interface {
	Claim(ctx context.Context, workerID string) (*Claimed, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker relays claimed records to Kafka, or straight to Dispatcher when
// no producer is configured.
type Worker struct {
	Queue       Queue
	Producer    Producer
	Dispatcher  appoutbox.Dispatcher
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
	Logger      *slog.Logger
	Now         func() time.Time
}

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

func (w *Worker) Run(ctx context.Context) error {
	if w.Queue == nil || (w.Producer == nil && w.Dispatcher == nil) {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Drain(ctx); err != nil {
				return err
			}
		}
	}
}

// Drain relays records until the queue has nothing due.
func (w *Worker) Drain(ctx context.Context) error {
	for {
		processed, err := w.ProcessOnce(ctx)
		if err != nil || !processed {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// ProcessOnce relays at most one record. Delivery failures reschedule the
// record with backoff; only queue errors are returned.
func (w *Worker) ProcessOnce(ctx context.Context) (bool, error) {
	claimed, err := w.Queue.Claim(ctx, w.workerID())
	if err != nil || claimed == nil {
		return false, err
	}
	rec := claimed.Record
	if err := w.deliver(ctx, rec); err != nil {
		next := w.nextRetry(claimed.Attempts)
		if w.Logger != nil {
			w.Logger.Warn("outbox delivery failed", "event", rec.Name, "event_id", rec.ID, "attempts", claimed.Attempts+1, "retry_at", next, "error", err)
		}
		return true, w.Queue.MarkFailed(ctx, rec.ID, next, err.Error())
	}
	return true, w.Queue.MarkSent(ctx, rec.ID)
}

func (w *Worker) deliver(ctx context.Context, rec appoutbox.EventRecord) error {
	if w.Producer == nil {
		return w.Dispatcher.Dispatch(ctx, rec)
	}
	payload, headers, err := EncodeCloudEvent(rec, w.source())
	if err != nil {
		return err
	}
	return w.Producer.Publish(ctx, TopicFor(w.TopicPrefix, rec.Name), rec.Aggregate, payload, headers)
}

func (w *Worker) workerID() string {
	if w.ID != "" {
		return w.ID
	}
	return uuid.NewString()
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) nextRetry(attempts int) time.Time {
	now := time.Now()
	if w.Now != nil {
		now = w.Now()
	}
	switch {
	case attempts < len(w.Backoff):
		return now.Add(w.Backoff[attempts])
	case len(w.Backoff) > 0:
		return now.Add(w.Backoff[len(w.Backoff)-1])
	default:
		return now.Add(5 * time.Second)
	}
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://iasrentals"
}
