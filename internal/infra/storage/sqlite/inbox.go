package sqlite

import (
	"context"
	"time"
)

// Inbox records processed event ids per consumer.
type Inbox struct {
	db       *DB
	consumer string
}

func NewInbox(db *DB, consumer string) *Inbox {
	return &Inbox{db: db, consumer: consumer}
}

func (i *Inbox) Seen(ctx context.Context, eventID string) (bool, error) {
	res, err := i.db.conn(ctx).ExecContext(ctx,
		`INSERT OR IGNORE INTO inbox (consumer, event_id, seen_at) VALUES (?, ?, ?)`,
		i.consumer, eventID, toNanos(time.Now()))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (i *Inbox) Forget(ctx context.Context, eventID string) error {
	_, err := i.db.conn(ctx).ExecContext(ctx,
		`DELETE FROM inbox WHERE consumer = ? AND event_id = ?`, i.consumer, eventID)
	return err
}
