package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	appoutbox "iasrentals/internal/app/outbox"
	infraoutbox "iasrentals/internal/infra/outbox"
)

const (
	outboxNew     = "NEW"
	outboxClaimed = "CLAIMED"
	outboxSent    = "SENT"
	outboxFailed  = "FAILED"
)

const outboxLease = time.Minute

// Outbox is the durable outbox. Add writes through the transaction bound to
// ctx, so records commit together with the aggregate change.
type Outbox struct {
	db  *DB
	now func() time.Time
}

func NewOutbox(db *DB) *Outbox {
	return &Outbox{db: db, now: time.Now}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	headers, err := json.Marshal(record.Headers)
	if err != nil {
		return err
	}
	now := toNanos(o.now())
	_, err = o.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO outbox (id, name, payload, occurred_at, aggregate, headers, state, next_attempt_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Name, record.Payload, toNanos(record.OccurredAt), record.Aggregate, string(headers),
		outboxNew, now, now)
	return err
}

// Flush is a no-op; the relay polls the table.
func (o *Outbox) Flush(context.Context) error {
	return nil
}

// Claim leases the oldest due record in a single statement. Expired leases
// are reclaimable.
func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.Claimed, error) {
	now := toNanos(o.now())
	expired := toNanos(o.now().Add(-outboxLease))
	row := o.db.conn(ctx).QueryRowContext(ctx, `
		UPDATE outbox SET state = ?, claimed_by = ?, claimed_at = ?
		WHERE id = (
			SELECT id FROM outbox
			WHERE (state IN (?, ?) AND next_attempt_at <= ?) OR (state = ? AND claimed_at <= ?)
			ORDER BY next_attempt_at, created_at
			LIMIT 1
		)
		RETURNING id, name, payload, occurred_at, aggregate, headers, attempts`,
		outboxClaimed, workerID, now,
		outboxNew, outboxFailed, now, outboxClaimed, expired)

	var (
		claimed    infraoutbox.Claimed
		occurredAt int64
		headers    string
	)
	rec := &claimed.Record
	err := row.Scan(&rec.ID, &rec.Name, &rec.Payload, &occurredAt, &rec.Aggregate, &headers, &claimed.Attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.OccurredAt = fromNanos(occurredAt)
	if err := json.Unmarshal([]byte(headers), &rec.Headers); err != nil {
		return nil, err
	}
	return &claimed, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	_, err := o.db.conn(ctx).ExecContext(ctx, `UPDATE outbox SET state = ?, sent_at = ? WHERE id = ?`,
		outboxSent, toNanos(o.now()), id)
	return err
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	_, err := o.db.conn(ctx).ExecContext(ctx, `
		UPDATE outbox SET state = ?, next_attempt_at = ?, last_error = ?, attempts = attempts + 1
		WHERE id = ?`,
		outboxFailed, toNanos(next), errMsg, id)
	return err
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Queue = (*Outbox)(nil)
)
