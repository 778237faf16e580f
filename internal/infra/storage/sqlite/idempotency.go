package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"iasrentals/internal/app/middleware"
)

// IdempotencyStore keeps command outcomes; records older than ttl read as
// missing and are pruned on Save.
type IdempotencyStore struct {
	db  *DB
	ttl time.Duration
	now func() time.Time
}

func NewIdempotencyStore(db *DB, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{db: db, ttl: ttl, now: time.Now}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	var (
		rec        middleware.IdempotencyRecord
		occurredAt int64
	)
	cutoff := toNanos(s.now().Add(-s.ttl))
	err := s.db.conn(ctx).QueryRowContext(ctx,
		`SELECT key, payload, error, error_kind, occurred_at FROM idempotency WHERE key = ? AND created_at > ?`, key, cutoff).
		Scan(&rec.Key, &rec.Payload, &rec.Error, &rec.ErrorKind, &occurredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	rec.OccurredAt = fromNanos(occurredAt)
	return rec, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	now := s.now()
	conn := s.db.conn(ctx)
	if _, err := conn.ExecContext(ctx, `DELETE FROM idempotency WHERE created_at <= ?`, toNanos(now.Add(-s.ttl))); err != nil {
		return err
	}
	_, err := conn.ExecContext(ctx, `
		INSERT INTO idempotency (key, payload, error, error_kind, occurred_at, created_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			error = excluded.error,
			error_kind = excluded.error_kind,
			occurred_at = excluded.occurred_at,
			created_at = excluded.created_at`,
		rec.Key, rec.Payload, rec.Error, rec.ErrorKind, toNanos(rec.OccurredAt), toNanos(now))
	return err
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
