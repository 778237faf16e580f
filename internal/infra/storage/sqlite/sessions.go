package sqlite

import (
	"context"
	"database/sql"
	"errors"

	domainauth "iasrentals/internal/domain/auth"
	domainuser "iasrentals/internal/domain/user"
)

type SessionStore struct {
	db *DB
}

func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	_, err := s.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, role, created_at, expires_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			user_id = excluded.user_id,
			role = excluded.role,
			expires_at = excluded.expires_at`,
		string(session.Token), string(session.UserID), string(session.Role),
		toNanos(session.CreatedAt), toNanos(session.ExpiresAt))
	return err
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	var (
		userID, role         string
		createdAt, expiresAt int64
	)
	err := s.db.conn(ctx).QueryRowContext(ctx,
		`SELECT user_id, role, created_at, expires_at FROM sessions WHERE token = ?`, string(token)).
		Scan(&userID, &role, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainauth.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &domainauth.Session{
		Token:     token,
		UserID:    domainuser.ID(userID),
		Role:      domainuser.Role(role),
		CreatedAt: fromNanos(createdAt),
		ExpiresAt: fromNanos(expiresAt),
	}, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	_, err := s.db.conn(ctx).ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, string(token))
	return err
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	_, err := s.db.conn(ctx).ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, string(userID))
	return err
}

// PurgeExpired removes sessions that expired before now.
func (s *SessionStore) PurgeExpired(ctx context.Context, now int64) (int64, error) {
	res, err := s.db.conn(ctx).ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ domainauth.SessionStore = (*SessionStore)(nil)
