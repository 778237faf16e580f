package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/huandu/go-sqlbuilder"

	domainuser "iasrentals/internal/domain/user"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, password_hash, role, is_verified, is_active,
	account_created_year, description, profile_image, phone, date_of_birth, created_at, updated_at`

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, string(id))
	return scanUser(row)
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, domainuser.NormalizeEmail(email))
	return scanUser(row)
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	if u == nil || strings.TrimSpace(string(u.ID)) == "" {
		return domainuser.ErrIDRequired
	}
	email := domainuser.NormalizeEmail(u.Email)
	if email == "" {
		return domainuser.ErrEmailRequired
	}
	_, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			password_hash = excluded.password_hash,
			role = excluded.role,
			is_verified = excluded.is_verified,
			is_active = excluded.is_active,
			account_created_year = excluded.account_created_year,
			description = excluded.description,
			profile_image = excluded.profile_image,
			phone = excluded.phone,
			date_of_birth = excluded.date_of_birth,
			updated_at = excluded.updated_at`,
		string(u.ID), email, u.Name, u.PasswordHash, string(u.Role), u.IsVerified, u.IsActive,
		u.AccountCreatedYear, u.Description, u.ProfileImage, u.Phone, u.DateOfBirth,
		toNanos(u.CreatedAt), toNanos(u.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return domainuser.ErrEmailAlreadyUsed
	}
	return err
}

func (r *UserRepository) Count(ctx context.Context, f domainuser.CountFilter) (int, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("COUNT(*)").From("users")
	var where []string
	if f.Role != "" {
		where = append(where, sb.Equal("role", string(f.Role)))
	}
	if f.VerifiedOnly {
		where = append(where, sb.Equal("is_verified", 1))
	}
	if f.ActiveOnly {
		where = append(where, sb.Equal("is_active", 1))
	}
	if len(where) > 0 {
		sb.Where(where...)
	}
	query, args := sb.Build()
	var n int
	err := r.db.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func scanUser(row *sql.Row) (*domainuser.User, error) {
	var (
		u                    domainuser.User
		id, role             string
		createdAt, updatedAt int64
	)
	err := row.Scan(&id, &u.Email, &u.Name, &u.PasswordHash, &role, &u.IsVerified, &u.IsActive,
		&u.AccountCreatedYear, &u.Description, &u.ProfileImage, &u.Phone, &u.DateOfBirth,
		&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainuser.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.ID = domainuser.ID(id)
	u.Role = domainuser.Role(role)
	u.CreatedAt = fromNanos(createdAt)
	u.UpdatedAt = fromNanos(updatedAt)
	return &u, nil
}

var _ domainuser.Repository = (*UserRepository)(nil)
