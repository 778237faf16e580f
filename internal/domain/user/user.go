package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"iasrentals/internal/domain/shared/fault"
)

var (
	ErrIDRequired          = fault.New(fault.BadRequest, "user: id is required")
	ErrEmailRequired       = fault.New(fault.BadRequest, "user: email is required")
	ErrPasswordHashMissing = errors.New("user: password hash is required")
	ErrNameRequired        = fault.New(fault.BadRequest, "user: name is required")
	ErrInvalidRole         = fault.New(fault.BadRequest, "user: role must be 'buyer' or 'owner'")
	ErrEmailAlreadyUsed    = fault.New(fault.Conflict, "user: an account with this email already exists")
	ErrNotFound            = fault.New(fault.NotFound, "user: not found")
	ErrRoleForbidden       = fault.New(fault.Forbidden, "user: operation not permitted for this role")
	ErrInactive            = fault.New(fault.Unauthorized, "user: account is deactivated")
)

type ID string

// Role is the single role tag a user registers with.
type Role string

const (
	RoleBuyer Role = "buyer"
	RoleOwner Role = "owner"
)

// ParseRole normalizes a raw role; an empty value defaults to buyer.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "buyer":
		return RoleBuyer, nil
	case "owner":
		return RoleOwner, nil
	default:
		return "", ErrInvalidRole
	}
}

type User struct {
	ID                 ID
	Email              string
	Name               string
	PasswordHash       string
	Role               Role
	IsVerified         bool
	IsActive           bool
	AccountCreatedYear int
	Description        string
	ProfileImage       string
	Phone              string
	DateOfBirth        string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CountFilter narrows Repository.Count. Zero value counts every user.
type CountFilter struct {
	Role         Role
	VerifiedOnly bool
	ActiveOnly   bool
}

func (f CountFilter) Matches(u *User) bool {
	if u == nil {
		return false
	}
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.VerifiedOnly && !u.IsVerified {
		return false
	}
	if f.ActiveOnly && !u.IsActive {
		return false
	}
	return true
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
	Count(ctx context.Context, filter CountFilter) (int, error)
}

type CreateParams struct {
	ID           ID
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	IsVerified   bool
	Description  string
	CreatedAt    time.Time
}

func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	email := NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	role, err := ParseRole(string(params.Role))
	if err != nil {
		return nil, err
	}

	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &User{
		ID:                 ID(id),
		Email:              email,
		Name:               name,
		PasswordHash:       params.PasswordHash,
		Role:               role,
		IsVerified:         params.IsVerified,
		IsActive:           true,
		AccountCreatedYear: now.Year(),
		Description:        strings.TrimSpace(params.Description),
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// ProfileUpdate carries optional profile fields; nil means "leave unchanged".
type ProfileUpdate struct {
	Name        *string
	Phone       *string
	DateOfBirth *string
	Description *string
}

func (u *User) UpdateProfile(update ProfileUpdate, now time.Time) error {
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		if trimmed != "" {
			u.Name = trimmed
		}
	}
	if update.Phone != nil {
		u.Phone = strings.TrimSpace(*update.Phone)
	}
	if update.DateOfBirth != nil {
		u.DateOfBirth = strings.TrimSpace(*update.DateOfBirth)
	}
	if update.Description != nil {
		u.Description = strings.TrimSpace(*update.Description)
	}
	u.touch(now)
	return nil
}

func (u *User) SetPasswordHash(hash string, now time.Time) error {
	if strings.TrimSpace(hash) == "" {
		return ErrPasswordHashMissing
	}
	u.PasswordHash = hash
	u.touch(now)
	return nil
}

func (u *User) Deactivate(now time.Time) {
	u.IsActive = false
	u.touch(now)
}

func (u *User) HasRole(role Role) bool {
	return u != nil && u.Role == role
}

// RequireRole fails with ErrRoleForbidden unless the user carries role.
func (u *User) RequireRole(role Role) error {
	if !u.HasRole(role) {
		return ErrRoleForbidden
	}
	return nil
}

func (u *User) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
