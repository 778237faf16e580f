package user

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iasrentals/internal/domain/shared/fault"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleBuyer, role)

	role, err = ParseRole(" Owner ")
	require.NoError(t, err)
	assert.Equal(t, RoleOwner, role)

	_, err = ParseRole("admin")
	assert.True(t, errors.Is(err, ErrInvalidRole))
	assert.True(t, fault.Is(err, fault.BadRequest))
}

func TestNewUserDefaults(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	u, err := NewUser(CreateParams{
		ID:           "u-1",
		Email:        "  Ion@Example.com ",
		Name:         " Ion ",
		PasswordHash: "hash",
		Role:         RoleOwner,
		CreatedAt:    created,
	})
	require.NoError(t, err)
	assert.Equal(t, "ion@example.com", u.Email)
	assert.Equal(t, "Ion", u.Name)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsVerified)
	assert.Equal(t, 2024, u.AccountCreatedYear)
	assert.NoError(t, u.RequireRole(RoleOwner))
	assert.ErrorIs(t, u.RequireRole(RoleBuyer), ErrRoleForbidden)
}

func TestNewUserValidation(t *testing.T) {
	_, err := NewUser(CreateParams{ID: "u", Email: "", Name: "n", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = NewUser(CreateParams{ID: "u", Email: "a@b.c", Name: " ", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = NewUser(CreateParams{ID: "u", Email: "a@b.c", Name: "n", PasswordHash: "h", Role: "landlord"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUpdateProfileKeepsNameWhenBlank(t *testing.T) {
	u := &User{Name: "Maria"}
	blank := "  "
	phone := "0712"
	u.UpdateProfile(ProfileUpdate{Name: &blank, Phone: &phone}, time.Now())
	assert.Equal(t, "Maria", u.Name)
	assert.Equal(t, "0712", u.Phone)
}

func TestCountFilter(t *testing.T) {
	verifiedOwner := &User{Role: RoleOwner, IsVerified: true, IsActive: true}
	buyer := &User{Role: RoleBuyer, IsActive: false}

	assert.True(t, CountFilter{}.Matches(buyer))
	assert.True(t, CountFilter{Role: RoleOwner, VerifiedOnly: true}.Matches(verifiedOwner))
	assert.False(t, CountFilter{Role: RoleOwner}.Matches(buyer))
	assert.False(t, CountFilter{ActiveOnly: true}.Matches(buyer))
}
