package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iasrentals/internal/domain/user"
)

func TestNewSessionExpiry(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	session, err := NewSession(CreateSessionParams{
		Token:  " tok ",
		UserID: "u-1",
		Role:   user.RoleBuyer,
		TTL:    time.Hour,
		Now:    now,
	})
	require.NoError(t, err)
	assert.Equal(t, Token("tok"), session.Token)
	assert.False(t, session.Expired(now.Add(30*time.Minute)))
	assert.True(t, session.Expired(now.Add(time.Hour)))
}

func TestNewSessionValidation(t *testing.T) {
	_, err := NewSession(CreateSessionParams{UserID: "u", TTL: time.Minute})
	assert.ErrorIs(t, err, ErrTokenRequired)
	_, err = NewSession(CreateSessionParams{Token: "t", TTL: time.Minute})
	assert.ErrorIs(t, err, ErrUserRequired)
	_, err = NewSession(CreateSessionParams{Token: "t", UserID: "u"})
	assert.ErrorIs(t, err, ErrTTLInvalid)
}
