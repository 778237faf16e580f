package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "iasrentals/internal/domain/auth"
	domainuser "iasrentals/internal/domain/user"
)

func TestUserRepositoryEmailUniqueAndCount(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &domainuser.User{ID: "u-1", Email: "A@x.ro", Role: domainuser.RoleOwner, IsVerified: true, IsActive: true}))
	require.NoError(t, repo.Save(ctx, &domainuser.User{ID: "u-2", Email: "b@x.ro", Role: domainuser.RoleBuyer, IsActive: false}))

	err := repo.Save(ctx, &domainuser.User{ID: "u-3", Email: "a@x.ro"})
	assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)

	found, err := repo.ByEmail(ctx, " a@X.ro ")
	require.NoError(t, err)
	assert.Equal(t, domainuser.ID("u-1"), found.ID)

	total, err := repo.Count(ctx, domainuser.CountFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	verified, err := repo.Count(ctx, domainuser.CountFilter{Role: domainuser.RoleOwner, VerifiedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, verified)
	active, err := repo.Count(ctx, domainuser.CountFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, active)

	_, err = repo.ByID(ctx, "missing")
	assert.ErrorIs(t, err, domainuser.ErrNotFound)
}

func TestSessionStoreDeleteByUser(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	for _, token := range []domainauth.Token{"t1", "t2"} {
		session, err := domainauth.NewSession(domainauth.CreateSessionParams{Token: token, UserID: "u-1", TTL: time.Hour})
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, session))
	}
	_, err := store.Get(ctx, "t1")
	require.NoError(t, err)

	require.NoError(t, store.DeleteByUser(ctx, "u-1"))
	_, err = store.Get(ctx, "t2")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestSessionStoreDropsExpired(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token: "old", UserID: "u-1", TTL: time.Minute, Now: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, session))
	_, err = store.Get(ctx, "old")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}
