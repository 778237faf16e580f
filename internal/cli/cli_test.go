package cli

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	domainproperties "iasrentals/internal/domain/properties"
	domainuser "iasrentals/internal/domain/user"
	"iasrentals/internal/infra/config"
	"iasrentals/internal/infra/security"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSeedIsSkippedWhenDataExists(t *testing.T) {
	ctx := context.Background()
	be := openMemory(nil, discardLogger())
	hasher := security.BcryptHasher{Cost: bcrypt.MinCost}

	seeded, err := seed(ctx, be, hasher, discardLogger())
	require.NoError(t, err)
	assert.True(t, seeded)

	total, err := be.Properties.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, total)

	owner, err := be.Users.ByEmail(ctx, "ion.popescu@example.com")
	require.NoError(t, err)
	assert.Equal(t, domainuser.RoleOwner, owner.Role)
	assert.Equal(t, 2020, owner.AccountCreatedYear)
	require.NoError(t, hasher.Compare(owner.PasswordHash, "password123"))

	sales, err := be.Properties.Search(ctx, domainproperties.SearchParams{ForSale: true})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "95000 EUR", sales[0].DisplayPrice())

	again, err := seed(ctx, be, hasher, discardLogger())
	require.NoError(t, err)
	assert.False(t, again)
	total, err = be.Properties.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, total)
}

func TestSQLiteBackendSeedAndClear(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{
		StorageDriver:      config.DriverSQLite,
		SQLitePath:         filepath.Join(t.TempDir(), "rentals.db"),
		KafkaConsumerGroup: "test",
	}
	be, err := openBackend(ctx, cfg, nil, discardLogger())
	require.NoError(t, err)
	defer be.Close(ctx)

	require.NotNil(t, be.Queue)
	require.NoError(t, be.Ready(ctx))

	_, err = seed(ctx, be, security.BcryptHasher{Cost: bcrypt.MinCost}, discardLogger())
	require.NoError(t, err)
	total, err := be.Properties.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, total)

	require.NoError(t, be.Clear(ctx))
	total, err = be.Properties.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestUnknownDriverIsRejected(t *testing.T) {
	_, err := openBackend(context.Background(), config.Config{StorageDriver: "cassandra"}, nil, discardLogger())
	assert.Error(t, err)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCmd()
	names := make([]string, 0)
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Subset(t, names, []string{"serve", "seed", "clear"})
}

func TestClearRequiresConfirmation(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"clear", "--env-file", filepath.Join(t.TempDir(), "missing.env")})
	root.SetOut(io.Discard)
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}
