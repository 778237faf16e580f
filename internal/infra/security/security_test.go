package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptRoundTrip(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.NoError(t, h.Compare(hash, "secret1"))
	assert.ErrorIs(t, h.Compare(hash, "secret2"), ErrPasswordMismatch)
	assert.False(t, h.NeedsRehash(hash))
	assert.True(t, BcryptHasher{Cost: bcrypt.MinCost + 1}.NeedsRehash(hash))
}

func TestBcryptRejectsLongPasswords(t *testing.T) {
	_, err := BcryptHasher{Cost: bcrypt.MinCost}.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestTokensAreUniqueAndPrefixed(t *testing.T) {
	g := RandomTokenGenerator{Size: 4, Prefix: "rs_"}
	a, err := g.NewToken()
	require.NoError(t, err)
	b, err := g.NewToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "rs_"))
	assert.Len(t, strings.TrimPrefix(a, "rs_"), 22)
}
