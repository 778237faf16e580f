package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoQuery struct{ N int }

func (echoQuery) Key() string { return "test.echo" }

func TestAskTypedHandler(t *testing.T) {
	bus := NewInMemoryBus()
	Register[echoQuery, int](bus, HandlerFunc[echoQuery, int](func(ctx context.Context, q echoQuery) (int, error) {
		return q.N * 2, nil
	}))

	res, err := Ask[echoQuery, int](context.Background(), bus, echoQuery{N: 21})
	require.NoError(t, err)
	assert.Equal(t, 42, res)
}

func TestAskUnknownQuery(t *testing.T) {
	_, err := Ask[echoQuery, int](context.Background(), NewInMemoryBus(), echoQuery{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
}
