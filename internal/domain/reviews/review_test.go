package reviews

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iasrentals/internal/domain/shared/fault"
)

func TestNewValidatesRating(t *testing.T) {
	for _, rating := range []int{0, 6, -1} {
		_, err := New(CreateParams{ID: "r", Rating: rating})
		assert.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
		assert.True(t, fault.Is(err, fault.BadRequest))
	}
	for rating := MinRating; rating <= MaxRating; rating++ {
		_, err := New(CreateParams{ID: "r", Rating: rating})
		assert.NoError(t, err, "rating %d", rating)
	}
}

func TestNewRecordsCreatedEvent(t *testing.T) {
	review, err := New(CreateParams{
		ID: "r-1", OwnerID: "o", BuyerID: "b", PropertyID: "p", VisitID: "v",
		Rating: 4, Comment: "  ok ", Now: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", review.Comment)
	events := review.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventReviewCreated, events[0].EventName())
}

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 0.0, AverageRating(nil))
	list := []*Review{{Rating: 5}, {Rating: 4}, {Rating: 4}}
	assert.Equal(t, 4.3, AverageRating(list))
	assert.Equal(t, 4.5, AverageRating([]*Review{{Rating: 5}, {Rating: 4}}))
}

func TestCriteriaMatches(t *testing.T) {
	r := &Review{OwnerID: "o", BuyerID: "b", PropertyID: "p"}
	assert.True(t, Criteria{OwnerID: "o", BuyerID: "b", PropertyID: "p"}.Matches(r))
	assert.False(t, Criteria{PropertyID: "q"}.Matches(r))
}
