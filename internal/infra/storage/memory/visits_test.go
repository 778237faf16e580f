package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainproperties "iasrentals/internal/domain/properties"
	domainuser "iasrentals/internal/domain/user"
	domainvisits "iasrentals/internal/domain/visits"
)

func newVisit(t *testing.T, id, buyer, date, slot string, created time.Time) *domainvisits.Visit {
	t.Helper()
	v, err := domainvisits.Schedule(domainvisits.ScheduleParams{
		ID: domainvisits.ID(id), PropertyID: "p-1", BuyerID: domainuser.ID(buyer),
		Date: date, Time: slot, Now: created,
	})
	require.NoError(t, err)
	return v
}

func TestVisitInsertRejectsSecondScheduledVisit(t *testing.T) {
	repo := NewVisitRepository()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Insert(ctx, newVisit(t, "v-1", "b-1", "2024-06-01", "10:00", now)))
	err := repo.Insert(ctx, newVisit(t, "v-2", "b-2", "2024-06-01", "10:00", now))
	assert.ErrorIs(t, err, domainvisits.ErrSlotTaken)

	require.NoError(t, repo.Insert(ctx, newVisit(t, "v-3", "b-2", "2024-06-01", "10:30", now)))
}

func TestVisitCancelFreesSlot(t *testing.T) {
	repo := NewVisitRepository()
	ctx := context.Background()
	visit := newVisit(t, "v-1", "b-1", "2024-06-01", "10:00", time.Now())
	require.NoError(t, repo.Insert(ctx, visit))

	require.NoError(t, visit.Cancel("b-1", "o-1", time.Now()))
	require.NoError(t, repo.UpdateStatus(ctx, visit))

	stored, err := repo.ByID(ctx, "v-1")
	require.NoError(t, err)
	assert.Equal(t, domainvisits.StatusCancelled, stored.Status)
	require.NoError(t, repo.Insert(ctx, newVisit(t, "v-2", "b-1", "2024-06-01", "10:00", time.Now())))
}

func TestVisitConcurrentInsertsSingleWinner(t *testing.T) {
	repo := NewVisitRepository()
	ctx := context.Background()
	const attempts = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < attempts; i++ {
		visit := newVisit(t, fmt.Sprintf("v-%d", i), fmt.Sprintf("b-%d", i), "2024-06-01", "11:00", time.Now())
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Insert(ctx, visit); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestVisitFindOrdersByDateAndTime(t *testing.T) {
	repo := NewVisitRepository()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, newVisit(t, "v-late", "b-1", "2024-06-02", "09:00", base)))
	require.NoError(t, repo.Insert(ctx, newVisit(t, "v-noon", "b-1", "2024-06-01", "12:00", base)))
	require.NoError(t, repo.Insert(ctx, newVisit(t, "v-early", "b-1", "2024-06-01", "09:30", base)))
	require.NoError(t, repo.Insert(ctx, newVisit(t, "v-other", "b-2", "2024-06-01", "09:00", base)))

	found, err := repo.Find(ctx, domainvisits.Criteria{
		BuyerID:     "b-1",
		PropertyIDs: []domainproperties.ID{"p-1"},
		Statuses:    []domainvisits.Status{domainvisits.StatusScheduled},
	})
	require.NoError(t, err)
	ids := make([]domainvisits.ID, 0, len(found))
	for _, v := range found {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []domainvisits.ID{"v-early", "v-noon", "v-late"}, ids)

	limited, err := repo.Find(ctx, domainvisits.Criteria{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
