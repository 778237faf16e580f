package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iasrentals/internal/domain/shared/events"
)

type pinged struct {
	Target string    `json:"target"`
	At     time.Time `json:"at"`
}

func (p pinged) EventName() string     { return "ping.sent" }
func (p pinged) AggregateID() string   { return p.Target }
func (p pinged) OccurredAt() time.Time { return p.At }

type aggregate struct {
	events.EventRecorder
}

type sliceOutbox struct {
	records []EventRecord
}

func (s *sliceOutbox) Add(_ context.Context, r EventRecord) error {
	s.records = append(s.records, r)
	return nil
}

func (s *sliceOutbox) Flush(context.Context) error { return nil }

func TestJSONEventEncoder(t *testing.T) {
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	rec, err := JSONEventEncoder{IDGenerator: func() string { return "evt-1" }}.Encode(pinged{Target: "p-1", At: at})
	require.NoError(t, err)
	assert.Equal(t, "evt-1", rec.ID)
	assert.Equal(t, "ping.sent", rec.Name)
	assert.Equal(t, "p-1", rec.Aggregate)
	assert.JSONEq(t, `{"target":"p-1","at":"2024-06-01T10:00:00Z"}`, string(rec.Payload))
}

func TestDrainMovesEventsOnce(t *testing.T) {
	agg := &aggregate{}
	agg.Record(pinged{Target: "a"})
	agg.Record(pinged{Target: "b"})
	box := &sliceOutbox{}

	require.NoError(t, Drain(context.Background(), box, nil, agg))
	require.Len(t, box.records, 2)
	assert.Equal(t, "a", box.records[0].Aggregate)
	assert.NotEmpty(t, box.records[0].ID)

	require.NoError(t, Drain(context.Background(), box, nil, agg))
	assert.Len(t, box.records, 2)
}
