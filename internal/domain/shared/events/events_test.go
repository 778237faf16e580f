package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type testEvent struct{ at time.Time }

func (e testEvent) EventName() string     { return "test.happened" }
func (e testEvent) AggregateID() string   { return "agg-1" }
func (e testEvent) OccurredAt() time.Time { return e.at }

func TestRecorderDrain(t *testing.T) {
	var rec EventRecorder
	rec.Record(nil)
	rec.Record(testEvent{at: time.Unix(10, 0)})
	rec.Record(testEvent{at: time.Unix(20, 0)})

	pending := rec.PendingEvents()
	assert.Len(t, pending, 2)

	drained := rec.Drain()
	assert.Len(t, drained, 2)
	assert.Empty(t, rec.PendingEvents())
}
