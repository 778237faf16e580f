package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "iasrentals/internal/app/outbox"
)

type fakeQueue struct {
	pending []*Claimed
	sent    []string
	failed  map[string]time.Time
}

func (q *fakeQueue) Claim(ctx context.Context, workerID string) (*Claimed, error) {
	if len(q.pending) == 0 {
		return nil, nil
	}
	c := q.pending[0]
	q.pending = q.pending[1:]
	return c, nil
}

func (q *fakeQueue) MarkSent(ctx context.Context, id string) error {
	q.sent = append(q.sent, id)
	return nil
}

func (q *fakeQueue) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	if q.failed == nil {
		q.failed = map[string]time.Time{}
	}
	q.failed[id] = next
	return nil
}

type published struct {
	topic, key string
	payload    []byte
	headers    map[string]string
}

type fakeProducer struct {
	out  []published
	fail bool
}

func (p *fakeProducer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.out = append(p.out, published{topic, key, payload, headers})
	return nil
}

type dispatchFunc func(ctx context.Context, rec appoutbox.EventRecord) error

func (f dispatchFunc) Dispatch(ctx context.Context, rec appoutbox.EventRecord) error {
	return f(ctx, rec)
}

func record(id, name string) *Claimed {
	return &Claimed{Record: appoutbox.EventRecord{
		ID: id, Name: name, Aggregate: "agg-" + id,
		Payload:    []byte(`{"visit_id":"v-1"}`),
		OccurredAt: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		Headers:    map[string]string{"traceparent": "00-abc-01"},
	}}
}

func TestWorkerPublishesCloudEvents(t *testing.T) {
	q := &fakeQueue{pending: []*Claimed{record("e1", "visit.scheduled"), record("e2", "review.created")}}
	p := &fakeProducer{}
	w := &Worker{Queue: q, Producer: p, TopicPrefix: "dev."}

	require.NoError(t, w.Drain(context.Background()))
	assert.Equal(t, []string{"e1", "e2"}, q.sent)
	require.Len(t, p.out, 2)
	assert.Equal(t, "dev.visit.events.v1", p.out[0].topic)
	assert.Equal(t, "dev.review.events.v1", p.out[1].topic)
	assert.Equal(t, "agg-e1", p.out[0].key)
	assert.Equal(t, "application/cloudevents+json", p.out[0].headers["content-type"])

	var evt map[string]any
	require.NoError(t, json.Unmarshal(p.out[0].payload, &evt))
	assert.Equal(t, "e1", evt["id"])
	assert.Equal(t, "visit.scheduled.v1", evt["type"])

	rec, err := DecodeCloudEvent(p.out[0].payload)
	require.NoError(t, err)
	assert.Equal(t, "visit.scheduled", rec.Name)
	assert.JSONEq(t, `{"visit_id":"v-1"}`, string(rec.Payload))
	assert.Equal(t, "00-abc-01", rec.Headers["traceparent"])
}

func TestWorkerBacksOffOnFailure(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	first := record("e1", "visit.cancelled")
	retried := record("e2", "visit.cancelled")
	retried.Attempts = 5
	q := &fakeQueue{pending: []*Claimed{first, retried}}
	w := &Worker{
		Queue:    q,
		Producer: &fakeProducer{fail: true},
		Backoff:  []time.Duration{time.Second, time.Minute},
		Now:      func() time.Time { return now },
	}

	require.NoError(t, w.Drain(context.Background()))
	assert.Empty(t, q.sent)
	assert.Equal(t, now.Add(time.Second), q.failed["e1"])
	assert.Equal(t, now.Add(time.Minute), q.failed["e2"])
}

func TestWorkerFallsBackToDispatcher(t *testing.T) {
	q := &fakeQueue{pending: []*Claimed{record("e1", "visit.completed")}}
	var got []string
	w := &Worker{Queue: q, Dispatcher: dispatchFunc(func(ctx context.Context, rec appoutbox.EventRecord) error {
		got = append(got, rec.Name)
		return nil
	})}
	require.NoError(t, w.Drain(context.Background()))
	assert.Equal(t, []string{"visit.completed"}, got)
	assert.Equal(t, []string{"e1"}, q.sent)
}

func TestWorkerRequiresQueueAndSink(t *testing.T) {
	assert.ErrorIs(t, (&Worker{Queue: &fakeQueue{}}).Run(context.Background()), ErrWorkerNotConfigured)
}

func TestTopicsAreDistinct(t *testing.T) {
	assert.Equal(t, []string{"visit.events.v1", "review.events.v1"},
		Topics("", "visit.scheduled", "visit.cancelled", "review.created"))
}

func TestDecodeRejectsIncompleteEvents(t *testing.T) {
	_, err := DecodeCloudEvent([]byte(`{"specversion":"1.0","type":"visit.scheduled.v1"}`))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}
