package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "iasrentals/internal/app/outbox"
	infraoutbox "iasrentals/internal/infra/outbox"
)

func TestProducerSendsMessage(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	sync := mocks.NewSyncProducer(t, cfg)
	sync.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "visit.events.v1", msg.Topic)
		require.Len(t, msg.Headers, 2)
		assert.Equal(t, "content-type", string(msg.Headers[0].Key))
		return nil
	})
	p := newProducer(sync)
	err := p.Publish(context.Background(), "visit.events.v1", "v-1", []byte(`{}`), map[string]string{"traceparent": "t", "content-type": "application/cloudevents+json"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

type captureDispatcher struct {
	got []appoutbox.EventRecord
}

func (c *captureDispatcher) Dispatch(ctx context.Context, rec appoutbox.EventRecord) error {
	c.got = append(c.got, rec)
	return nil
}

func TestEventHandlerDecodesCloudEvent(t *testing.T) {
	payload, _, err := infraoutbox.EncodeCloudEvent(appoutbox.EventRecord{
		ID: "e1", Name: "review.created", Aggregate: "r-1",
		Payload: []byte(`{"rating":5}`), OccurredAt: time.Now(),
	}, "test")
	require.NoError(t, err)

	d := &captureDispatcher{}
	msg := &sarama.ConsumerMessage{
		Value:   payload,
		Headers: []*sarama.RecordHeader{{Key: []byte("x-origin"), Value: []byte("relay")}},
	}
	require.NoError(t, EventHandler{Dispatcher: d}.Handle(context.Background(), msg))
	require.Len(t, d.got, 1)
	assert.Equal(t, "e1", d.got[0].ID)
	assert.Equal(t, "review.created", d.got[0].Name)
	assert.Equal(t, "relay", d.got[0].Headers["x-origin"])

	err = EventHandler{Dispatcher: d}.Handle(context.Background(), &sarama.ConsumerMessage{Value: []byte("not json")})
	assert.Error(t, err)
}
