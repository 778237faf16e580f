package kafka

import (
	"context"
	"errors"
	"log/slog"

	"github.com/IBM/sarama"

	appoutbox "iasrentals/internal/app/outbox"
	infraoutbox "iasrentals/internal/infra/outbox"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	logger  *slog.Logger
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler, logger *slog.Logger) (*Consumer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	g, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	return &Consumer{group: g, handler: handler, logger: logger}, nil
}

// Run consumes topics until ctx is cancelled, rejoining the group after
// every rebalance.
func (c *Consumer) Run(ctx context.Context, topics []string) error {
	for {
		err := c.group.Consume(ctx, topics, consumerGroupHandler{handler: c.handler, logger: c.logger})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, sarama.ErrClosedConsumerGroup) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type consumerGroupHandler struct {
	handler MessageHandler
	logger  *slog.Logger
}

func (h consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks every message after handling it. Failed messages are
// logged and skipped; the outbox relay is the retrying side.
func (h consumerGroupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := h.handler.Handle(sess.Context(), message); err != nil && h.logger != nil {
			h.logger.Error("kafka message failed", "topic", message.Topic, "partition", message.Partition, "offset", message.Offset, "error", err)
		}
		sess.MarkMessage(message, "")
	}
	return nil
}

// EventHandler decodes CloudEvent messages and hands the records to a
// dispatcher.
type EventHandler struct {
	Dispatcher appoutbox.Dispatcher
}

func (h EventHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	rec, err := infraoutbox.DecodeCloudEvent(msg.Value)
	if err != nil {
		return err
	}
	for _, hdr := range msg.Headers {
		if hdr == nil {
			continue
		}
		if _, ok := rec.Headers[string(hdr.Key)]; !ok {
			rec.Headers[string(hdr.Key)] = string(hdr.Value)
		}
	}
	return h.Dispatcher.Dispatch(ctx, rec)
}
