// Package events carries domain events from services to background
// consumers over an in-process watermill pub/sub.
package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	TopicBidSubmitted      = "bid.submitted"
	TopicBidAccepted       = "bid.accepted"
	TopicJobClosed         = "job.closed"
	TopicTutorDecision     = "tutor.decision"
	TopicReviewCreated     = "review.created"
	TopicUserStatusChanged = "user.status_changed"
	TopicMessageSent       = "message.sent"
)

// Publisher is what services depend on. Publishing never fails the caller:
// the write has already been committed when an event is emitted.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any)
}

type Bus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewSlogLogger(logger),
	)
	return &Bus{pubsub: pubsub, logger: logger}
}

func (b *Bus) Publish(ctx context.Context, topic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.ErrorContext(ctx, "event marshal failed", "topic", topic, "error", err)
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		b.logger.ErrorContext(ctx, "event publish failed", "topic", topic, "error", err)
	}
}

func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) {}
