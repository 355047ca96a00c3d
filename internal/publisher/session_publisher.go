package publisher

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/pubsub"
	"github.com/flexprice/checkout/internal/pubsub/kafka"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SessionEventPublisher broadcasts payment session transitions
type SessionEventPublisher interface {
	Publish(ctx context.Context, event *SessionEvent) error
}

type sessionEventPublisher struct {
	pubSub pubsub.Publisher
	logger *logger.Logger
}

func NewSessionEventPublisher(pubSub pubsub.PubSub, logger *logger.Logger) SessionEventPublisher {
	return &sessionEventPublisher{
		pubSub: pubSub,
		logger: logger,
	}
}

func (p *sessionEventPublisher) Publish(ctx context.Context, event *SessionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode session event").
			Mark(ierr.ErrInternal)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set(kafka.OwnerMetadataKey, event.Owner)
	msg.Metadata.Set("session_id", event.SessionID)
	msg.Metadata.Set("state", event.State.String())

	p.logger.Debugw("publishing session event",
		"event_id", event.ID,
		"session_id", event.SessionID,
		"state", event.State)

	if err := p.pubSub.Publish(ctx, SessionEventsTopic, msg); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to publish session event").
			Mark(ierr.ErrSystem)
	}
	return nil
}

// DecodeSessionEvent parses a message published by SessionEventPublisher
func DecodeSessionEvent(msg *message.Message) (*SessionEvent, error) {
	var event SessionEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid session event payload").
			Mark(ierr.ErrValidation)
	}
	return &event, nil
}
