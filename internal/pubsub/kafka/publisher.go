package kafka

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/checkout/internal/config"
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/pubsub"
)

// OwnerMetadataKey carries the partition key of a session event
const OwnerMetadataKey = "owner"

// Publisher exports session events to Kafka
type Publisher struct {
	publisher message.Publisher
	logger    *logger.Logger
}

var _ pubsub.Publisher = (*Publisher)(nil)

func NewPublisher(cfg *config.Configuration, logger *logger.Logger) (*Publisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:               cfg.Kafka.Brokers,
			Marshaler:             kafka.NewWithPartitioningMarshaler(ownerPartitionKey),
			OverwriteSaramaConfig: GetSaramaConfig(cfg),
		},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to Kafka").
			WithReportableDetails(map[string]any{"brokers": cfg.Kafka.Brokers}).
			Mark(ierr.ErrSystem)
	}

	return &Publisher{publisher: publisher, logger: logger}, nil
}

func ownerPartitionKey(_ string, msg *message.Message) (string, error) {
	return msg.Metadata.Get(OwnerMetadataKey), nil
}

func (p *Publisher) Publish(_ context.Context, topic string, msg *message.Message) error {
	return p.publisher.Publish(topic, msg)
}

func (p *Publisher) Close() error {
	return p.publisher.Close()
}
