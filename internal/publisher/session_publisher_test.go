package publisher

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/checkout/internal/config"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/pubsub/kafka"
	"github.com/flexprice/checkout/internal/pubsub/memory"
	"github.com/flexprice/checkout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishAndDecodeSessionEvent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ps := memory.NewPubSub(config.GetDefaultConfig(), logger.NewNopLogger())
	defer ps.Close()

	messages, err := ps.Subscribe(ctx, SessionEventsTopic)
	require.NoError(t, err)

	pub := NewSessionEventPublisher(ps, logger.NewNopLogger())
	event := NewSessionEvent("psn_1", "owner-1", types.PaymentSessionStateIdle, types.PaymentSessionStateCheckingInvoice)
	require.NoError(t, pub.Publish(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, "owner-1", msg.Metadata.Get(kafka.OwnerMetadataKey))

		decoded, err := DecodeSessionEvent(msg)
		require.NoError(t, err)
		assert.Equal(t, event.SessionID, decoded.SessionID)
		assert.Equal(t, types.PaymentSessionStateCheckingInvoice, decoded.State)
		assert.Equal(t, types.PaymentSessionStateIdle, decoded.PreviousState)
	case <-ctx.Done():
		t.Fatal("session event was not delivered")
	}
}
