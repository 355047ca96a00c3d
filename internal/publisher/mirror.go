package publisher

import (
	"context"

	"github.com/flexprice/checkout/internal/config"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/pubsub"
	"github.com/flexprice/checkout/internal/pubsub/router"
)

// SessionEventMirror forwards the in-process session stream to an external publisher
type SessionEventMirror struct {
	router *router.Router
	logger *logger.Logger
}

func NewSessionEventMirror(
	cfg *config.Configuration,
	r *router.Router,
	source pubsub.PubSub,
	sink pubsub.Publisher,
	logger *logger.Logger,
) *SessionEventMirror {
	r.AddForwardHandler("session_events_mirror", SessionEventsTopic, cfg.Kafka.Topic, source, sink)
	return &SessionEventMirror{router: r, logger: logger}
}

// Run blocks until ctx is done
func (m *SessionEventMirror) Run(ctx context.Context) error {
	m.logger.Infow("session event mirror started", "topic", SessionEventsTopic)
	return m.router.Run(ctx)
}

func (m *SessionEventMirror) Close() error {
	return m.router.Close()
}
