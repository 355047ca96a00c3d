package router

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/pubsub"
	"github.com/flexprice/checkout/internal/sentry"
)

// Router runs watermill handlers, used to mirror session events to external sinks
type Router struct {
	router *message.Router
	logger *logger.Logger
	sentry *sentry.Service
}

func NewRouter(logger *logger.Logger, sentry *sentry.Service) (*Router, error) {
	router, err := message.NewRouter(
		message.RouterConfig{CloseTimeout: 5 * time.Second},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return nil, err
	}

	router.AddMiddleware(
		middleware.Recoverer,
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:          3,
			InitialInterval:     200 * time.Millisecond,
			MaxInterval:         2 * time.Second,
			Multiplier:          2,
			RandomizationFactor: 0.5,
			Logger:              watermill.NewStdLogger(false, false),
			OnRetryHook: func(retryNum int, delay time.Duration) {
				logger.Infow("retrying message", "retry_number", retryNum, "delay", delay)
			},
		}.Middleware,
	)

	return &Router{
		router: router,
		logger: logger,
		sentry: sentry,
	}, nil
}

// AddForwardHandler republishes every message of topic on the publisher under outTopic
func (r *Router) AddForwardHandler(
	handlerName string,
	topic string,
	outTopic string,
	subscriber message.Subscriber,
	publisher pubsub.Publisher,
) {
	r.router.AddNoPublisherHandler(
		handlerName,
		topic,
		subscriber,
		func(msg *message.Message) error {
			out := message.NewMessage(msg.UUID, msg.Payload)
			out.Metadata = msg.Metadata
			if err := publisher.Publish(msg.Context(), outTopic, out); err != nil {
				r.sentry.CaptureException(err)
				r.logger.Errorw("forward failed",
					"error", err,
					"handler", handlerName,
					"correlation_id", middleware.MessageCorrelationID(msg),
					"message_uuid", msg.UUID,
				)
				return err
			}
			return nil
		},
	)
}

// Run blocks until ctx is cancelled or the router is closed
func (r *Router) Run(ctx context.Context) error {
	r.logger.Info("starting router")
	return r.router.Run(ctx)
}

func (r *Router) Close() error {
	r.logger.Info("closing router")
	return r.router.Close()
}
