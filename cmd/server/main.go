package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/flexprice/checkout/internal/api"
	v1 "github.com/flexprice/checkout/internal/api/v1"
	"github.com/flexprice/checkout/internal/cache"
	"github.com/flexprice/checkout/internal/config"
	"github.com/flexprice/checkout/internal/httpclient"
	"github.com/flexprice/checkout/internal/integration/qpay"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/postgres"
	"github.com/flexprice/checkout/internal/publisher"
	"github.com/flexprice/checkout/internal/pubsub"
	"github.com/flexprice/checkout/internal/pubsub/kafka"
	"github.com/flexprice/checkout/internal/pubsub/memory"
	pubsubRouter "github.com/flexprice/checkout/internal/pubsub/router"
	"github.com/flexprice/checkout/internal/repository"
	"github.com/flexprice/checkout/internal/security"
	"github.com/flexprice/checkout/internal/sentry"
	"github.com/flexprice/checkout/internal/service"
	"github.com/flexprice/checkout/internal/types"
	"github.com/flexprice/checkout/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// @title Checkout API
// @version 1.0
// @description Payment session orchestration against the QPay gateway
// @BasePath /v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter the identity provider token in the format **Bearer &lt;token&gt;**

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.Initialize,

			// Secrets
			security.NewEncryptionService,

			// Postgres
			providePostgres,

			// Repositories
			repository.NewInvoiceRepository,
			repository.NewPaymentRepository,
			repository.NewProfileRepository,
			repository.NewCredentialRepository,

			// HTTP Client
			httpclient.NewClientFromConfig,

			// PubSub
			memory.NewPubSub,
			provideSubscriber,
			pubsubRouter.NewRouter,
			publisher.NewSessionEventPublisher,
		),
		// registers the custom request validations before any handler runs
		fx.Invoke(validator.NewValidator),
	)

	// Monitoring
	opts = append(opts, sentry.Module())

	// Gateway and service layer
	opts = append(opts,
		fx.Provide(
			service.NewCredentialService,
			provideCredentialProvider,
			provideTemplateProvider,
			qpay.NewClient,

			service.NewServiceParams,
			service.NewProfileService,
			service.NewLedgerService,
			service.NewPaymentSessionService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func providePostgres(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (*postgres.DB, error) {
	db, err := postgres.NewDB(cfg, log)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.Postgres.AutoMigrate {
				return nil
			}
			log.Info("Applying database migrations...")
			return db.Migrate(ctx)
		},
		OnStop: func(ctx context.Context) error {
			db.Close()
			return nil
		},
	})
	return db, nil
}

// the credential service feeds the gateway client, which ServiceParams carries
func provideCredentialProvider(svc service.CredentialService) qpay.CredentialProvider {
	return svc
}

func provideTemplateProvider(svc service.CredentialService) service.InvoiceTemplateProvider {
	return svc
}

func provideSubscriber(ps pubsub.PubSub) pubsub.Subscriber {
	return ps
}

func provideHandlers(
	logger *logger.Logger,
	profileService service.ProfileService,
	ledgerService service.LedgerService,
	paymentSessionService service.PaymentSessionService,
	credentialService service.CredentialService,
	events pubsub.Subscriber,
) api.Handlers {
	return api.Handlers{
		Health:         v1.NewHealthHandler(),
		Auth:           v1.NewAuthHandler(profileService, logger),
		Profile:        v1.NewProfileHandler(profileService, logger),
		PaymentSession: v1.NewPaymentSessionHandler(paymentSessionService, ledgerService, events, logger),
		Admin:          v1.NewAdminHandler(credentialService, ledgerService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger, profileService service.ProfileService) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger, profileService)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	ps pubsub.PubSub,
	router *pubsubRouter.Router,
	sessions service.PaymentSessionService,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	// registered first so it stops last, after every producer is gone
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return ps.Close()
		},
	})

	switch mode {
	case types.ModeLocal:
		startAPIServer(lc, r, cfg, sessions, log)
		if cfg.Kafka.Enabled {
			startSessionEventMirror(lc, cfg, router, ps, log)
		}
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, sessions, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	sessions service.PaymentSessionService,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			if err := sessions.Shutdown(ctx); err != nil {
				log.Errorw("payment sessions did not stop cleanly", "error", err)
			}
			return srv.Shutdown(ctx)
		},
	})
}

func startSessionEventMirror(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	router *pubsubRouter.Router,
	ps pubsub.PubSub,
	log *logger.Logger,
) {
	sink, err := kafka.NewPublisher(cfg, log)
	if err != nil {
		log.Fatalw("Failed to create kafka publisher", "error", err)
	}
	mirror := publisher.NewSessionEventMirror(cfg, router, ps, sink, log)

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := mirror.Run(ctx); err != nil {
					log.Errorw("session event mirror stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			if err := mirror.Close(); err != nil {
				log.Errorw("failed to close session event mirror", "error", err)
			}
			return sink.Close()
		},
	})
}
