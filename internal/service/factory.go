package service

import (
	"github.com/flexprice/checkout/internal/cache"
	"github.com/flexprice/checkout/internal/config"
	"github.com/flexprice/checkout/internal/domain/credential"
	"github.com/flexprice/checkout/internal/domain/invoice"
	"github.com/flexprice/checkout/internal/domain/payment"
	"github.com/flexprice/checkout/internal/domain/profile"
	"github.com/flexprice/checkout/internal/integration/qpay"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/publisher"
	"github.com/flexprice/checkout/internal/sentry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Sentry *sentry.Service
	Cache  cache.Cache

	// Repositories
	InvoiceRepo    invoice.Repository
	PaymentRepo    payment.Repository
	ProfileRepo    profile.Repository
	CredentialRepo credential.Repository

	// Gateway
	Gateway   qpay.Client
	Templates InvoiceTemplateProvider

	// Publishers
	SessionPublisher publisher.SessionEventPublisher
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	sentry *sentry.Service,
	cache cache.Cache,
	invoiceRepo invoice.Repository,
	paymentRepo payment.Repository,
	profileRepo profile.Repository,
	credentialRepo credential.Repository,
	gateway qpay.Client,
	templates InvoiceTemplateProvider,
	sessionPublisher publisher.SessionEventPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		Sentry:           sentry,
		Cache:            cache,
		InvoiceRepo:      invoiceRepo,
		PaymentRepo:      paymentRepo,
		ProfileRepo:      profileRepo,
		CredentialRepo:   credentialRepo,
		Gateway:          gateway,
		Templates:        templates,
		SessionPublisher: sessionPublisher,
	}
}
