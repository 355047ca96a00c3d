package testutil

import (
	"context"
	"time"

	"github.com/flexprice/checkout/internal/cache"
	"github.com/flexprice/checkout/internal/config"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/types"
	"github.com/flexprice/checkout/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds the in-memory repositories for testing. The concrete types are
// exposed so tests can script faults.
type Stores struct {
	InvoiceRepo    *InMemoryInvoiceStore
	PaymentRepo    *InMemoryPaymentStore
	ProfileRepo    *InMemoryProfileStore
	CredentialRepo *InMemoryCredentialStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	gateway   *FakeGateway
	publisher *InMemorySessionPublisher
	cache     cache.Cache
	logger    *logger.Logger
	config    *config.Configuration
	now       time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Secrets.EncryptionKey = "test-encryption-key-for-unit-tests-only"
	cfg.Auth.Secret = "test-jwt-secret"
	cfg.Auth.AdminPrincipals = []string{"admin-principal"}

	// millisecond timings keep the polling tests fast
	cfg.Payment.PollInterval = 50 * time.Millisecond
	cfg.Payment.ConfirmationGrace = 40 * time.Millisecond
	cfg.Registration.InitialInterval = time.Millisecond
	cfg.Registration.MaxInterval = 5 * time.Millisecond
	cfg.Cache.Enabled = true
	cfg.Cache.TTL = time.Minute

	s.config = cfg
	s.logger = logger.NewNopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.stores = Stores{
		InvoiceRepo:    NewInMemoryInvoiceStore(),
		PaymentRepo:    NewInMemoryPaymentStore(),
		ProfileRepo:    NewInMemoryProfileStore(),
		CredentialRepo: NewInMemoryCredentialStore(),
	}
	s.gateway = NewFakeGateway()
	s.publisher = NewInMemorySessionPublisher()
	s.cache = cache.NewInMemoryCache(s.config)
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.stores.InvoiceRepo.Clear()
	s.stores.PaymentRepo.Clear()
	s.stores.ProfileRepo.Clear()
	s.stores.CredentialRepo.Clear()
	s.publisher.Clear()
	s.cache.Flush(s.ctx)
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetGateway() *FakeGateway {
	return s.gateway
}

func (s *BaseServiceTestSuite) GetPublisher() *InMemorySessionPublisher {
	return s.publisher
}

func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
