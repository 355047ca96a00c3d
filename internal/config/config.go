package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/checkout/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment   DeploymentConfig   `validate:"required"`
	Server       ServerConfig       `validate:"required"`
	Logging      LoggingConfig      `validate:"required"`
	Postgres     PostgresConfig     `validate:"required"`
	Auth         AuthConfig         `validate:"required"`
	Secrets      SecretsConfig      `validate:"required"`
	QPay         QPayConfig         `validate:"required"`
	Payment      PaymentConfig      `validate:"required"`
	Registration RegistrationConfig `validate:"required"`
	Cache        CacheConfig
	Sentry       SentryConfig
	Kafka        KafkaConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required,oneof=local api"`
}

type ServerConfig struct {
	Address string `validate:"required"`
	// AllowedOrigins limits CORS to these browser origins, empty allows any
	AllowedOrigins []string
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string
	Port                   int
	User                   string
	Password               string
	DBName                 string
	SSLMode                string
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeMinutes int
	AutoMigrate            bool
}

type AuthConfig struct {
	// Secret verifies the HS256 tokens minted by the identity provider
	Secret string `validate:"required"`
	Issuer string
	// AdminPrincipals are registered with the admin role
	AdminPrincipals []string
	APIKey          APIKeyConfig
}

type APIKeyConfig struct {
	Header string
	// Keys maps the sha256 hex of an API key to its details
	Keys map[string]APIKeyDetails
}

type APIKeyDetails struct {
	Principal string
	IsActive  bool
}

type SecretsConfig struct {
	EncryptionKey string `validate:"required"`
}

type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type SentryConfig struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64
}

type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	ClientID      string
	Topic         string
	TLS           bool
	UseSASL       bool
	SASLMechanism string
	SASLUser      string
	SASLPassword  string
}

func NewConfig() (*Configuration, error) {
	// .env is optional and only feeds the environment viper reads below
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/checkout")

	v.SetEnvPrefix("CHECKOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()

	v.SetDefault("deployment.mode", d.Deployment.Mode)
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("logging.level", d.Logging.Level)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.maxopenconns", 10)
	v.SetDefault("postgres.maxidleconns", 5)
	v.SetDefault("postgres.connmaxlifetimeminutes", 30)

	v.SetDefault("auth.apikey.header", "x-api-key")

	v.SetDefault("qpay.baseurl", d.QPay.BaseURL)
	v.SetDefault("qpay.timeout", d.QPay.Timeout)
	v.SetDefault("qpay.retrymax", d.QPay.RetryMax)
	v.SetDefault("qpay.ratelimit", d.QPay.RateLimit)
	v.SetDefault("qpay.rateburst", d.QPay.RateBurst)

	v.SetDefault("payment.pollinterval", d.Payment.PollInterval)
	v.SetDefault("payment.confirmationgrace", d.Payment.ConfirmationGrace)
	v.SetDefault("payment.invoicettl", d.Payment.InvoiceTTL)
	v.SetDefault("payment.defaulttemplate.senderinvoicenumber", d.Payment.DefaultTemplate.SenderInvoiceNumber)
	v.SetDefault("payment.defaulttemplate.receivercode", d.Payment.DefaultTemplate.ReceiverCode)
	v.SetDefault("payment.defaulttemplate.description", d.Payment.DefaultTemplate.Description)
	v.SetDefault("payment.defaulttemplate.amount", d.Payment.DefaultTemplate.Amount)

	v.SetDefault("registration.maxattempts", d.Registration.MaxAttempts)
	v.SetDefault("registration.initialinterval", d.Registration.InitialInterval)
	v.SetDefault("registration.maxinterval", d.Registration.MaxInterval)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl", d.Cache.TTL)

	v.SetDefault("kafka.clientid", "checkout")
	v.SetDefault("kafka.topic", "payment_sessions")
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts and tests
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Auth: AuthConfig{
			APIKey: APIKeyConfig{Header: "x-api-key"},
		},
		QPay: QPayConfig{
			BaseURL:   "https://merchant.qpay.mn",
			Timeout:   30 * time.Second,
			RetryMax:  3,
			RateLimit: 10,
			RateBurst: 5,
		},
		Payment: PaymentConfig{
			PollInterval:      5 * time.Second,
			ConfirmationGrace: 2 * time.Second,
			InvoiceTTL:        24 * time.Hour,
			DefaultTemplate: InvoiceTemplateConfig{
				SenderInvoiceNumber: "12345678",
				ReceiverCode:        "terminal",
				Description:         "Railway access 12 months",
				Amount:              10,
			},
		},
		Registration: RegistrationConfig{
			MaxAttempts:     3,
			InitialInterval: time.Second,
			MaxInterval:     5 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}

// IsAdminPrincipal reports whether the principal is configured as an administrator
func (c AuthConfig) IsAdminPrincipal(principal string) bool {
	for _, p := range c.AdminPrincipals {
		if p == principal {
			return true
		}
	}
	return false
}
