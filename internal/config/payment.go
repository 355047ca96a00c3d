package config

import "time"

type QPayConfig struct {
	BaseURL string        `validate:"required,url"`
	Timeout time.Duration `validate:"required"`
	// RetryMax bounds automatic retries of idempotent gateway calls
	RetryMax int `validate:"min=0,max=10"`
	// RateLimit is the sustained gateway request rate per second
	RateLimit   float64 `validate:"gt=0"`
	RateBurst   int     `validate:"min=1"`
	CallbackURL string
}

type PaymentConfig struct {
	PollInterval      time.Duration `validate:"required"`
	ConfirmationGrace time.Duration `validate:"min=0"`
	// InvoiceTTL is how long an unpaid invoice stays eligible for reuse
	InvoiceTTL      time.Duration         `validate:"required"`
	DefaultTemplate InvoiceTemplateConfig `validate:"required"`
}

type InvoiceTemplateConfig struct {
	SenderInvoiceNumber string `validate:"required"`
	ReceiverCode        string `validate:"required"`
	Description         string `validate:"required"`
	Amount              int64  `validate:"min=0"`
}

type RegistrationConfig struct {
	MaxAttempts     int           `validate:"min=1"`
	InitialInterval time.Duration `validate:"required"`
	MaxInterval     time.Duration `validate:"required"`
}
