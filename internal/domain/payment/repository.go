package payment

import (
	"context"

	"github.com/flexprice/checkout/internal/types"
)

// Repository appends and lists payment attempts. Attempts are never updated.
type Repository interface {
	CreateAttempt(ctx context.Context, attempt *PaymentAttempt) error
	ListAttempts(ctx context.Context, filter *types.PaymentAttemptFilter) ([]*PaymentAttempt, error)
	CountAttempts(ctx context.Context, filter *types.PaymentAttemptFilter) (int, error)
}
