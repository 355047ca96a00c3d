package payment

import (
	"time"

	"github.com/flexprice/checkout/internal/types"
)

// PaymentAttempt is an append-only record of one orchestration run
type PaymentAttempt struct {
	ID        string                     `db:"id" json:"id"`
	Owner     string                     `db:"owner" json:"owner"`
	InvoiceID string                     `db:"invoice_id" json:"invoice_id"`
	Amount    int64                      `db:"amount" json:"amount"`
	Status    types.PaymentAttemptStatus `db:"status" json:"status"`

	// IdempotencyKey ties the attempt to the session that wrote it
	IdempotencyKey string    `db:"idempotency_key" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

func NewPaymentAttempt(owner, invoiceID string, amount int64, status types.PaymentAttemptStatus) *PaymentAttempt {
	return &PaymentAttempt{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_ATTEMPT),
		Owner:     owner,
		InvoiceID: invoiceID,
		Amount:    amount,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
}
