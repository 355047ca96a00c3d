package invoice

import (
	"strings"
	"time"

	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/types"
	jsoniter "github.com/json-iterator/go"
)

// Invoice is a gateway invoice recorded in the ledger for an owner
type Invoice struct {
	// ID is the ledger row identifier
	ID string `db:"id" json:"id"`
	// Owner is the principal the invoice was issued for
	Owner string `db:"owner" json:"owner"`
	// InvoiceID is the identifier assigned by the gateway
	InvoiceID string `db:"invoice_id" json:"invoice_id"`
	// Payload is the raw gateway response, kept verbatim for display (QR text, deep links)
	Payload string `db:"payload" json:"payload"`
	Amount  int64  `db:"amount" json:"amount"`
	IsPaid  bool   `db:"is_paid" json:"is_paid"`

	// IdempotencyKey is set when the row is recorded by a payment run, empty for manual rows
	IdempotencyKey string `db:"idempotency_key" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewInvoice builds a ledger row for a freshly issued gateway invoice
func NewInvoice(owner, invoiceID, payload string, amount int64) *Invoice {
	now := time.Now().UTC()
	return &Invoice{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		Owner:     owner,
		InvoiceID: invoiceID,
		Payload:   payload,
		Amount:    amount,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsReusable reports whether the invoice is unpaid and younger than ttl at now
func (i *Invoice) IsReusable(now time.Time, ttl time.Duration) bool {
	if i == nil || i.IsPaid {
		return false
	}
	return now.Sub(i.CreatedAt) < ttl
}

// GatewayInvoiceID returns the gateway identifier, falling back to the payload's invoice_id
func (i *Invoice) GatewayInvoiceID() string {
	if i == nil {
		return ""
	}
	if i.InvoiceID != "" {
		return i.InvoiceID
	}
	return InvoiceIDFromPayload(i.Payload)
}

// InvoiceIDFromPayload extracts invoice_id from a gateway invoice payload
func InvoiceIDFromPayload(payload string) string {
	if strings.TrimSpace(payload) == "" {
		return ""
	}
	return jsoniter.Get([]byte(payload), "invoice_id").ToString()
}

func (i *Invoice) Validate() error {
	if i.Owner == "" {
		return ierr.NewError("owner is required").
			WithHint("Invoice must belong to an owner").
			Mark(ierr.ErrValidation)
	}
	if i.Amount < 0 {
		return ierr.NewError("amount cannot be negative").
			WithHint("Invoice amount must be zero or more").
			WithReportableDetails(map[string]any{"amount": i.Amount}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
