package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/checkout/internal/domain/invoice"
	"github.com/flexprice/checkout/internal/domain/payment"
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/idempotency"
	"github.com/flexprice/checkout/internal/integration/qpay"
	"github.com/flexprice/checkout/internal/types"
)

const (
	ledgerWriteRetries       = 2
	ledgerWriteRetryInterval = 10 * time.Millisecond
)

// InvoiceRecorder stores newly issued gateway invoices in the ledger
type InvoiceRecorder interface {
	Record(ctx context.Context, owner string, res *qpay.InvoiceResult) error
}

// PaymentRecorder appends payment attempts to the ledger, at most one per session
type PaymentRecorder interface {
	Record(ctx context.Context, owner, sessionID, invoiceID string, amount int64) error
}

// writeOnce retries a keyed ledger write. A duplicate key means an earlier
// attempt already landed, which counts as success.
func writeOnce(ctx context.Context, write func() error) error {
	operation := func() error {
		err := write()
		switch {
		case err == nil, ierr.IsAlreadyExists(err):
			return nil
		case ierr.IsValidation(err):
			return backoff.Permanent(err)
		}
		return err
	}
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(ledgerWriteRetryInterval), ledgerWriteRetries)
	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

type invoiceRecorder struct {
	ServiceParams
	keys *idempotency.Generator
}

func NewInvoiceRecorder(params ServiceParams) InvoiceRecorder {
	return &invoiceRecorder{ServiceParams: params, keys: idempotency.NewGenerator()}
}

func (r *invoiceRecorder) Record(ctx context.Context, owner string, res *qpay.InvoiceResult) error {
	inv := invoice.NewInvoice(owner, res.InvoiceID, res.InvoiceData, res.Amount)
	inv.IdempotencyKey = r.keys.InvoiceRecordKey(owner, res.InvoiceID)

	if err := writeOnce(ctx, func() error { return r.InvoiceRepo.Create(ctx, inv) }); err != nil {
		return ierr.WithError(err).
			WithMessage("record invoice").
			WithHint("Failed to record the invoice").
			WithReportableDetails(map[string]any{"invoice_id": res.InvoiceID}).
			Mark(ierr.ErrPersistence)
	}
	return nil
}

type paymentRecorder struct {
	ServiceParams
	keys *idempotency.Generator
}

func NewPaymentRecorder(params ServiceParams) PaymentRecorder {
	return &paymentRecorder{ServiceParams: params, keys: idempotency.NewGenerator()}
}

// Record always writes a pending attempt
func (r *paymentRecorder) Record(ctx context.Context, owner, sessionID, invoiceID string, amount int64) error {
	attempt := payment.NewPaymentAttempt(owner, invoiceID, amount, types.PaymentAttemptStatusPending)
	attempt.IdempotencyKey = r.keys.PaymentAttemptKey(owner, sessionID)

	if err := writeOnce(ctx, func() error { return r.PaymentRepo.CreateAttempt(ctx, attempt) }); err != nil {
		return ierr.WithError(err).
			WithMessage("record payment attempt").
			WithHint("Failed to record the payment attempt").
			WithReportableDetails(map[string]any{"invoice_id": invoiceID, "session_id": sessionID}).
			Mark(ierr.ErrPersistence)
	}
	return nil
}
