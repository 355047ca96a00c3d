package service

import (
	"context"
	"time"

	ierr "github.com/flexprice/checkout/internal/errors"
)

// InvoiceValidity describes a ledger invoice the owner can still pay
type InvoiceValidity struct {
	HasValidInvoice bool
	InvoiceID       string
	InvoiceData     string
	Amount          *int64
}

// InvoiceValidityChecker decides whether an owner's last invoice can be reused
type InvoiceValidityChecker interface {
	// CheckValidInvoice never fails. Lookup errors are logged and reported as no valid invoice.
	CheckValidInvoice(ctx context.Context, owner string) *InvoiceValidity
}

type invoiceValidityChecker struct {
	ServiceParams
	now func() time.Time
}

func NewInvoiceValidityChecker(params ServiceParams) InvoiceValidityChecker {
	return &invoiceValidityChecker{
		ServiceParams: params,
		now:           time.Now,
	}
}

func (c *invoiceValidityChecker) CheckValidInvoice(ctx context.Context, owner string) *InvoiceValidity {
	none := &InvoiceValidity{}

	inv, err := c.InvoiceRepo.GetLatestByOwner(ctx, owner)
	if err != nil {
		if !ierr.IsNotFound(err) {
			c.Logger.WithContext(ctx).Warnw("invoice lookup failed, issuing a new invoice",
				"owner", owner,
				"error", err)
		}
		return none
	}

	if !inv.IsReusable(c.now().UTC(), c.Config.Payment.InvoiceTTL) {
		return none
	}

	invoiceID := inv.GatewayInvoiceID()
	if invoiceID == "" || inv.Payload == "" {
		c.Logger.WithContext(ctx).Warnw("ledger invoice is not identifiable, issuing a new invoice",
			"owner", owner,
			"ledger_id", inv.ID)
		return none
	}

	amount := inv.Amount
	return &InvoiceValidity{
		HasValidInvoice: true,
		InvoiceID:       invoiceID,
		InvoiceData:     inv.Payload,
		Amount:          &amount,
	}
}
