package service

import (
	"context"

	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/integration/qpay"
	"github.com/flexprice/checkout/internal/sentry"
)

// InvoiceIssuer creates gateway invoices
type InvoiceIssuer interface {
	Issue(ctx context.Context, token *AccessToken, tmpl qpay.InvoiceTemplate) (*qpay.InvoiceResult, error)
}

type invoiceIssuer struct {
	ServiceParams
}

func NewInvoiceIssuer(params ServiceParams) InvoiceIssuer {
	return &invoiceIssuer{ServiceParams: params}
}

func (i *invoiceIssuer) Issue(ctx context.Context, token *AccessToken, tmpl qpay.InvoiceTemplate) (*qpay.InvoiceResult, error) {
	if token == nil || token.Value == "" {
		return nil, ierr.NewError("missing access token").
			WithHint("Unable to create the invoice").
			Mark(ierr.ErrGateway)
	}

	span, ctx := i.Sentry.StartGatewaySpan(ctx, "qpay.invoice.create", map[string]interface{}{
		"amount": tmpl.Amount,
	})
	res, err := i.Gateway.CreateInvoice(ctx, token.Value, tmpl)
	sentry.FinishSpan(span, err)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Unable to create the invoice").
			Mark(ierr.ErrGateway)
	}
	return res, nil
}
