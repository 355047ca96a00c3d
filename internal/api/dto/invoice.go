package dto

import (
	"github.com/flexprice/checkout/internal/domain/invoice"
	"github.com/flexprice/checkout/internal/types"
	"github.com/samber/lo"
)

type InvoiceResponse struct {
	*invoice.Invoice
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	if inv == nil {
		return nil
	}
	return &InvoiceResponse{Invoice: inv}
}

// ListInvoicesResponse represents the response for listing ledger invoices
type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]

func NewListInvoicesResponse(items []*invoice.Invoice, total int, filter *types.InvoiceFilter) *ListInvoicesResponse {
	resp := types.NewListResponse(
		lo.Map(items, func(inv *invoice.Invoice, _ int) *InvoiceResponse { return NewInvoiceResponse(inv) }),
		total,
		filter.GetLimit(),
		filter.GetOffset(),
	)
	return &resp
}
