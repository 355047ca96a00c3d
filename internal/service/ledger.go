package service

import (
	"context"

	"github.com/flexprice/checkout/internal/api/dto"
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/types"
)

// LedgerService reads and settles the invoice and payment attempt ledger
type LedgerService interface {
	// GetUserInvoice returns the owner's latest invoice
	GetUserInvoice(ctx context.Context, owner string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	GetUserPayments(ctx context.Context, owner string, filter *types.PaymentAttemptFilter) (*dto.ListPaymentAttemptsResponse, error)
	ListPayments(ctx context.Context, filter *types.PaymentAttemptFilter) (*dto.ListPaymentAttemptsResponse, error)
	MarkInvoicePaid(ctx context.Context, invoiceID string) error
}

type ledgerService struct {
	ServiceParams
}

func NewLedgerService(params ServiceParams) LedgerService {
	return &ledgerService{ServiceParams: params}
}

func (s *ledgerService) GetUserInvoice(ctx context.Context, owner string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.GetLatestByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *ledgerService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	items, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewListInvoicesResponse(items, total, filter), nil
}

func (s *ledgerService) GetUserPayments(ctx context.Context, owner string, filter *types.PaymentAttemptFilter) (*dto.ListPaymentAttemptsResponse, error) {
	if filter == nil {
		filter = types.NewPaymentAttemptFilter()
	}
	filter.Owner = owner
	return s.ListPayments(ctx, filter)
}

func (s *ledgerService) ListPayments(ctx context.Context, filter *types.PaymentAttemptFilter) (*dto.ListPaymentAttemptsResponse, error) {
	if filter == nil {
		filter = types.NewPaymentAttemptFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	items, err := s.PaymentRepo.ListAttempts(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.PaymentRepo.CountAttempts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewListPaymentAttemptsResponse(items, total, filter), nil
}

func (s *ledgerService) MarkInvoicePaid(ctx context.Context, invoiceID string) error {
	if invoiceID == "" {
		return ierr.NewError("invoice id is required").
			WithHint("Invoice id is required").
			Mark(ierr.ErrValidation)
	}
	return s.InvoiceRepo.MarkPaid(ctx, invoiceID)
}
