package dto

import (
	"github.com/flexprice/checkout/internal/domain/payment"
	"github.com/flexprice/checkout/internal/types"
	"github.com/samber/lo"
)

type PaymentAttemptResponse struct {
	*payment.PaymentAttempt
}

func NewPaymentAttemptResponse(a *payment.PaymentAttempt) *PaymentAttemptResponse {
	if a == nil {
		return nil
	}
	return &PaymentAttemptResponse{PaymentAttempt: a}
}

// ListPaymentAttemptsResponse represents the response for listing payment attempts
type ListPaymentAttemptsResponse = types.ListResponse[*PaymentAttemptResponse]

func NewListPaymentAttemptsResponse(items []*payment.PaymentAttempt, total int, filter *types.PaymentAttemptFilter) *ListPaymentAttemptsResponse {
	resp := types.NewListResponse(
		lo.Map(items, func(a *payment.PaymentAttempt, _ int) *PaymentAttemptResponse { return NewPaymentAttemptResponse(a) }),
		total,
		filter.GetLimit(),
		filter.GetOffset(),
	)
	return &resp
}
