package service

import (
	"context"
	"time"

	"github.com/flexprice/checkout/internal/api/dto"
	"github.com/flexprice/checkout/internal/types"
	"github.com/samber/lo"
)

// paymentSession is mutated only under paymentSessionService.mu
type paymentSession struct {
	id    string
	owner string
	state types.PaymentSessionState

	invoiceID   string
	invoiceData string
	amount      int64
	reused      bool
	token       *AccessToken
	err         error

	ctx    context.Context
	cancel context.CancelFunc
	poll   *PollHandle
	grace  *time.Timer

	startedAt time.Time
	updatedAt time.Time
}

func newPaymentSession(parent context.Context, owner string) *paymentSession {
	ctx, cancel := context.WithCancel(parent)
	now := time.Now().UTC()
	return &paymentSession{
		id:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SESSION),
		owner:     owner,
		state:     types.PaymentSessionStateIdle,
		ctx:       ctx,
		cancel:    cancel,
		startedAt: now,
		updatedAt: now,
	}
}

// release stops the poll and the grace timer and cancels in-flight calls
func (s *paymentSession) release() {
	s.poll.Stop()
	if s.grace != nil {
		s.grace.Stop()
	}
	s.cancel()
}

func (s *paymentSession) snapshot() *dto.PaymentSessionResponse {
	resp := &dto.PaymentSessionResponse{
		SessionID:     s.id,
		Owner:         s.owner,
		State:         s.state,
		InvoiceID:     s.invoiceID,
		InvoiceData:   s.invoiceData,
		Amount:        s.amount,
		Reused:        s.reused,
		TokenAcquired: s.token != nil,
		StartedAt:     lo.ToPtr(s.startedAt),
		UpdatedAt:     lo.ToPtr(s.updatedAt),
	}
	if s.err != nil {
		resp.Error = s.err.Error()
	}
	return resp
}
