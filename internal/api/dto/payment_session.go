package dto

import (
	"time"

	"github.com/flexprice/checkout/internal/types"
)

// PaymentSessionResponse is the observable state of an owner's payment session.
// Owners without a live session are reported in the idle state.
type PaymentSessionResponse struct {
	SessionID     string                    `json:"session_id,omitempty"`
	Owner         string                    `json:"owner"`
	State         types.PaymentSessionState `json:"state"`
	InvoiceID     string                    `json:"invoice_id,omitempty"`
	InvoiceData   string                    `json:"invoice_data,omitempty"`
	Amount        int64                     `json:"amount,omitempty"`
	Reused        bool                      `json:"reused"`
	TokenAcquired bool                      `json:"token_acquired"`
	Error         string                    `json:"error,omitempty"`
	StartedAt     *time.Time                `json:"started_at,omitempty"`
	UpdatedAt     *time.Time                `json:"updated_at,omitempty"`
}

// NewIdleSessionResponse reports an owner without a session
func NewIdleSessionResponse(owner string) *PaymentSessionResponse {
	return &PaymentSessionResponse{
		Owner: owner,
		State: types.PaymentSessionStateIdle,
	}
}

// IsIdle is true when no session exists for the owner
func (r *PaymentSessionResponse) IsIdle() bool {
	return r == nil || r.State == types.PaymentSessionStateIdle
}
