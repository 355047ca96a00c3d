package types

import (
	ierr "github.com/flexprice/checkout/internal/errors"
)

// PaymentAttemptStatus is the bookkeeping status written to the payment attempt log
type PaymentAttemptStatus string

const (
	PaymentAttemptStatusPending   PaymentAttemptStatus = "pending"
	PaymentAttemptStatusConfirmed PaymentAttemptStatus = "confirmed"
	PaymentAttemptStatusFailed    PaymentAttemptStatus = "failed"
)

func (s PaymentAttemptStatus) String() string {
	return string(s)
}

func (s PaymentAttemptStatus) Validate() error {
	switch s {
	case PaymentAttemptStatusPending, PaymentAttemptStatusConfirmed, PaymentAttemptStatusFailed:
		return nil
	}
	return ierr.NewError("invalid payment attempt status").
		WithHint("Status must be one of pending, confirmed or failed").
		WithReportableDetails(map[string]any{
			"status": s,
		}).
		Mark(ierr.ErrValidation)
}

// PaymentSessionState is a phase of the payment orchestration state machine
type PaymentSessionState string

const (
	PaymentSessionStateIdle                 PaymentSessionState = "idle"
	PaymentSessionStateCheckingInvoice      PaymentSessionState = "checking_invoice"
	PaymentSessionStateReusingInvoice       PaymentSessionState = "reusing_invoice"
	PaymentSessionStateAcquiringToken       PaymentSessionState = "acquiring_token"
	PaymentSessionStateCreatingInvoice      PaymentSessionState = "creating_invoice"
	PaymentSessionStateRecordingInvoice     PaymentSessionState = "recording_invoice"
	PaymentSessionStateRecordingPayment     PaymentSessionState = "recording_payment"
	PaymentSessionStateAwaitingConfirmation PaymentSessionState = "awaiting_confirmation"
	PaymentSessionStateConfirmed            PaymentSessionState = "confirmed"
	PaymentSessionStateCancelled            PaymentSessionState = "cancelled"
	PaymentSessionStateFailed               PaymentSessionState = "failed"
)

// paymentSessionTransitions lists the successor states allowed from each state
var paymentSessionTransitions = map[PaymentSessionState][]PaymentSessionState{
	PaymentSessionStateIdle: {
		PaymentSessionStateCheckingInvoice,
	},
	PaymentSessionStateCheckingInvoice: {
		PaymentSessionStateReusingInvoice,
		PaymentSessionStateAcquiringToken,
		PaymentSessionStateCancelled,
		PaymentSessionStateFailed,
	},
	PaymentSessionStateReusingInvoice: {
		PaymentSessionStateAcquiringToken,
		PaymentSessionStateCancelled,
	},
	PaymentSessionStateAcquiringToken: {
		PaymentSessionStateCreatingInvoice,
		PaymentSessionStateRecordingPayment,
		PaymentSessionStateCancelled,
		PaymentSessionStateFailed,
	},
	PaymentSessionStateCreatingInvoice: {
		PaymentSessionStateRecordingInvoice,
		PaymentSessionStateCancelled,
		PaymentSessionStateFailed,
	},
	PaymentSessionStateRecordingInvoice: {
		PaymentSessionStateRecordingPayment,
		PaymentSessionStateCancelled,
	},
	PaymentSessionStateRecordingPayment: {
		PaymentSessionStateAwaitingConfirmation,
		PaymentSessionStateCancelled,
	},
	PaymentSessionStateAwaitingConfirmation: {
		PaymentSessionStateConfirmed,
		PaymentSessionStateCancelled,
	},
	PaymentSessionStateConfirmed: {
		PaymentSessionStateIdle,
	},
	PaymentSessionStateCancelled: {
		PaymentSessionStateIdle,
	},
	PaymentSessionStateFailed: {
		PaymentSessionStateIdle,
	},
}

func (s PaymentSessionState) String() string {
	return string(s)
}

// CanTransitionTo reports whether next is a legal successor of s
func (s PaymentSessionState) CanTransitionTo(next PaymentSessionState) bool {
	for _, allowed := range paymentSessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state ends a session
func (s PaymentSessionState) IsTerminal() bool {
	switch s {
	case PaymentSessionStateConfirmed, PaymentSessionStateCancelled, PaymentSessionStateFailed:
		return true
	}
	return false
}

// IsActive reports whether a session in this state still owns resources
func (s PaymentSessionState) IsActive() bool {
	return s != PaymentSessionStateIdle && !s.IsTerminal()
}
