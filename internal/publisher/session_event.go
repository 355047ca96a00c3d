package publisher

import (
	"time"

	"github.com/flexprice/checkout/internal/types"
)

// SessionEventsTopic carries every payment session state transition
const SessionEventsTopic = "payment_session_events"

// SessionEvent is the payload published on each state transition
type SessionEvent struct {
	ID            string                    `json:"id"`
	SessionID     string                    `json:"session_id"`
	Owner         string                    `json:"owner"`
	State         types.PaymentSessionState `json:"state"`
	PreviousState types.PaymentSessionState `json:"previous_state"`
	InvoiceID     string                    `json:"invoice_id,omitempty"`
	Error         string                    `json:"error,omitempty"`
	Timestamp     time.Time                 `json:"timestamp"`
}

func NewSessionEvent(sessionID, owner string, from, to types.PaymentSessionState) *SessionEvent {
	return &SessionEvent{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT),
		SessionID:     sessionID,
		Owner:         owner,
		State:         to,
		PreviousState: from,
		Timestamp:     time.Now().UTC(),
	}
}
