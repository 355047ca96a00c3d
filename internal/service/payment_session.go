package service

import (
	"context"
	"sync"
	"time"

	"github.com/flexprice/checkout/internal/api/dto"
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/publisher"
	"github.com/flexprice/checkout/internal/types"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"
)

// PaymentSessionService drives one payment session per owner from invoice
// lookup to confirmation
type PaymentSessionService interface {
	// StartPayment supersedes any session of the owner and returns once the
	// new session awaits confirmation
	StartPayment(ctx context.Context, owner string) (*dto.PaymentSessionResponse, error)
	GetSession(ctx context.Context, owner string) *dto.PaymentSessionResponse
	// Cancel is a no-op for owners without a session
	Cancel(ctx context.Context, owner string) *dto.PaymentSessionResponse
	// Recheck acquires a token when the session has none and restarts polling
	Recheck(ctx context.Context, owner string) (*dto.PaymentSessionResponse, error)
	Shutdown(ctx context.Context) error
}

type paymentSessionService struct {
	ServiceParams

	checker  InvoiceValidityChecker
	acquirer AuthorizationAcquirer
	issuer   InvoiceIssuer
	invoices InvoiceRecorder
	payments PaymentRecorder
	ledger   LedgerService
	poller   *StatusPoller

	mu       sync.Mutex
	sessions map[string]*paymentSession
	closed   bool
	starts   singleflight.Group
}

func NewPaymentSessionService(params ServiceParams) PaymentSessionService {
	return &paymentSessionService{
		ServiceParams: params,
		checker:       NewInvoiceValidityChecker(params),
		acquirer:      NewAuthorizationAcquirer(params),
		issuer:        NewInvoiceIssuer(params),
		invoices:      NewInvoiceRecorder(params),
		payments:      NewPaymentRecorder(params),
		ledger:        NewLedgerService(params),
		poller:        NewStatusPoller(params),
		sessions:      make(map[string]*paymentSession),
	}
}

var errServiceClosed = ierr.NewError("payment sessions are shutting down").
	WithHint("Please try again shortly").
	Mark(ierr.ErrInvalidOperation)

func errSessionSuperseded(sess *paymentSession) error {
	return ierr.NewErrorf("payment session %s ended before completing", sess.id).
		WithHint("The payment was cancelled").
		WithReportableDetails(map[string]any{"session_id": sess.id}).
		Mark(ierr.ErrInvalidOperation)
}

func (s *paymentSessionService) StartPayment(ctx context.Context, owner string) (*dto.PaymentSessionResponse, error) {
	if owner == "" {
		return nil, ierr.NewError("owner is required").
			WithHint("Please sign in to pay").
			Mark(ierr.ErrValidation)
	}

	// concurrent starts for one owner share a single run
	v, err, _ := s.starts.Do(owner, func() (interface{}, error) {
		return s.run(ctx, owner)
	})
	if err != nil {
		return nil, err
	}
	return v.(*dto.PaymentSessionResponse), nil
}

func (s *paymentSessionService) run(ctx context.Context, owner string) (*dto.PaymentSessionResponse, error) {
	sess, err := s.open(ctx, owner)
	if err != nil {
		return nil, err
	}

	s.Logger.WithContext(ctx).Infow("payment session started",
		"session_id", sess.id,
		"owner", owner)

	validity := s.checker.CheckValidInvoice(sess.ctx, owner)
	if validity.HasValidInvoice {
		return s.reuse(sess, validity)
	}
	return s.create(sess)
}

// open registers a fresh session, superseding the owner's previous one
func (s *paymentSessionService) open(ctx context.Context, owner string) (*paymentSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errServiceClosed
	}
	if prev, ok := s.sessions[owner]; ok {
		s.Logger.WithContext(ctx).Infow("superseding payment session",
			"session_id", prev.id,
			"owner", owner,
			"state", prev.state)
		s.cancelLocked(prev)
	}

	// the session outlives the request that started it
	sess := newPaymentSession(context.WithoutCancel(ctx), owner)
	s.sessions[owner] = sess
	s.transitionLocked(sess, types.PaymentSessionStateCheckingInvoice)
	return sess, nil
}

func (s *paymentSessionService) reuse(sess *paymentSession, validity *InvoiceValidity) (*dto.PaymentSessionResponse, error) {
	if !s.advance(sess, types.PaymentSessionStateCheckingInvoice, types.PaymentSessionStateReusingInvoice, func() {
		sess.invoiceID = validity.InvoiceID
		sess.invoiceData = validity.InvoiceData
		sess.reused = true
	}) {
		return nil, errSessionSuperseded(sess)
	}

	if !s.advance(sess, types.PaymentSessionStateReusingInvoice, types.PaymentSessionStateAcquiringToken, nil) {
		return nil, errSessionSuperseded(sess)
	}

	// the token only feeds polling here, so a failure leaves the session without one
	token, err := s.acquirer.Acquire(sess.ctx)
	if err != nil {
		s.Logger.WithContext(sess.ctx).Warnw("no gateway token for reused invoice, polling disabled",
			"session_id", sess.id,
			"invoice_id", sess.invoiceID,
			"error", err)
		token = nil
	}

	if !s.advance(sess, types.PaymentSessionStateAcquiringToken, types.PaymentSessionStateRecordingPayment, func() {
		sess.token = token
	}) {
		return nil, errSessionSuperseded(sess)
	}

	return s.recordAndAwait(sess, validity.Amount)
}

func (s *paymentSessionService) create(sess *paymentSession) (*dto.PaymentSessionResponse, error) {
	if !s.advance(sess, types.PaymentSessionStateCheckingInvoice, types.PaymentSessionStateAcquiringToken, nil) {
		return nil, errSessionSuperseded(sess)
	}

	token, err := s.acquirer.Acquire(sess.ctx)
	if err != nil {
		return nil, s.fail(sess, types.PaymentSessionStateAcquiringToken, err)
	}

	if !s.advance(sess, types.PaymentSessionStateAcquiringToken, types.PaymentSessionStateCreatingInvoice, func() {
		sess.token = token
	}) {
		return nil, errSessionSuperseded(sess)
	}

	tmpl := s.Templates.InvoiceTemplate(sess.ctx)
	res, err := s.issuer.Issue(sess.ctx, token, tmpl)
	if err != nil {
		return nil, s.fail(sess, types.PaymentSessionStateCreatingInvoice, err)
	}

	if !s.advance(sess, types.PaymentSessionStateCreatingInvoice, types.PaymentSessionStateRecordingInvoice, func() {
		sess.invoiceID = res.InvoiceID
		sess.invoiceData = res.InvoiceData
	}) {
		return nil, errSessionSuperseded(sess)
	}

	if err := s.invoices.Record(sess.ctx, sess.owner, res); err != nil {
		s.Logger.WithContext(sess.ctx).Errorw("failed to record invoice, continuing",
			"session_id", sess.id,
			"invoice_id", res.InvoiceID,
			"error", err)
	}

	if !s.advance(sess, types.PaymentSessionStateRecordingInvoice, types.PaymentSessionStateRecordingPayment, nil) {
		return nil, errSessionSuperseded(sess)
	}

	// a gateway response without an amount is billed at the template amount
	var amount *int64
	if res.Amount > 0 {
		amount = lo.ToPtr(res.Amount)
	}
	return s.recordAndAwait(sess, amount)
}

func (s *paymentSessionService) recordAndAwait(sess *paymentSession, amount *int64) (*dto.PaymentSessionResponse, error) {
	var resolved int64
	if amount != nil {
		resolved = *amount
	} else {
		resolved = s.Templates.InvoiceTemplate(sess.ctx).Amount
	}

	if err := s.payments.Record(sess.ctx, sess.owner, sess.id, sess.invoiceID, resolved); err != nil {
		s.Logger.WithContext(sess.ctx).Errorw("failed to record payment attempt, continuing",
			"session_id", sess.id,
			"invoice_id", sess.invoiceID,
			"error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isLiveLocked(sess, types.PaymentSessionStateRecordingPayment) {
		return nil, errSessionSuperseded(sess)
	}
	sess.amount = resolved
	s.transitionLocked(sess, types.PaymentSessionStateAwaitingConfirmation)
	s.startPollLocked(sess)
	return sess.snapshot(), nil
}

func (s *paymentSessionService) startPollLocked(sess *paymentSession) {
	if sess.token == nil || sess.invoiceID == "" {
		s.Logger.WithContext(sess.ctx).Warnw("payment status polling skipped",
			"session_id", sess.id,
			"has_token", sess.token != nil)
		return
	}
	sess.poll.Stop()
	sess.poll = s.poller.Start(sess.ctx, sess.token, sess.invoiceID, func() {
		s.confirm(sess)
	})
}

// confirm runs on the poller goroutine once the gateway reports the invoice paid
func (s *paymentSessionService) confirm(sess *paymentSession) {
	s.mu.Lock()
	if !s.isLiveLocked(sess, types.PaymentSessionStateAwaitingConfirmation) {
		s.mu.Unlock()
		return
	}
	sess.poll.Stop()
	s.transitionLocked(sess, types.PaymentSessionStateConfirmed)
	sess.grace = time.AfterFunc(s.Config.Payment.ConfirmationGrace, func() {
		s.finish(sess)
	})
	ctx := context.WithoutCancel(sess.ctx)
	invoiceID := sess.invoiceID
	s.mu.Unlock()

	s.Logger.WithContext(ctx).Infow("payment confirmed",
		"session_id", sess.id,
		"owner", sess.owner,
		"invoice_id", invoiceID)

	if err := s.ledger.MarkInvoicePaid(ctx, invoiceID); err != nil {
		s.Logger.WithContext(ctx).Errorw("failed to mark invoice paid",
			"session_id", sess.id,
			"invoice_id", invoiceID,
			"error", ierr.WithError(err).Mark(ierr.ErrPersistence))
		// the row still reads unpaid, so the next run may offer this invoice again
		s.Logger.WithContext(ctx).Warnw("paid invoice left reusable in the ledger",
			"owner", sess.owner,
			"invoice_id", invoiceID,
			"reuse_window", s.Config.Payment.InvoiceTTL)
	}
}

// finish ends the confirmation grace period
func (s *paymentSessionService) finish(sess *paymentSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isLiveLocked(sess, types.PaymentSessionStateConfirmed) {
		return
	}
	s.teardownLocked(sess)
}

func (s *paymentSessionService) fail(sess *paymentSession, from types.PaymentSessionState, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isLiveLocked(sess, from) {
		return errSessionSuperseded(sess)
	}

	sess.err = err
	s.transitionLocked(sess, types.PaymentSessionStateFailed)
	s.teardownLocked(sess)

	s.Logger.WithContext(sess.ctx).Errorw("payment session failed",
		"session_id", sess.id,
		"owner", sess.owner,
		"state", from,
		"error", err)
	s.Sentry.CaptureSessionFailure(sess.ctx, err, map[string]string{
		"session_id": sess.id,
		"state":      from.String(),
	})
	return err
}

func (s *paymentSessionService) GetSession(ctx context.Context, owner string) *dto.PaymentSessionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[owner]
	if !ok {
		return dto.NewIdleSessionResponse(owner)
	}
	return sess.snapshot()
}

func (s *paymentSessionService) Cancel(ctx context.Context, owner string) *dto.PaymentSessionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[owner]; ok {
		s.Logger.WithContext(ctx).Infow("cancelling payment session",
			"session_id", sess.id,
			"owner", owner,
			"state", sess.state)
		s.cancelLocked(sess)
	}
	return dto.NewIdleSessionResponse(owner)
}

func (s *paymentSessionService) Recheck(ctx context.Context, owner string) (*dto.PaymentSessionResponse, error) {
	s.mu.Lock()
	sess, ok := s.sessions[owner]
	if !ok || sess.state != types.PaymentSessionStateAwaitingConfirmation {
		s.mu.Unlock()
		return nil, ierr.NewError("no payment awaiting confirmation").
			WithHint("Start a payment before checking its status").
			Mark(ierr.ErrInvalidOperation)
	}
	token := sess.token
	s.mu.Unlock()

	if token == nil {
		var err error
		if token, err = s.acquirer.Acquire(sess.ctx); err != nil {
			s.Logger.WithContext(ctx).Warnw("recheck could not acquire a gateway token",
				"session_id", sess.id,
				"error", err)
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isLiveLocked(sess, types.PaymentSessionStateAwaitingConfirmation) {
		return nil, errSessionSuperseded(sess)
	}
	sess.token = token
	s.startPollLocked(sess)
	return sess.snapshot(), nil
}

// Shutdown cancels every session and waits for the pollers to return
func (s *paymentSessionService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	for _, sess := range s.sessions {
		s.cancelLocked(sess)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.poller.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ierr.WithError(ctx.Err()).
			WithHint("Timed out waiting for payment pollers").
			Mark(ierr.ErrSystem)
	}
}

// advance moves sess from one state to the next if it is still the owner's
// current session and still in from. mutate runs under the lock.
func (s *paymentSessionService) advance(sess *paymentSession, from, to types.PaymentSessionState, mutate func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isLiveLocked(sess, from) {
		s.Logger.WithContext(sess.ctx).Debugw("discarding stale session step",
			"session_id", sess.id,
			"expected_state", from,
			"state", sess.state)
		return false
	}
	if mutate != nil {
		mutate()
	}
	s.transitionLocked(sess, to)
	return true
}

func (s *paymentSessionService) isLiveLocked(sess *paymentSession, state types.PaymentSessionState) bool {
	return s.sessions[sess.owner] == sess && sess.state == state
}

// cancelLocked stops the session's timers before moving it to idle
func (s *paymentSessionService) cancelLocked(sess *paymentSession) {
	sess.release()
	if sess.state != types.PaymentSessionStateConfirmed {
		s.transitionLocked(sess, types.PaymentSessionStateCancelled)
	}
	s.teardownLocked(sess)
}

func (s *paymentSessionService) teardownLocked(sess *paymentSession) {
	sess.release()
	s.transitionLocked(sess, types.PaymentSessionStateIdle)
	if s.sessions[sess.owner] == sess {
		delete(s.sessions, sess.owner)
	}
}

func (s *paymentSessionService) transitionLocked(sess *paymentSession, to types.PaymentSessionState) {
	from := sess.state
	if !from.CanTransitionTo(to) {
		s.Logger.WithContext(sess.ctx).Errorw("illegal payment session transition",
			"session_id", sess.id,
			"from", from,
			"to", to)
		return
	}

	sess.state = to
	sess.updatedAt = time.Now().UTC()

	s.Sentry.AddBreadcrumb(sess.ctx, "payment_session", string(to), map[string]interface{}{
		"session_id": sess.id,
		"from":       string(from),
	})

	event := publisher.NewSessionEvent(sess.id, sess.owner, from, to)
	event.InvoiceID = sess.invoiceID
	if to == types.PaymentSessionStateFailed && sess.err != nil {
		event.Error = sess.err.Error()
	}
	// sess.ctx may already be cancelled when tearing down
	if err := s.SessionPublisher.Publish(context.WithoutCancel(sess.ctx), event); err != nil {
		s.Logger.WithContext(sess.ctx).Warnw("failed to publish session event",
			"session_id", sess.id,
			"state", to,
			"error", err)
	}
}
