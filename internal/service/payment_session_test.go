package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flexprice/checkout/internal/api/dto"
	"github.com/flexprice/checkout/internal/domain/credential"
	"github.com/flexprice/checkout/internal/domain/invoice"
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/integration/qpay"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/testutil"
	"github.com/flexprice/checkout/internal/types"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testOwner = "principal-1"

type PaymentSessionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  PaymentSessionService
	interval time.Duration
}

func TestPaymentSessionService(t *testing.T) {
	suite.Run(t, new(PaymentSessionServiceSuite))
}

func (s *PaymentSessionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params, _ := newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewPaymentSessionService(params)
	s.interval = s.GetConfig().Payment.PollInterval
}

func (s *PaymentSessionServiceSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.NoError(s.service.Shutdown(ctx))
	s.BaseServiceTestSuite.TearDownTest()
}

func (s *PaymentSessionServiceSuite) state() types.PaymentSessionState {
	return s.service.GetSession(s.GetContext(), testOwner).State
}

func (s *PaymentSessionServiceSuite) ownerInvoices() []*invoice.Invoice {
	items, err := s.GetStores().InvoiceRepo.List(s.GetContext(), &types.InvoiceFilter{Owner: testOwner})
	s.Require().NoError(err)
	return items
}

func (s *PaymentSessionServiceSuite) TestFreshPaymentCreatesInvoice() {
	resp, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)

	s.Equal(types.PaymentSessionStateAwaitingConfirmation, resp.State)
	s.Equal("qpay-invoice-1", resp.InvoiceID)
	s.Contains(resp.InvoiceData, "qr-1")
	s.Equal(int64(10), resp.Amount)
	s.True(resp.TokenAcquired)
	s.False(resp.Reused)
	s.Equal(1, s.GetGateway().CreateCalls())

	tmpl := s.GetGateway().Templates()[0]
	s.Equal("12345678", tmpl.SenderInvoiceNumber)
	s.Equal("terminal", tmpl.ReceiverCode)
	s.Equal("Railway access 12 months", tmpl.Description)

	invoices := s.ownerInvoices()
	s.Require().Len(invoices, 1)
	s.Equal("qpay-invoice-1", invoices[0].InvoiceID)
	s.Equal(resp.InvoiceData, invoices[0].Payload)
	s.False(invoices[0].IsPaid)

	attempts := s.GetStores().PaymentRepo.AttemptsOf(s.GetContext(), testOwner)
	s.Require().Len(attempts, 1)
	s.Equal(int64(10), attempts[0].Amount)
	s.Equal(types.PaymentAttemptStatusPending, attempts[0].Status)
	s.Equal("qpay-invoice-1", attempts[0].InvoiceID)

	s.Equal([]types.PaymentSessionState{
		types.PaymentSessionStateCheckingInvoice,
		types.PaymentSessionStateAcquiringToken,
		types.PaymentSessionStateCreatingInvoice,
		types.PaymentSessionStateRecordingInvoice,
		types.PaymentSessionStateRecordingPayment,
		types.PaymentSessionStateAwaitingConfirmation,
	}, s.GetPublisher().States(resp.SessionID))
}

func (s *PaymentSessionServiceSuite) TestReusesUnpaidInvoice() {
	seeded := seedInvoice(&s.BaseServiceTestSuite, testOwner, "INV-SEEDED", 25, time.Hour, false)

	resp, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)

	s.True(resp.Reused)
	s.Equal("INV-SEEDED", resp.InvoiceID)
	s.Equal(seeded.Payload, resp.InvoiceData)
	s.Equal(int64(25), resp.Amount)
	s.True(resp.TokenAcquired)
	s.Equal(0, s.GetGateway().CreateCalls())
	s.Equal(1, s.GetStores().InvoiceRepo.CreateCalls())

	attempts := s.GetStores().PaymentRepo.AttemptsOf(s.GetContext(), testOwner)
	s.Require().Len(attempts, 1)
	s.Equal(int64(25), attempts[0].Amount)

	s.Equal([]types.PaymentSessionState{
		types.PaymentSessionStateCheckingInvoice,
		types.PaymentSessionStateReusingInvoice,
		types.PaymentSessionStateAcquiringToken,
		types.PaymentSessionStateRecordingPayment,
		types.PaymentSessionStateAwaitingConfirmation,
	}, s.GetPublisher().States(resp.SessionID))

	s.Eventually(func() bool {
		ids := s.GetGateway().CheckedInvoiceIDs()
		return len(ids) > 0 && ids[0] == "INV-SEEDED"
	}, time.Second, 5*time.Millisecond)
}

func (s *PaymentSessionServiceSuite) TestInvoiceNotReusable() {
	tests := []struct {
		name string
		age  time.Duration
		paid bool
	}{
		{name: "expired", age: 25 * time.Hour},
		{name: "paid", age: time.Hour, paid: true},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			defer s.TearDownTest()

			seedInvoice(&s.BaseServiceTestSuite, testOwner, "INV-OLD", 10, tt.age, tt.paid)

			resp, err := s.service.StartPayment(s.GetContext(), testOwner)
			s.Require().NoError(err)
			s.False(resp.Reused)
			s.Equal("qpay-invoice-1", resp.InvoiceID)
			s.Equal(1, s.GetGateway().CreateCalls())
		})
	}
}

func (s *PaymentSessionServiceSuite) TestLookupFailureIssuesNewInvoice() {
	seedInvoice(&s.BaseServiceTestSuite, testOwner, "INV-SEEDED", 10, time.Hour, false)
	s.GetStores().InvoiceRepo.Faults.Fail("GetLatestByOwner", errors.New("connection reset"))

	resp, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)
	s.False(resp.Reused)
	s.Equal(1, s.GetGateway().CreateCalls())
}

func (s *PaymentSessionServiceSuite) TestRepeatedStartReusesInvoice() {
	first, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)

	second, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)

	s.NotEqual(first.SessionID, second.SessionID)
	s.Equal(first.InvoiceID, second.InvoiceID)
	s.True(second.Reused)
	s.Equal(1, s.GetGateway().CreateCalls())
	s.Len(s.ownerInvoices(), 1)

	// the superseded session is cancelled and torn down
	states := s.GetPublisher().States(first.SessionID)
	s.Require().GreaterOrEqual(len(states), 2)
	s.Equal(types.PaymentSessionStateCancelled, states[len(states)-2])
	s.Equal(types.PaymentSessionStateIdle, states[len(states)-1])
}

func (s *PaymentSessionServiceSuite) TestConcurrentStartsShareOneRun() {
	release := make(chan struct{})
	s.GetGateway().CreateFunc = func(ctx context.Context, call int, tmpl qpay.InvoiceTemplate) (*qpay.InvoiceResult, error) {
		<-release
		return &qpay.InvoiceResult{InvoiceID: "INV-1", InvoiceData: `{"invoice_id":"INV-1"}`, Amount: tmpl.Amount}, nil
	}

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*dto.PaymentSessionResponse, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := s.service.StartPayment(s.GetContext(), testOwner)
			s.NoError(err)
			results[i] = resp
		}(i)
	}

	s.Eventually(func() bool {
		return s.state() == types.PaymentSessionStateCreatingInvoice
	}, time.Second, time.Millisecond)
	// let the remaining callers join the in-flight run
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	s.Equal(1, s.GetGateway().CreateCalls())
	for _, r := range results {
		s.Require().NotNil(r)
		s.Equal(results[0].SessionID, r.SessionID)
	}
}

func (s *PaymentSessionServiceSuite) TestPollingConfirmsThenReturnsToIdle() {
	s.GetGateway().PaidOnCheck(3)

	resp, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)

	s.Eventually(func() bool {
		return s.state() == types.PaymentSessionStateConfirmed
	}, time.Second, time.Millisecond)
	s.Equal(3, s.GetGateway().CheckCalls())

	s.Eventually(func() bool {
		invoices := s.ownerInvoices()
		return len(invoices) == 1 && invoices[0].IsPaid
	}, time.Second, time.Millisecond)

	s.Eventually(func() bool {
		return s.state() == types.PaymentSessionStateIdle
	}, time.Second, time.Millisecond)

	// confirmation writes no second attempt and polling has stopped
	s.Len(s.GetStores().PaymentRepo.AttemptsOf(s.GetContext(), testOwner), 1)
	time.Sleep(3 * s.interval)
	s.Equal(3, s.GetGateway().CheckCalls())

	states := s.GetPublisher().States(resp.SessionID)
	s.Equal(types.PaymentSessionStateConfirmed, states[len(states)-2])
	s.Equal(types.PaymentSessionStateIdle, states[len(states)-1])
}

func (s *PaymentSessionServiceSuite) TestPollingCadence() {
	start := time.Now()
	_, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)

	s.Eventually(func() bool {
		return s.GetGateway().CheckCalls() >= 3
	}, time.Second, time.Millisecond)

	times := s.GetGateway().CheckTimes()
	s.Less(times[0].Sub(start), s.interval/2, "first check runs immediately")
	for i := 1; i < 3; i++ {
		s.GreaterOrEqual(times[i].Sub(times[i-1]), s.interval*3/4)
	}
}

func (s *PaymentSessionServiceSuite) TestPollingErrorsAreAbsorbed() {
	s.GetGateway().CheckFunc = func(_ context.Context, call int, _ string) (bool, error) {
		if call < 3 {
			return false, ierr.NewError("gateway unavailable").Mark(ierr.ErrHTTPClient)
		}
		return true, nil
	}

	_, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)

	s.Eventually(func() bool {
		return s.state() == types.PaymentSessionStateConfirmed
	}, time.Second, time.Millisecond)
}

func (s *PaymentSessionServiceSuite) TestMarkPaidFailureStillConfirms() {
	s.GetStores().InvoiceRepo.Faults.Fail("MarkPaid", errors.New("disk full"))
	s.GetGateway().PaidOnCheck(1)

	_, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)

	s.Eventually(func() bool {
		return s.state() == types.PaymentSessionStateConfirmed
	}, time.Second, time.Millisecond)
	s.Eventually(func() bool {
		return s.state() == types.PaymentSessionStateIdle
	}, time.Second, time.Millisecond)
	s.False(s.ownerInvoices()[0].IsPaid)
}

func (s *PaymentSessionServiceSuite) TestMarkPaidFailureWarnsAboutReuse() {
	core, logs := observer.New(zap.WarnLevel)
	params, _ := newTestServiceParams(&s.BaseServiceTestSuite)
	params.Logger = &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	s.service = NewPaymentSessionService(params)

	s.GetStores().InvoiceRepo.Faults.Fail("MarkPaid", errors.New("disk full"))
	s.GetGateway().PaidOnCheck(1)

	first, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)
	s.Eventually(func() bool {
		return logs.FilterMessage("paid invoice left reusable in the ledger").Len() == 1
	}, time.Second, time.Millisecond)

	entry := logs.FilterMessage("paid invoice left reusable in the ledger").All()[0]
	s.Equal(first.InvoiceID, entry.ContextMap()["invoice_id"])
	s.Equal(testOwner, entry.ContextMap()["owner"])

	s.Eventually(func() bool {
		return s.state() == types.PaymentSessionStateIdle
	}, time.Second, time.Millisecond)

	// the unpaid ledger row is offered again on the next run
	second, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)
	s.True(second.Reused)
	s.Equal(first.InvoiceID, second.InvoiceID)
}

func (s *PaymentSessionServiceSuite) TestCancelStopsPolling() {
	_, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)

	s.Eventually(func() bool {
		return s.GetGateway().CheckCalls() >= 1
	}, time.Second, time.Millisecond)

	resp := s.service.Cancel(s.GetContext(), testOwner)
	s.Equal(types.PaymentSessionStateIdle, resp.State)
	s.Equal(types.PaymentSessionStateIdle, s.state())

	calls := s.GetGateway().CheckCalls()
	time.Sleep(3 * s.interval)
	s.LessOrEqual(s.GetGateway().CheckCalls(), calls+1)
}

func (s *PaymentSessionServiceSuite) TestPaidCheckAfterCancelIsDiscarded() {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	s.GetGateway().CheckFunc = func(_ context.Context, _ int, _ string) (bool, error) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		return true, nil
	}

	resp, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)

	select {
	case <-entered:
	case <-time.After(time.Second):
		s.FailNow("status check never started")
	}

	s.service.Cancel(s.GetContext(), testOwner)
	published := len(s.GetPublisher().Events())
	close(release)

	time.Sleep(3 * s.interval)
	s.Equal(types.PaymentSessionStateIdle, s.state())
	s.Len(s.GetPublisher().Events(), published)
	s.NotContains(s.GetPublisher().States(resp.SessionID), types.PaymentSessionStateConfirmed)
	s.Require().Len(s.ownerInvoices(), 1)
	s.False(s.ownerInvoices()[0].IsPaid)
	s.Equal(1, s.GetGateway().CheckCalls())
}

func (s *PaymentSessionServiceSuite) TestSlowChecksNeverOverlap() {
	var inFlight, maxInFlight atomic.Int32
	s.GetGateway().CheckFunc = func(_ context.Context, _ int, _ string) (bool, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(s.interval * 5 / 2)
		return false, nil
	}

	_, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)

	window := 10 * s.interval
	time.Sleep(window)
	s.service.Cancel(s.GetContext(), testOwner)

	s.Equal(int32(1), maxInFlight.Load())
	calls := s.GetGateway().CheckCalls()
	s.GreaterOrEqual(calls, 2)
	// each check occupies at least two and a half intervals
	s.LessOrEqual(calls, int(window/(s.interval*5/2))+1)

	times := s.GetGateway().CheckTimes()
	for i := 1; i < len(times); i++ {
		s.GreaterOrEqual(times[i].Sub(times[i-1]), s.interval*5/2)
	}
}

func (s *PaymentSessionServiceSuite) TestCancelWithoutSessionIsNoop() {
	resp := s.service.Cancel(s.GetContext(), testOwner)
	s.Equal(types.PaymentSessionStateIdle, resp.State)
	s.Empty(s.GetPublisher().Events())
}

func (s *PaymentSessionServiceSuite) TestCancelDuringIssuanceDiscardsResult() {
	release := make(chan struct{})
	s.GetGateway().CreateFunc = func(ctx context.Context, call int, tmpl qpay.InvoiceTemplate) (*qpay.InvoiceResult, error) {
		<-release
		return &qpay.InvoiceResult{InvoiceID: "INV-LATE", InvoiceData: `{"invoice_id":"INV-LATE"}`, Amount: tmpl.Amount}, nil
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := s.service.StartPayment(s.GetContext(), testOwner)
		errCh <- err
	}()

	s.Eventually(func() bool {
		return s.state() == types.PaymentSessionStateCreatingInvoice
	}, time.Second, time.Millisecond)
	sessionID := s.service.GetSession(s.GetContext(), testOwner).SessionID

	s.service.Cancel(s.GetContext(), testOwner)
	close(release)

	err := <-errCh
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))

	s.Equal(types.PaymentSessionStateIdle, s.state())
	s.Equal(0, s.GetStores().InvoiceRepo.CreateCalls())
	s.Empty(s.GetStores().PaymentRepo.AttemptsOf(s.GetContext(), testOwner))
	s.Equal(0, s.GetGateway().CheckCalls())
	s.Equal([]types.PaymentSessionState{
		types.PaymentSessionStateCheckingInvoice,
		types.PaymentSessionStateAcquiringToken,
		types.PaymentSessionStateCreatingInvoice,
		types.PaymentSessionStateCancelled,
		types.PaymentSessionStateIdle,
	}, s.GetPublisher().States(sessionID))
}

func (s *PaymentSessionServiceSuite) TestCancelDuringGraceEndsSession() {
	s.GetGateway().PaidOnCheck(1)

	_, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)
	s.Eventually(func() bool {
		return s.state() == types.PaymentSessionStateConfirmed
	}, time.Second, time.Millisecond)

	s.service.Cancel(s.GetContext(), testOwner)
	s.Equal(types.PaymentSessionStateIdle, s.state())
}

func (s *PaymentSessionServiceSuite) TestTokenFailureFailsNewInvoice() {
	tests := []struct {
		name    string
		token   func(ctx context.Context, call int) (string, error)
		unauthz bool
	}{
		{
			name: "gateway error",
			token: func(context.Context, int) (string, error) {
				return "", ierr.NewError("connection refused").Mark(ierr.ErrHTTPClient)
			},
		},
		{
			name: "unauthorized",
			token: func(context.Context, int) (string, error) {
				return "", ierr.NewError("status 401").
					WithHint(ierr.ReauthenticateHint).
					Mark(ierr.ErrUnauthorized)
			},
			unauthz: true,
		},
		{
			name: "unparseable token",
			token: func(context.Context, int) (string, error) {
				return "not-json", nil
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			defer s.TearDownTest()
			s.GetGateway().TokenFunc = tt.token

			_, err := s.service.StartPayment(s.GetContext(), testOwner)
			s.Require().Error(err)
			s.True(ierr.IsAuthorization(err))
			s.Equal(tt.unauthz, ierr.IsUnauthorized(err))

			s.Equal(types.PaymentSessionStateIdle, s.state())
			s.Equal(0, s.GetGateway().CreateCalls())
			s.Empty(s.GetStores().PaymentRepo.AttemptsOf(s.GetContext(), testOwner))

			events := s.GetPublisher().Events()
			s.Require().NotEmpty(events)
			s.Equal(types.PaymentSessionStateIdle, events[len(events)-1].State)
			failed := events[len(events)-2]
			s.Equal(types.PaymentSessionStateFailed, failed.State)
			s.NotEmpty(failed.Error)
		})
	}
}

func (s *PaymentSessionServiceSuite) TestMissingGatewayAmountUsesTemplate() {
	s.GetGateway().CreateFunc = func(ctx context.Context, call int, tmpl qpay.InvoiceTemplate) (*qpay.InvoiceResult, error) {
		return &qpay.InvoiceResult{InvoiceID: "INV-NOAMOUNT", InvoiceData: `{"invoice_id":"INV-NOAMOUNT"}`}, nil
	}

	resp, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)
	s.Equal(int64(10), resp.Amount)

	attempts := s.GetStores().PaymentRepo.AttemptsOf(s.GetContext(), testOwner)
	s.Require().Len(attempts, 1)
	s.Equal(int64(10), attempts[0].Amount)
	s.Equal("INV-NOAMOUNT", attempts[0].InvoiceID)
}

func (s *PaymentSessionServiceSuite) TestCreateFailureFails() {
	s.GetGateway().CreateFunc = func(context.Context, int, qpay.InvoiceTemplate) (*qpay.InvoiceResult, error) {
		return nil, ierr.NewError("status 500").Mark(ierr.ErrHTTPClient)
	}

	_, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().Error(err)
	s.True(ierr.IsGateway(err))
	s.Equal(types.PaymentSessionStateIdle, s.state())
	s.Empty(s.ownerInvoices())
	s.Empty(s.GetStores().PaymentRepo.AttemptsOf(s.GetContext(), testOwner))
}

func (s *PaymentSessionServiceSuite) TestLedgerWriteFailuresAreAbsorbed() {
	s.GetStores().InvoiceRepo.Faults.Fail("Create", errors.New("write failed"))
	s.GetStores().PaymentRepo.Faults.Fail("CreateAttempt", errors.New("write failed"))

	resp, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)
	s.Equal(types.PaymentSessionStateAwaitingConfirmation, resp.State)
	s.Equal("qpay-invoice-1", resp.InvoiceID)

	s.Eventually(func() bool {
		return s.GetGateway().CheckCalls() >= 1
	}, time.Second, time.Millisecond)
}

func (s *PaymentSessionServiceSuite) TestReuseWithoutTokenSkipsPollingUntilRecheck() {
	seedInvoice(&s.BaseServiceTestSuite, testOwner, "INV-SEEDED", 10, time.Hour, false)
	s.GetGateway().TokenFunc = func(_ context.Context, call int) (string, error) {
		if call == 1 {
			return "", ierr.NewError("timeout").Mark(ierr.ErrHTTPClient)
		}
		return `{"access_token":"fresh"}`, nil
	}

	resp, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)
	s.Equal(types.PaymentSessionStateAwaitingConfirmation, resp.State)
	s.False(resp.TokenAcquired)
	s.Len(s.GetStores().PaymentRepo.AttemptsOf(s.GetContext(), testOwner), 1)

	time.Sleep(2 * s.interval)
	s.Equal(0, s.GetGateway().CheckCalls())

	rechecked, err := s.service.Recheck(s.GetContext(), testOwner)
	s.Require().NoError(err)
	s.True(rechecked.TokenAcquired)
	s.Equal(2, s.GetGateway().TokenCalls())

	s.Eventually(func() bool {
		return s.GetGateway().CheckCalls() >= 2
	}, time.Second, time.Millisecond)
}

func (s *PaymentSessionServiceSuite) TestRecheckChecksImmediately() {
	// a long interval leaves the recheck as the only check after the first
	cfg := s.GetConfig()
	original := cfg.Payment.PollInterval
	cfg.Payment.PollInterval = time.Minute
	defer func() { cfg.Payment.PollInterval = original }()
	params, _ := newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewPaymentSessionService(params)

	_, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)
	s.Eventually(func() bool {
		return s.GetGateway().CheckCalls() >= 1
	}, time.Second, time.Millisecond)

	s.GetGateway().PaidOnCheck(2)
	_, err = s.service.Recheck(s.GetContext(), testOwner)
	s.Require().NoError(err)

	s.Eventually(func() bool {
		return s.state() == types.PaymentSessionStateConfirmed
	}, time.Second, time.Millisecond)
	s.Equal(2, s.GetGateway().CheckCalls())
	s.Equal(1, s.GetGateway().TokenCalls())
}

func (s *PaymentSessionServiceSuite) TestRecheckWithoutSession() {
	_, err := s.service.Recheck(s.GetContext(), testOwner)
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *PaymentSessionServiceSuite) TestStoredTemplateIsUsed() {
	s.Require().NoError(s.GetStores().CredentialRepo.SaveTemplate(s.GetContext(), &credential.InvoiceTemplate{
		SenderInvoiceNumber: "SHOP-1",
		ReceiverCode:        "kiosk",
		Description:         "Monthly pass",
		Amount:              3500,
	}))

	resp, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)
	s.Equal(int64(3500), resp.Amount)

	tmpl := s.GetGateway().Templates()[0]
	s.Equal("SHOP-1", tmpl.SenderInvoiceNumber)
	s.Equal("kiosk", tmpl.ReceiverCode)
	s.Equal("Monthly pass", tmpl.Description)
}

func (s *PaymentSessionServiceSuite) TestOwnersAreIsolated() {
	_, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)
	other, err := s.service.StartPayment(s.GetContext(), "principal-2")
	s.Require().NoError(err)

	s.Equal(types.PaymentSessionStateAwaitingConfirmation, s.state())
	s.Equal(types.PaymentSessionStateAwaitingConfirmation, other.State)

	s.service.Cancel(s.GetContext(), "principal-2")
	s.Equal(types.PaymentSessionStateAwaitingConfirmation, s.state())
}

func (s *PaymentSessionServiceSuite) TestStartRequiresOwner() {
	_, err := s.service.StartPayment(s.GetContext(), "")
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PaymentSessionServiceSuite) TestShutdownCancelsSessions() {
	_, err := s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Require().NoError(s.service.Shutdown(ctx))
	s.Equal(types.PaymentSessionStateIdle, s.state())

	_, err = s.service.StartPayment(s.GetContext(), testOwner)
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))
}
