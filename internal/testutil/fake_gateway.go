package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flexprice/checkout/internal/integration/qpay"
)

// FakeGateway is a scripted qpay.Client. Unset hooks behave like a healthy gateway
// whose invoices are never paid.
type FakeGateway struct {
	mu sync.Mutex

	TokenFunc  func(ctx context.Context, call int) (string, error)
	CreateFunc func(ctx context.Context, call int, tmpl qpay.InvoiceTemplate) (*qpay.InvoiceResult, error)
	CheckFunc  func(ctx context.Context, call int, invoiceID string) (bool, error)

	tokenCalls  int
	createCalls int
	checkCalls  int
	checkTimes  []time.Time
	checkedIDs  []string
	templates   []qpay.InvoiceTemplate
}

var _ qpay.Client = (*FakeGateway)(nil)

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

// PaidOnCheck makes the n-th status check (1-based) and every later one report paid
func (g *FakeGateway) PaidOnCheck(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CheckFunc = func(_ context.Context, call int, _ string) (bool, error) {
		return call >= n, nil
	}
}

func (g *FakeGateway) RequestToken(ctx context.Context) (string, error) {
	g.mu.Lock()
	g.tokenCalls++
	call, fn := g.tokenCalls, g.TokenFunc
	g.mu.Unlock()

	if fn != nil {
		return fn(ctx, call)
	}
	return fmt.Sprintf(`{"token_type":"bearer","access_token":"token-%d","expires_in":3600}`, call), nil
}

func (g *FakeGateway) CreateInvoice(ctx context.Context, accessToken string, tmpl qpay.InvoiceTemplate) (*qpay.InvoiceResult, error) {
	g.mu.Lock()
	g.createCalls++
	g.templates = append(g.templates, tmpl)
	call, fn := g.createCalls, g.CreateFunc
	g.mu.Unlock()

	if fn != nil {
		return fn(ctx, call, tmpl)
	}
	id := fmt.Sprintf("qpay-invoice-%d", call)
	return &qpay.InvoiceResult{
		InvoiceID:    id,
		InvoiceData:  fmt.Sprintf(`{"invoice_id":%q,"qr_text":"qr-%d","qPay_shortUrl":"https://s.qpay.mn/%d"}`, id, call, call),
		IsNewInvoice: true,
		Amount:       tmpl.Amount,
	}, nil
}

func (g *FakeGateway) CheckPaymentStatus(ctx context.Context, accessToken, invoiceID string) (bool, error) {
	g.mu.Lock()
	g.checkCalls++
	g.checkTimes = append(g.checkTimes, time.Now())
	g.checkedIDs = append(g.checkedIDs, invoiceID)
	call, fn := g.checkCalls, g.CheckFunc
	g.mu.Unlock()

	if fn != nil {
		return fn(ctx, call, invoiceID)
	}
	return false, nil
}

func (g *FakeGateway) TokenCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tokenCalls
}

func (g *FakeGateway) CreateCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createCalls
}

func (g *FakeGateway) CheckCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.checkCalls
}

// CheckTimes returns when each status check arrived
func (g *FakeGateway) CheckTimes() []time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]time.Time(nil), g.checkTimes...)
}

func (g *FakeGateway) CheckedInvoiceIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.checkedIDs...)
}

func (g *FakeGateway) Templates() []qpay.InvoiceTemplate {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]qpay.InvoiceTemplate(nil), g.templates...)
}
