package service

import (
	"context"
	"sync"
	"time"

	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/sentry"
	"github.com/sourcegraph/conc"
)

// StatusPoller checks a gateway invoice on a fixed interval until it is paid
// or the poll is stopped
type StatusPoller struct {
	ServiceParams
	interval time.Duration
	wg       conc.WaitGroup
}

func NewStatusPoller(params ServiceParams) *StatusPoller {
	return &StatusPoller{
		ServiceParams: params,
		interval:      params.Config.Payment.PollInterval,
	}
}

// PollHandle stops a running poll
type PollHandle struct {
	ticker *time.Ticker
	cancel context.CancelFunc
	once   sync.Once
}

// Stop halts the ticker before returning. A check already in flight is
// cancelled and its result discarded.
func (h *PollHandle) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.ticker.Stop()
		h.cancel()
	})
}

// Start checks immediately, then once per interval. onPaid runs at most once,
// on the poller goroutine, after which polling ends.
func (p *StatusPoller) Start(ctx context.Context, token *AccessToken, invoiceID string, onPaid func()) *PollHandle {
	ctx, cancel := context.WithCancel(ctx)
	h := &PollHandle{
		ticker: time.NewTicker(p.interval),
		cancel: cancel,
	}

	p.wg.Go(func() {
		defer h.Stop()
		for ctx.Err() == nil {
			if p.check(ctx, token, invoiceID) {
				onPaid()
				return
			}

			// a tick that fired while the check was in flight is dropped
			select {
			case <-h.ticker.C:
			default:
			}

			select {
			case <-ctx.Done():
				return
			case <-h.ticker.C:
			}
		}
	})

	return h
}

func (p *StatusPoller) check(ctx context.Context, token *AccessToken, invoiceID string) bool {
	span, spanCtx := p.Sentry.StartGatewaySpan(ctx, "qpay.payment.check", map[string]interface{}{
		"invoice_id": invoiceID,
	})
	paid, err := p.Gateway.CheckPaymentStatus(spanCtx, token.Value, invoiceID)
	sentry.FinishSpan(span, err)

	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		err = ierr.WithError(err).
			WithHint("Payment status check failed").
			Mark(ierr.ErrPolling)
		p.Logger.WithContext(ctx).Warnw("payment status check failed, polling continues",
			"invoice_id", invoiceID,
			"error", err)
		return false
	}
	return paid
}

// Wait blocks until every poll goroutine has returned
func (p *StatusPoller) Wait() {
	p.wg.Wait()
}
