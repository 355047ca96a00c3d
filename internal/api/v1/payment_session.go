package v1

import (
	"io"
	"net/http"

	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/publisher"
	"github.com/flexprice/checkout/internal/pubsub"
	"github.com/flexprice/checkout/internal/service"
	"github.com/flexprice/checkout/internal/types"
	"github.com/gin-gonic/gin"
)

type PaymentSessionHandler struct {
	sessions service.PaymentSessionService
	ledger   service.LedgerService
	events   pubsub.Subscriber
	logger   *logger.Logger
}

func NewPaymentSessionHandler(
	sessions service.PaymentSessionService,
	ledger service.LedgerService,
	events pubsub.Subscriber,
	logger *logger.Logger,
) *PaymentSessionHandler {
	return &PaymentSessionHandler{
		sessions: sessions,
		ledger:   ledger,
		events:   events,
		logger:   logger,
	}
}

// @Summary Start payment
// @Description Start a payment session, reusing the caller's unpaid invoice when one is still valid
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.PaymentSessionResponse
// @Failure 401 {object} ierr.ErrorResponse
// @Failure 502 {object} ierr.ErrorResponse
// @Router /payments/session [post]
func (h *PaymentSessionHandler) StartPayment(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.sessions.StartPayment(ctx, types.GetUserID(ctx))
	if err != nil {
		h.logger.WithContext(ctx).Errorw("failed to start payment", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Summary Get payment session
// @Description Get the caller's payment session, idle when there is none
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.PaymentSessionResponse
// @Router /payments/session [get]
func (h *PaymentSessionHandler) GetSession(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, h.sessions.GetSession(ctx, types.GetUserID(ctx)))
}

// @Summary Cancel payment session
// @Description Cancel the caller's payment session and stop polling
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.PaymentSessionResponse
// @Router /payments/session [delete]
func (h *PaymentSessionHandler) CancelSession(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, h.sessions.Cancel(ctx, types.GetUserID(ctx)))
}

// @Summary Recheck payment
// @Description Check the payment status now and resume polling
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.PaymentSessionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /payments/session/check [post]
func (h *PaymentSessionHandler) RecheckSession(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.sessions.Recheck(ctx, types.GetUserID(ctx))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Stream payment session events
// @Description Server-sent events for every state transition of the caller's payment sessions
// @Tags Payments
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {object} publisher.SessionEvent
// @Router /payments/session/events [get]
func (h *PaymentSessionHandler) StreamEvents(c *gin.Context) {
	ctx := c.Request.Context()
	owner := types.GetUserID(ctx)

	messages, err := h.events.Subscribe(ctx, publisher.SessionEventsTopic)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-messages:
			if !ok {
				return false
			}
			msg.Ack()

			event, err := publisher.DecodeSessionEvent(msg)
			if err != nil {
				h.logger.WithContext(ctx).Warnw("dropping undecodable session event",
					"message_uuid", msg.UUID,
					"error", err)
				return true
			}
			if event.Owner != owner {
				return true
			}
			c.SSEvent(event.State.String(), event)
			return true
		}
	})
}

// @Summary Get latest invoice
// @Description Get the caller's most recent invoice
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /payments/invoice [get]
func (h *PaymentSessionHandler) GetInvoice(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.ledger.GetUserInvoice(ctx, types.GetUserID(ctx))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary List payment attempts
// @Description List the caller's payment attempts, newest first
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param filter query types.PaymentAttemptFilter false "Filter"
// @Success 200 {object} dto.ListPaymentAttemptsResponse
// @Router /payments/attempts [get]
func (h *PaymentSessionHandler) ListAttempts(c *gin.Context) {
	filter, ok := bindPaymentAttemptFilter(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	resp, err := h.ledger.GetUserPayments(ctx, types.GetUserID(ctx), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
