package v1

import (
	"net/http"

	"github.com/flexprice/checkout/internal/api/dto"
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/service"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves merchant configuration and the ledger to admins
type AdminHandler struct {
	credentials service.CredentialService
	ledger      service.LedgerService
	logger      *logger.Logger
}

func NewAdminHandler(credentials service.CredentialService, ledger service.LedgerService, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{
		credentials: credentials,
		ledger:      ledger,
		logger:      logger,
	}
}

// @Summary Get gateway credentials
// @Description Get the merchant's gateway credentials with the password masked
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CredentialsResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /admin/credentials [get]
func (h *AdminHandler) GetCredentials(c *gin.Context) {
	resp, err := h.credentials.GetCredentials(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Update gateway credentials
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param credentials body dto.UpdateCredentialsRequest true "Credentials"
// @Success 200 {object} dto.CredentialsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /admin/credentials [put]
func (h *AdminHandler) UpdateCredentials(c *gin.Context) {
	var req dto.UpdateCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Username, password and invoice code are required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.credentials.UpdateCredentials(c.Request.Context(), &req)
	if err != nil {
		h.logger.WithContext(c.Request.Context()).Errorw("failed to update credentials", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Get invoice template
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.InvoiceTemplateResponse
// @Router /admin/template [get]
func (h *AdminHandler) GetTemplate(c *gin.Context) {
	resp, err := h.credentials.GetInvoiceTemplate(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Update invoice template
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param template body dto.UpdateInvoiceTemplateRequest true "Template"
// @Success 200 {object} dto.InvoiceTemplateResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /admin/template [put]
func (h *AdminHandler) UpdateTemplate(c *gin.Context) {
	var req dto.UpdateInvoiceTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the template fields").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.credentials.UpdateInvoiceTemplate(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary List invoices
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param filter query types.InvoiceFilter false "Filter"
// @Success 200 {object} dto.ListInvoicesResponse
// @Router /admin/invoices [get]
func (h *AdminHandler) ListInvoices(c *gin.Context) {
	filter, ok := bindInvoiceFilter(c)
	if !ok {
		return
	}
	resp, err := h.ledger.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary List payment attempts
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param filter query types.PaymentAttemptFilter false "Filter"
// @Success 200 {object} dto.ListPaymentAttemptsResponse
// @Router /admin/payments [get]
func (h *AdminHandler) ListPayments(c *gin.Context) {
	filter, ok := bindPaymentAttemptFilter(c)
	if !ok {
		return
	}
	resp, err := h.ledger.ListPayments(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
