package v1

import (
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/types"
	"github.com/gin-gonic/gin"
)

func bindInvoiceFilter(c *gin.Context) (*types.InvoiceFilter, bool) {
	filter := types.NewInvoiceFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return nil, false
	}
	return filter, true
}

func bindPaymentAttemptFilter(c *gin.Context) (*types.PaymentAttemptFilter, bool) {
	filter := types.NewPaymentAttemptFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return nil, false
	}
	return filter, true
}
