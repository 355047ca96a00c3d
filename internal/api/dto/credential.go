package dto

import (
	"time"

	"github.com/flexprice/checkout/internal/domain/credential"
	"github.com/flexprice/checkout/internal/validator"
)

// UpdateCredentialsRequest replaces the merchant's gateway credentials
type UpdateCredentialsRequest struct {
	Username    string `json:"username" binding:"required" validate:"required,notblank"`
	Password    string `json:"password" binding:"required" validate:"required,notblank"`
	InvoiceCode string `json:"invoice_code" binding:"required" validate:"required,notblank"`
}

func (r *UpdateCredentialsRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// CredentialsResponse never carries the plaintext password
type CredentialsResponse struct {
	Username       string    `json:"username"`
	PasswordMasked string    `json:"password_masked"`
	InvoiceCode    string    `json:"invoice_code"`
	UpdatedBy      string    `json:"updated_by"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UpdateInvoiceTemplateRequest replaces the invoice template
type UpdateInvoiceTemplateRequest struct {
	SenderInvoiceNumber string `json:"sender_invoice_number" binding:"required"`
	ReceiverCode        string `json:"receiver_code" binding:"required"`
	Description         string `json:"description" binding:"required"`
	Amount              int64  `json:"amount"`
}

func (r *UpdateInvoiceTemplateRequest) Validate() error {
	return r.ToInvoiceTemplate("").Validate()
}

func (r *UpdateInvoiceTemplateRequest) ToInvoiceTemplate(updatedBy string) *credential.InvoiceTemplate {
	return &credential.InvoiceTemplate{
		SenderInvoiceNumber: r.SenderInvoiceNumber,
		ReceiverCode:        r.ReceiverCode,
		Description:         r.Description,
		Amount:              r.Amount,
		UpdatedBy:           updatedBy,
		UpdatedAt:           time.Now().UTC(),
	}
}

type InvoiceTemplateResponse struct {
	*credential.InvoiceTemplate
	// IsDefault is true when no template is stored and the configured default applies
	IsDefault bool `json:"is_default"`
}
