package credential

import (
	"time"

	ierr "github.com/flexprice/checkout/internal/errors"
)

// Credentials are the merchant's gateway login. PasswordEncrypted is never decrypted outside the service layer.
type Credentials struct {
	Username          string    `db:"username" json:"username"`
	PasswordEncrypted string    `db:"password_encrypted" json:"-"`
	InvoiceCode       string    `db:"invoice_code" json:"invoice_code"`
	UpdatedBy         string    `db:"updated_by" json:"updated_by"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// InvoiceTemplate describes the invoice issued to every payer
type InvoiceTemplate struct {
	SenderInvoiceNumber string    `db:"sender_invoice_number" json:"sender_invoice_number"`
	ReceiverCode        string    `db:"receiver_code" json:"receiver_code"`
	Description         string    `db:"description" json:"description"`
	Amount              int64     `db:"amount" json:"amount"`
	UpdatedBy           string    `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

func (t *InvoiceTemplate) Validate() error {
	if t.SenderInvoiceNumber == "" || t.ReceiverCode == "" || t.Description == "" {
		return ierr.NewError("incomplete invoice template").
			WithHint("Sender invoice number, receiver code and description are required").
			Mark(ierr.ErrValidation)
	}
	if t.Amount < 0 {
		return ierr.NewError("negative amount").
			WithHint("Amount must be zero or more").
			Mark(ierr.ErrValidation)
	}
	return nil
}
