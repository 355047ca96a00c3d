package qpay

import (
	"github.com/shopspring/decimal"
)

const (
	pathToken        = "/v2/auth/token"
	pathInvoice      = "/v2/invoice"
	pathPaymentCheck = "/v2/payment/check"

	objectTypeInvoice = "INVOICE"
	paymentStatusPaid = "PAID"

	checkPageLimit = 100
)

// Credentials authenticate the merchant against the gateway
type Credentials struct {
	Username    string
	Password    string
	InvoiceCode string
}

// InvoiceTemplate is the merchant-configured invoice body
type InvoiceTemplate struct {
	SenderInvoiceNumber string
	ReceiverCode        string
	Description         string
	Amount              int64
}

// TokenResponse is the body of POST /v2/auth/token
type TokenResponse struct {
	TokenType        string `json:"token_type"`
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
	Scope            string `json:"scope,omitempty"`
}

type createInvoiceRequest struct {
	InvoiceCode         string `json:"invoice_code"`
	SenderInvoiceNo     string `json:"sender_invoice_no"`
	InvoiceReceiverCode string `json:"invoice_receiver_code"`
	InvoiceDescription  string `json:"invoice_description"`
	Amount              int64  `json:"amount"`
	CallbackURL         string `json:"callback_url"`
}

// InvoiceResponse is the body of POST /v2/invoice
type InvoiceResponse struct {
	InvoiceID string        `json:"invoice_id"`
	QRText    string        `json:"qr_text"`
	QRImage   string        `json:"qr_image"`
	ShortURL  string        `json:"qPay_shortUrl"`
	URLs      []DeepLinkURL `json:"urls"`
}

type DeepLinkURL struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
	Link        string `json:"link"`
}

// InvoiceResult is what the issuer hands back to the orchestrator
type InvoiceResult struct {
	InvoiceID    string
	InvoiceData  string
	IsNewInvoice bool
	Amount       int64
}

type checkOffset struct {
	PageNumber int `json:"page_number"`
	PageLimit  int `json:"page_limit"`
}

type paymentCheckRequest struct {
	ObjectType string      `json:"object_type"`
	ObjectID   string      `json:"object_id"`
	Offset     checkOffset `json:"offset"`
}

// PaymentCheckResponse is the body of POST /v2/payment/check
type PaymentCheckResponse struct {
	Count      int             `json:"count"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	Rows       []PaymentRow    `json:"rows"`
}

type PaymentRow struct {
	PaymentID       string          `json:"payment_id"`
	PaymentStatus   string          `json:"payment_status"`
	PaymentAmount   decimal.Decimal `json:"payment_amount"`
	PaymentCurrency string          `json:"payment_currency"`
	PaymentDate     string          `json:"payment_date"`
}

// IsPaid reports a settled invoice: any PAID row or a positive paid amount
func (r *PaymentCheckResponse) IsPaid() bool {
	if r == nil {
		return false
	}
	if r.PaidAmount.GreaterThan(decimal.Zero) {
		return true
	}
	for _, row := range r.Rows {
		if row.PaymentStatus == paymentStatusPaid {
			return true
		}
	}
	return false
}
