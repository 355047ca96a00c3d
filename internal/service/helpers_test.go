package service

import (
	"time"

	"github.com/flexprice/checkout/internal/domain/invoice"
	"github.com/flexprice/checkout/internal/security"
	"github.com/flexprice/checkout/internal/testutil"
)

// newTestServiceParams wires ServiceParams over the suite's in-memory stores and fake gateway
func newTestServiceParams(s *testutil.BaseServiceTestSuite) (ServiceParams, CredentialService) {
	enc, err := security.NewEncryptionService(s.GetConfig(), s.GetLogger())
	s.Require().NoError(err)

	stores := s.GetStores()
	credentials := NewCredentialService(stores.CredentialRepo, enc, s.GetCache(), s.GetConfig(), s.GetLogger())

	return ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		Cache:            s.GetCache(),
		InvoiceRepo:      stores.InvoiceRepo,
		PaymentRepo:      stores.PaymentRepo,
		ProfileRepo:      stores.ProfileRepo,
		CredentialRepo:   stores.CredentialRepo,
		Gateway:          s.GetGateway(),
		Templates:        credentials,
		SessionPublisher: s.GetPublisher(),
	}, credentials
}

// seedInvoice stores an invoice of owner created age ago
func seedInvoice(s *testutil.BaseServiceTestSuite, owner, invoiceID string, amount int64, age time.Duration, paid bool) *invoice.Invoice {
	payload := `{"invoice_id":"` + invoiceID + `","qr_text":"seeded"}`
	inv := invoice.NewInvoice(owner, invoiceID, payload, amount)
	inv.CreatedAt = time.Now().UTC().Add(-age)
	inv.IsPaid = paid
	s.Require().NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), inv))
	return inv
}
