package service

import (
	"errors"
	"testing"

	"github.com/flexprice/checkout/internal/api/dto"
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/testutil"
	"github.com/flexprice/checkout/internal/types"
	"github.com/stretchr/testify/suite"
)

type CredentialServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CredentialService
}

func TestCredentialService(t *testing.T) {
	suite.Run(t, new(CredentialServiceSuite))
}

func (s *CredentialServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	_, s.service = newTestServiceParams(&s.BaseServiceTestSuite)
}

func (s *CredentialServiceSuite) TestUpdateCredentialsEncryptsPassword() {
	resp, err := s.service.UpdateCredentials(s.GetContext(), &dto.UpdateCredentialsRequest{
		Username:    "merchant",
		Password:    "super-secret-pass",
		InvoiceCode: "SHOP_INVOICE",
	})
	s.Require().NoError(err)
	s.Equal("merchant", resp.Username)
	s.NotContains(resp.PasswordMasked, "super-secret")
	s.Equal(types.DefaultUserID, resp.UpdatedBy)

	stored, err := s.GetStores().CredentialRepo.GetCredentials(s.GetContext())
	s.Require().NoError(err)
	s.NotEqual("super-secret-pass", stored.PasswordEncrypted)

	creds, err := s.service.GatewayCredentials(s.GetContext())
	s.Require().NoError(err)
	s.Equal("merchant", creds.Username)
	s.Equal("super-secret-pass", creds.Password)
	s.Equal("SHOP_INVOICE", creds.InvoiceCode)
}

func (s *CredentialServiceSuite) TestUpdateCredentialsValidates() {
	_, err := s.service.UpdateCredentials(s.GetContext(), &dto.UpdateCredentialsRequest{
		Username:    "merchant",
		Password:    "   ",
		InvoiceCode: "SHOP_INVOICE",
	})
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *CredentialServiceSuite) TestUpdateCredentialsReplacesCachedValue() {
	for _, password := range []string{"first-password", "second-password"} {
		_, err := s.service.UpdateCredentials(s.GetContext(), &dto.UpdateCredentialsRequest{
			Username:    "merchant",
			Password:    password,
			InvoiceCode: "SHOP_INVOICE",
		})
		s.Require().NoError(err)

		creds, err := s.service.GatewayCredentials(s.GetContext())
		s.Require().NoError(err)
		s.Equal(password, creds.Password)
	}
}

func (s *CredentialServiceSuite) TestMissingCredentials() {
	_, err := s.service.GatewayCredentials(s.GetContext())
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))

	_, err = s.service.GetCredentials(s.GetContext())
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *CredentialServiceSuite) TestInvoiceTemplateFallsBackToDefault() {
	resp, err := s.service.GetInvoiceTemplate(s.GetContext())
	s.Require().NoError(err)
	s.True(resp.IsDefault)
	s.Equal("12345678", resp.SenderInvoiceNumber)
	s.Equal(int64(10), resp.Amount)

	s.GetStores().CredentialRepo.Faults.Fail("GetTemplate", errors.New("timeout"))
	tmpl := s.service.InvoiceTemplate(s.GetContext())
	s.Equal("Railway access 12 months", tmpl.Description)
}

func (s *CredentialServiceSuite) TestUpdateInvoiceTemplate() {
	_, err := s.service.UpdateInvoiceTemplate(s.GetContext(), &dto.UpdateInvoiceTemplateRequest{
		SenderInvoiceNumber: "SHOP-1",
		ReceiverCode:        "kiosk",
		Description:         "Monthly pass",
		Amount:              3500,
	})
	s.Require().NoError(err)

	resp, err := s.service.GetInvoiceTemplate(s.GetContext())
	s.Require().NoError(err)
	s.False(resp.IsDefault)
	s.Equal("SHOP-1", resp.SenderInvoiceNumber)
	s.Equal(types.DefaultUserID, resp.UpdatedBy)
	s.Equal(int64(3500), s.service.InvoiceTemplate(s.GetContext()).Amount)
}

func (s *CredentialServiceSuite) TestUpdateInvoiceTemplateValidates() {
	_, err := s.service.UpdateInvoiceTemplate(s.GetContext(), &dto.UpdateInvoiceTemplateRequest{
		SenderInvoiceNumber: "SHOP-1",
		Amount:              -1,
	})
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}
