package qpay_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/flexprice/checkout/internal/config"
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/integration/qpay"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/testutil"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type staticCredentials struct {
	creds *qpay.Credentials
	err   error
}

func (s *staticCredentials) GatewayCredentials(ctx context.Context) (*qpay.Credentials, error) {
	return s.creds, s.err
}

type ClientSuite struct {
	suite.Suite
	ctx   context.Context
	http  *testutil.MockHTTPClient
	creds *staticCredentials
	cli   qpay.Client
}

func TestClient(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	cfg := config.GetDefaultConfig()
	cfg.QPay.BaseURL = "https://qpay.test/"
	cfg.QPay.CallbackURL = "https://shop.test/callback"
	cfg.QPay.RateLimit = 1000
	cfg.QPay.RateBurst = 100

	s.ctx = testutil.SetupContext()
	s.http = testutil.NewMockHTTPClient()
	s.creds = &staticCredentials{creds: &qpay.Credentials{
		Username:    "merchant",
		Password:    "s3cret",
		InvoiceCode: "SHOP_INVOICE",
	}}
	s.cli = qpay.NewClient(cfg, s.http, s.creds, logger.NewNopLogger())
}

func (s *ClientSuite) TestRequestTokenUsesBasicAuth() {
	s.http.RegisterResponse("/v2/auth/token", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"access_token":"abc","expires_in":3600}`),
	})

	raw, err := s.cli.RequestToken(s.ctx)
	s.Require().NoError(err)
	s.JSONEq(`{"access_token":"abc","expires_in":3600}`, raw)

	reqs := s.http.Requests()
	s.Require().Len(reqs, 1)
	s.Equal(http.MethodPost, reqs[0].Method)
	s.Equal("https://qpay.test/v2/auth/token", reqs[0].URL)
	s.True(reqs[0].Idempotent)
	expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("merchant:s3cret"))
	s.Equal(expected, reqs[0].Headers["Authorization"])
}

func (s *ClientSuite) TestRequestTokenCredentialFailure() {
	s.creds.err = ierr.NewError("no credentials").Mark(ierr.ErrNotFound)

	_, err := s.cli.RequestToken(s.ctx)
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
	s.Empty(s.http.Requests())
}

func (s *ClientSuite) TestUnauthorizedStatusAsksToSignInAgain() {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		s.http.Clear()
		s.http.RegisterResponse("/v2/auth/token", testutil.MockResponse{
			StatusCode: status,
			Body:       []byte(`{"error":"NO_CREDENTIALS"}`),
		})

		_, err := s.cli.RequestToken(s.ctx)
		s.Require().Error(err)
		s.True(ierr.IsUnauthorized(err), "status %d", status)
		s.False(ierr.IsPermissionDenied(err), "status %d", status)
		s.Equal(http.StatusUnauthorized, ierr.HTTPStatusFromErr(err))
		s.Contains(ierr.Hints(err), ierr.ReauthenticateHint)
	}
}

func (s *ClientSuite) TestServerErrorMapsToHTTPClient() {
	s.http.RegisterResponse("/v2/invoice", testutil.MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       []byte(`{"error":"boom"}`),
	})

	_, err := s.cli.CreateInvoice(s.ctx, "abc", qpay.InvoiceTemplate{Amount: 10})
	s.Require().Error(err)
	s.True(ierr.IsHTTPClient(err))
	s.False(ierr.IsUnauthorized(err))
}

func (s *ClientSuite) TestCreateInvoiceBody() {
	payload := `{"invoice_id":"INV-1","qr_text":"qr","qr_image":"img","qPay_shortUrl":"https://s.qpay.mn/x","urls":[]}`
	s.http.RegisterResponse("/v2/invoice", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(payload),
	})

	res, err := s.cli.CreateInvoice(s.ctx, "abc", qpay.InvoiceTemplate{
		SenderInvoiceNumber: "12345678",
		ReceiverCode:        "terminal",
		Description:         "Railway access 12 months",
		Amount:              10,
	})
	s.Require().NoError(err)
	s.Equal("INV-1", res.InvoiceID)
	s.Equal(payload, res.InvoiceData)
	s.Equal(int64(10), res.Amount)
	s.True(res.IsNewInvoice)

	reqs := s.http.Requests()
	s.Require().Len(reqs, 1)
	s.False(reqs[0].Idempotent)
	s.Equal("Bearer abc", reqs[0].Headers["Authorization"])

	var body map[string]interface{}
	s.Require().NoError(jsoniter.Unmarshal(reqs[0].Body, &body))
	s.Equal("SHOP_INVOICE", body["invoice_code"])
	s.Equal("12345678", body["sender_invoice_no"])
	s.Equal("terminal", body["invoice_receiver_code"])
	s.Equal("Railway access 12 months", body["invoice_description"])
	s.EqualValues(10, body["amount"])
	s.Equal("https://shop.test/callback", body["callback_url"])
}

func (s *ClientSuite) TestCreateInvoiceWithoutID() {
	s.http.RegisterResponse("/v2/invoice", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"qr_text":"qr"}`),
	})

	_, err := s.cli.CreateInvoice(s.ctx, "abc", qpay.InvoiceTemplate{Amount: 10})
	s.Require().Error(err)
	s.True(ierr.IsHTTPClient(err))
}

func (s *ClientSuite) TestCheckPaymentStatus() {
	tests := []struct {
		name string
		body string
		paid bool
	}{
		{name: "empty rows", body: `{"count":0,"paid_amount":0,"rows":[]}`, paid: false},
		{name: "paid row", body: `{"count":1,"rows":[{"payment_id":"p1","payment_status":"PAID"}]}`, paid: true},
		{name: "paid amount only", body: `{"count":0,"paid_amount":10,"rows":[]}`, paid: true},
		{name: "pending row", body: `{"count":1,"rows":[{"payment_id":"p1","payment_status":"NEW"}]}`, paid: false},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.http.Clear()
			s.http.RegisterResponse("/v2/payment/check", testutil.MockResponse{
				StatusCode: http.StatusOK,
				Body:       []byte(tt.body),
			})

			paid, err := s.cli.CheckPaymentStatus(s.ctx, "abc", "INV-1")
			s.Require().NoError(err)
			s.Equal(tt.paid, paid)

			reqs := s.http.Requests()
			s.Require().Len(reqs, 1)
			s.True(reqs[0].Idempotent)

			var body map[string]interface{}
			s.Require().NoError(jsoniter.Unmarshal(reqs[0].Body, &body))
			s.Equal("INVOICE", body["object_type"])
			s.Equal("INV-1", body["object_id"])
			offset, ok := body["offset"].(map[string]interface{})
			s.Require().True(ok)
			s.EqualValues(1, offset["page_number"])
			s.EqualValues(100, offset["page_limit"])
		})
	}
}

func TestParseAccessToken(t *testing.T) {
	token, err := qpay.ParseAccessToken(`{"token_type":"bearer","access_token":"abc"}`)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = qpay.ParseAccessToken(`not json`)
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))

	_, err = qpay.ParseAccessToken(`{"token_type":"bearer"}`)
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}
