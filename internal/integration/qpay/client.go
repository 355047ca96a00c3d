package qpay

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/flexprice/checkout/internal/config"
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/httpclient"
	"github.com/flexprice/checkout/internal/logger"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client is the gateway capability consumed by the payment services
type Client interface {
	// RequestToken exchanges merchant credentials for the raw token response body
	RequestToken(ctx context.Context) (string, error)
	// CreateInvoice issues a new gateway invoice. It is never retried automatically.
	CreateInvoice(ctx context.Context, accessToken string, tmpl InvoiceTemplate) (*InvoiceResult, error)
	// CheckPaymentStatus reports whether the invoice has been paid
	CheckPaymentStatus(ctx context.Context, accessToken, invoiceID string) (bool, error)
}

// CredentialProvider resolves the merchant credentials for each gateway call
type CredentialProvider interface {
	GatewayCredentials(ctx context.Context) (*Credentials, error)
}

type client struct {
	baseURL     string
	callbackURL string
	httpClient  httpclient.Client
	credentials CredentialProvider
	limiter     *rate.Limiter
	logger      *logger.Logger
}

func NewClient(
	cfg *config.Configuration,
	httpClient httpclient.Client,
	credentials CredentialProvider,
	logger *logger.Logger,
) Client {
	return &client{
		baseURL:     strings.TrimRight(cfg.QPay.BaseURL, "/"),
		callbackURL: cfg.QPay.CallbackURL,
		httpClient:  httpClient,
		credentials: credentials,
		limiter:     rate.NewLimiter(rate.Limit(cfg.QPay.RateLimit), cfg.QPay.RateBurst),
		logger:      logger,
	}
}

func (c *client) RequestToken(ctx context.Context) (string, error) {
	creds, err := c.credentials.GatewayCredentials(ctx)
	if err != nil {
		return "", err
	}

	basic := base64.StdEncoding.EncodeToString([]byte(creds.Username + ":" + creds.Password))
	resp, err := c.send(ctx, &httpclient.Request{
		Method:     http.MethodPost,
		URL:        c.baseURL + pathToken,
		Headers:    map[string]string{"Authorization": "Basic " + basic},
		Idempotent: true,
	})
	if err != nil {
		return "", err
	}

	c.logger.Debugw("gateway token acquired", "username", creds.Username)
	return string(resp.Body), nil
}

func (c *client) CreateInvoice(ctx context.Context, accessToken string, tmpl InvoiceTemplate) (*InvoiceResult, error) {
	creds, err := c.credentials.GatewayCredentials(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(createInvoiceRequest{
		InvoiceCode:         creds.InvoiceCode,
		SenderInvoiceNo:     tmpl.SenderInvoiceNumber,
		InvoiceReceiverCode: tmpl.ReceiverCode,
		InvoiceDescription:  tmpl.Description,
		Amount:              tmpl.Amount,
		CallbackURL:         c.callbackURL,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid invoice request").
			Mark(ierr.ErrInternal)
	}

	resp, err := c.send(ctx, &httpclient.Request{
		Method:  http.MethodPost,
		URL:     c.baseURL + pathInvoice,
		Headers: bearer(accessToken),
		Body:    body,
	})
	if err != nil {
		return nil, err
	}

	var invoice InvoiceResponse
	if err := json.Unmarshal(resp.Body, &invoice); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid invoice response from gateway").
			Mark(ierr.ErrHTTPClient)
	}
	if invoice.InvoiceID == "" {
		return nil, ierr.NewError("gateway returned no invoice id").
			WithHint("Invalid invoice response from gateway").
			Mark(ierr.ErrHTTPClient)
	}

	c.logger.Infow("gateway invoice created",
		"invoice_id", invoice.InvoiceID,
		"amount", tmpl.Amount)

	return &InvoiceResult{
		InvoiceID:    invoice.InvoiceID,
		InvoiceData:  string(resp.Body),
		IsNewInvoice: true,
		Amount:       tmpl.Amount,
	}, nil
}

func (c *client) CheckPaymentStatus(ctx context.Context, accessToken, invoiceID string) (bool, error) {
	body, err := json.Marshal(paymentCheckRequest{
		ObjectType: objectTypeInvoice,
		ObjectID:   invoiceID,
		Offset:     checkOffset{PageNumber: 1, PageLimit: checkPageLimit},
	})
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Invalid payment check request").
			Mark(ierr.ErrInternal)
	}

	resp, err := c.send(ctx, &httpclient.Request{
		Method:     http.MethodPost,
		URL:        c.baseURL + pathPaymentCheck,
		Headers:    bearer(accessToken),
		Body:       body,
		Idempotent: true,
	})
	if err != nil {
		return false, err
	}

	var check PaymentCheckResponse
	if err := json.Unmarshal(resp.Body, &check); err != nil {
		return false, ierr.WithError(err).
			WithHint("Invalid payment check response from gateway").
			Mark(ierr.ErrHTTPClient)
	}

	return check.IsPaid(), nil
}

func (c *client) send(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Gateway request was cancelled").
			Mark(ierr.ErrHTTPClient)
	}

	resp, err := c.httpClient.Send(ctx, req)
	if err == nil {
		return resp, nil
	}

	if httpErr, ok := httpclient.IsHTTPError(err); ok {
		c.logger.Errorw("gateway returned error",
			"status_code", httpErr.StatusCode,
			"url", req.URL,
			"response_body", string(httpErr.Response))

		if httpErr.IsUnauthorizedStatus() {
			return nil, ierr.WithError(err).
				WithHint(ierr.ReauthenticateHint).
				WithReportableDetails(map[string]any{"status_code": httpErr.StatusCode}).
				Mark(ierr.ErrUnauthorized)
		}
		return nil, ierr.WithError(err).
			WithHintf("Gateway returned status %d", httpErr.StatusCode).
			WithReportableDetails(map[string]any{"status_code": httpErr.StatusCode}).
			Mark(ierr.ErrHTTPClient)
	}

	c.logger.Errorw("gateway request failed", "url", req.URL, "error", err)
	return nil, ierr.WithError(err).
		WithHint("Unable to connect to the payment gateway").
		Mark(ierr.ErrHTTPClient)
}

func bearer(accessToken string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + accessToken}
}

// ParseAccessToken extracts access_token from a raw token response
func ParseAccessToken(raw string) (string, error) {
	var token TokenResponse
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return "", ierr.WithError(err).
			WithHint("Gateway token response is not valid JSON").
			Mark(ierr.ErrValidation)
	}
	if token.AccessToken == "" {
		return "", ierr.NewError("access_token missing").
			WithHint("Gateway token response has no access token").
			Mark(ierr.ErrValidation)
	}
	return token.AccessToken, nil
}
