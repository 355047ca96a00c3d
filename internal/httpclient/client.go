package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/flexprice/checkout/internal/config"
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/hashicorp/go-retryablehttp"
)

// Request represents an HTTP request
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
	// Idempotent requests may be retried on transport errors and 5xx responses.
	// Anything that creates state on the remote side must leave this false.
	Idempotent bool
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// Client interface for making HTTP requests
type Client interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// ClientConfig holds configuration for the HTTP client
type ClientConfig struct {
	Timeout  time.Duration
	RetryMax int
}

// DefaultClient implements the Client interface
type DefaultClient struct {
	client    *http.Client
	retryable *retryablehttp.Client
}

// NewDefaultClient creates a new DefaultClient
func NewDefaultClient(cfg ClientConfig, log *logger.Logger) Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	retryable := retryablehttp.NewClient()
	retryable.RetryMax = cfg.RetryMax
	retryable.RetryWaitMin = 200 * time.Millisecond
	retryable.RetryWaitMax = 2 * time.Second
	retryable.HTTPClient.Timeout = cfg.Timeout
	retryable.Logger = nil
	if log != nil {
		retryable.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
			if attempt > 0 {
				log.Warnw("retrying http request", "method", req.Method, "url", req.URL.String(), "attempt", attempt)
			}
		}
	}
	// hand the last response back to Send so non-2xx bodies survive exhausted retries
	retryable.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &DefaultClient{
		client:    &http.Client{Timeout: cfg.Timeout},
		retryable: retryable,
	}
}

// NewClientFromConfig builds the gateway-facing client from the QPay section
func NewClientFromConfig(cfg *config.Configuration, log *logger.Logger) Client {
	return NewDefaultClient(ClientConfig{
		Timeout:  cfg.QPay.Timeout,
		RetryMax: cfg.QPay.RetryMax,
	}, log)
}

// Send makes an HTTP request and returns the response
func (c *DefaultClient) Send(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Please check the request payload").
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read response body").
			Mark(ierr.ErrHTTPClient)
	}

	headers := make(map[string]string)
	for k, v := range resp.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	if resp.StatusCode >= 400 {
		return nil, NewError(resp.StatusCode, respBody)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Headers:    headers,
	}, nil
}

func (c *DefaultClient) do(ctx context.Context, req *Request) (*http.Response, error) {
	if req.Idempotent {
		var body interface{}
		if req.Body != nil {
			body = req.Body
		}
		httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL, body)
		if err != nil {
			return nil, err
		}
		setHeaders(httpReq.Request, req)
		return c.retryable.Do(httpReq)
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	setHeaders(httpReq, req)
	return c.client.Do(httpReq)
}

func setHeaders(httpReq *http.Request, req *Request) {
	if req.Body != nil {
		httpReq.ContentLength = int64(len(req.Body))
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
}
