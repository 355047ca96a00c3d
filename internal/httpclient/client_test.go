package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() Client {
	return NewDefaultClient(ClientConfig{Timeout: 2 * time.Second, RetryMax: 2}, nil)
}

func TestSendReturnsBodyAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		w.Header().Set("X-Echo", "1")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	resp, err := newTestClient().Send(context.Background(), &Request{
		Method:  http.MethodPost,
		URL:     srv.URL,
		Headers: map[string]string{"Authorization": "Bearer abc"},
		Body:    []byte(`{"ok":true}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, "1", resp.Headers["X-Echo"])
}

func TestSendWrapsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"NO_CREDENDIALS"}`))
	}))
	defer srv.Close()

	_, err := newTestClient().Send(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)

	httpErr, ok := IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.True(t, httpErr.IsUnauthorizedStatus())
	assert.Contains(t, string(httpErr.Response), "NO_CREDENDIALS")
}

func TestIdempotentRequestsAreRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	resp, err := newTestClient().Send(context.Background(), &Request{
		Method:     http.MethodPost,
		URL:        srv.URL,
		Body:       []byte(`{}`),
		Idempotent: true,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNonIdempotentRequestsAreNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient().Send(context.Background(), &Request{
		Method: http.MethodPost,
		URL:    srv.URL,
		Body:   []byte(`{}`),
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
