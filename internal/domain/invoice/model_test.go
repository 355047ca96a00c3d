package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsReusable(t *testing.T) {
	now := time.Now()
	ttl := 24 * time.Hour

	fresh := &Invoice{CreatedAt: now.Add(-time.Hour)}
	assert.True(t, fresh.IsReusable(now, ttl))

	paid := &Invoice{CreatedAt: now.Add(-time.Hour), IsPaid: true}
	assert.False(t, paid.IsReusable(now, ttl))

	expired := &Invoice{CreatedAt: now.Add(-25 * time.Hour)}
	assert.False(t, expired.IsReusable(now, ttl))

	var missing *Invoice
	assert.False(t, missing.IsReusable(now, ttl))
}

func TestGatewayInvoiceID(t *testing.T) {
	assert.Equal(t, "abc", (&Invoice{InvoiceID: "abc", Payload: `{"invoice_id":"other"}`}).GatewayInvoiceID())
	assert.Equal(t, "from-payload", (&Invoice{Payload: `{"invoice_id":"from-payload","qr_text":"x"}`}).GatewayInvoiceID())
	assert.Equal(t, "", (&Invoice{Payload: "not json"}).GatewayInvoiceID())
	assert.Equal(t, "", (&Invoice{}).GatewayInvoiceID())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, NewInvoice("owner", "id", "{}", 10).Validate())
	assert.Error(t, NewInvoice("", "id", "{}", 10).Validate())
	assert.Error(t, NewInvoice("owner", "id", "{}", -1).Validate())
}
