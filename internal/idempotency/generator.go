package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Scope namespaces the keys of one kind of ledger write
type Scope string

const (
	// ScopeInvoiceRecord keys a gateway invoice recorded for an owner
	ScopeInvoiceRecord Scope = "invoice_record"
	// ScopePaymentAttempt keys the single attempt a session writes
	ScopePaymentAttempt Scope = "payment_attempt"
)

// Generator derives deterministic idempotency keys
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateKey hashes scope and params. Params are sorted by name so the key
// does not depend on map iteration order.
func (g *Generator) GenerateKey(scope Scope, params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(scope))
	for _, k := range keys {
		fmt.Fprintf(&b, ":%s=%v", k, params[k])
	}

	hash := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%s-%s", scope, hex.EncodeToString(hash[:8]))
}

// InvoiceRecordKey is unique per owner and gateway invoice id
func (g *Generator) InvoiceRecordKey(owner, invoiceID string) string {
	return g.GenerateKey(ScopeInvoiceRecord, map[string]interface{}{
		"owner":      owner,
		"invoice_id": invoiceID,
	})
}

// PaymentAttemptKey is unique per orchestration session
func (g *Generator) PaymentAttemptKey(owner, sessionID string) string {
	return g.GenerateKey(ScopePaymentAttempt, map[string]interface{}{
		"owner":      owner,
		"session_id": sessionID,
	})
}
