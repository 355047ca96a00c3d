package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex psn_01HZX3K8Q9V2...
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	UUID_PREFIX_INVOICE         = "inv"
	UUID_PREFIX_PAYMENT_ATTEMPT = "pay"
	UUID_PREFIX_SESSION         = "psn"
	UUID_PREFIX_EVENT           = "evt"
)
