package credential

import "context"

// Repository persists the single merchant configuration. Both getters return ErrNotFound until saved.
type Repository interface {
	GetCredentials(ctx context.Context) (*Credentials, error)
	SaveCredentials(ctx context.Context, c *Credentials) error
	GetTemplate(ctx context.Context) (*InvoiceTemplate, error)
	SaveTemplate(ctx context.Context, t *InvoiceTemplate) error
}
