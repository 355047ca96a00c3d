package invoice

import (
	"context"

	"github.com/flexprice/checkout/internal/types"
)

// Repository is the ledger's invoice store
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	// GetLatestByOwner returns the newest invoice of the owner or ErrNotFound
	GetLatestByOwner(ctx context.Context, owner string) (*Invoice, error)
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)
	// MarkPaid flags every ledger row carrying the gateway invoice id as paid
	MarkPaid(ctx context.Context, invoiceID string) error
}
