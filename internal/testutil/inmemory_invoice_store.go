package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/flexprice/checkout/internal/domain/invoice"
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
	Faults *Faults

	creates int32
	keysMu  sync.Mutex
	keys    map[string]string
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
		Faults:        newFaults(),
		keys:          map[string]string{},
	}
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return true
	}
	if f.Owner != "" && inv.Owner != f.Owner {
		return false
	}
	if f.IsPaid != nil && inv.IsPaid != *f.IsPaid {
		return false
	}
	return true
}

func newestInvoiceFirst(a, b *invoice.Invoice) bool {
	return a.CreatedAt.After(b.CreatedAt)
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if err := s.Faults.check("Create"); err != nil {
		return err
	}
	if err := inv.Validate(); err != nil {
		return err
	}

	s.keysMu.Lock()
	defer s.keysMu.Unlock()
	if err := claimKey(s.keys, inv.IdempotencyKey, inv.ID, "invoice"); err != nil {
		return err
	}

	copied := *inv
	if err := s.InMemoryStore.Create(ctx, inv.ID, &copied); err != nil {
		releaseKey(s.keys, inv.IdempotencyKey)
		return err
	}
	atomic.AddInt32(&s.creates, 1)
	return nil
}

// CreateCalls counts successful Create calls
func (s *InMemoryInvoiceStore) CreateCalls() int {
	return int(atomic.LoadInt32(&s.creates))
}

func (s *InMemoryInvoiceStore) latest(ctx context.Context, filter *types.InvoiceFilter) (*invoice.Invoice, error) {
	items, err := s.InMemoryStore.List(ctx, filter, invoiceFilterFn, newestInvoiceFirst)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ierr.NewError("invoice not found").
			WithHint("invoice not found").
			Mark(ierr.ErrNotFound)
	}
	copied := *items[0]
	return &copied, nil
}

func (s *InMemoryInvoiceStore) GetLatestByOwner(ctx context.Context, owner string) (*invoice.Invoice, error) {
	if err := s.Faults.check("GetLatestByOwner"); err != nil {
		return nil, err
	}
	return s.latest(ctx, &types.InvoiceFilter{Owner: owner})
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	if err := s.Faults.check("List"); err != nil {
		return nil, err
	}
	return s.InMemoryStore.List(ctx, filter, invoiceFilterFn, newestInvoiceFirst)
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}

func (s *InMemoryInvoiceStore) MarkPaid(ctx context.Context, invoiceID string) error {
	if err := s.Faults.check("MarkPaid"); err != nil {
		return err
	}
	items, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, inv *invoice.Invoice, _ interface{}) bool {
		return inv.InvoiceID == invoiceID
	}, nil)
	if err != nil {
		return err
	}
	for _, inv := range items {
		updated := *inv
		updated.IsPaid = true
		if err := s.InMemoryStore.Update(ctx, inv.ID, &updated); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemoryInvoiceStore) Clear() {
	s.keysMu.Lock()
	defer s.keysMu.Unlock()
	s.keys = map[string]string{}
	s.InMemoryStore.Clear()
}
