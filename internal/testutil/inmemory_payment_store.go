package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/checkout/internal/domain/payment"
	"github.com/flexprice/checkout/internal/types"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.PaymentAttempt]
	Faults *Faults

	keysMu sync.Mutex
	keys   map[string]string
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*payment.PaymentAttempt](),
		Faults:        newFaults(),
		keys:          map[string]string{},
	}
}

func attemptFilterFn(ctx context.Context, a *payment.PaymentAttempt, filter interface{}) bool {
	f, ok := filter.(*types.PaymentAttemptFilter)
	if !ok || f == nil {
		return true
	}
	if f.Owner != "" && a.Owner != f.Owner {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	return true
}

func (s *InMemoryPaymentStore) CreateAttempt(ctx context.Context, attempt *payment.PaymentAttempt) error {
	if err := s.Faults.check("CreateAttempt"); err != nil {
		return err
	}
	if err := attempt.Status.Validate(); err != nil {
		return err
	}

	s.keysMu.Lock()
	defer s.keysMu.Unlock()
	if err := claimKey(s.keys, attempt.IdempotencyKey, attempt.ID, "payment attempt"); err != nil {
		return err
	}

	copied := *attempt
	if err := s.InMemoryStore.Create(ctx, attempt.ID, &copied); err != nil {
		releaseKey(s.keys, attempt.IdempotencyKey)
		return err
	}
	return nil
}

func (s *InMemoryPaymentStore) ListAttempts(ctx context.Context, filter *types.PaymentAttemptFilter) ([]*payment.PaymentAttempt, error) {
	return s.InMemoryStore.List(ctx, filter, attemptFilterFn, func(a, b *payment.PaymentAttempt) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
}

func (s *InMemoryPaymentStore) CountAttempts(ctx context.Context, filter *types.PaymentAttemptFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, attemptFilterFn)
}

// AttemptsOf returns every recorded attempt of the owner
func (s *InMemoryPaymentStore) AttemptsOf(ctx context.Context, owner string) []*payment.PaymentAttempt {
	items, _ := s.InMemoryStore.List(ctx, &types.PaymentAttemptFilter{Owner: owner}, attemptFilterFn, nil)
	return items
}

func (s *InMemoryPaymentStore) Clear() {
	s.keysMu.Lock()
	defer s.keysMu.Unlock()
	s.keys = map[string]string{}
	s.InMemoryStore.Clear()
}
