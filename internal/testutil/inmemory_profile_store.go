package testutil

import (
	"context"
	"time"

	"github.com/flexprice/checkout/internal/domain/profile"
)

// InMemoryProfileStore implements profile.Repository
type InMemoryProfileStore struct {
	*InMemoryStore[*profile.Profile]
	Faults *Faults
}

func NewInMemoryProfileStore() *InMemoryProfileStore {
	return &InMemoryProfileStore{
		InMemoryStore: NewInMemoryStore[*profile.Profile](),
		Faults:        newFaults(),
	}
}

func (s *InMemoryProfileStore) Get(ctx context.Context, owner string) (*profile.Profile, error) {
	if err := s.Faults.check("Get"); err != nil {
		return nil, err
	}
	p, err := s.InMemoryStore.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	copied := *p
	return &copied, nil
}

func (s *InMemoryProfileStore) Create(ctx context.Context, p *profile.Profile) error {
	if err := s.Faults.check("Create"); err != nil {
		return err
	}
	copied := *p
	return s.InMemoryStore.Create(ctx, p.Owner, &copied)
}

func (s *InMemoryProfileStore) UpdateName(ctx context.Context, owner, name string) error {
	if err := s.Faults.check("UpdateName"); err != nil {
		return err
	}
	p, err := s.InMemoryStore.Get(ctx, owner)
	if err != nil {
		return err
	}
	updated := *p
	updated.Name = name
	updated.UpdatedAt = time.Now().UTC()
	return s.InMemoryStore.Update(ctx, owner, &updated)
}
