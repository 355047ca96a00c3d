package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/checkout/internal/domain/credential"
	ierr "github.com/flexprice/checkout/internal/errors"
)

// InMemoryCredentialStore implements credential.Repository
type InMemoryCredentialStore struct {
	mu          sync.RWMutex
	credentials *credential.Credentials
	template    *credential.InvoiceTemplate
	Faults      *Faults
}

func NewInMemoryCredentialStore() *InMemoryCredentialStore {
	return &InMemoryCredentialStore{Faults: newFaults()}
}

func (s *InMemoryCredentialStore) GetCredentials(ctx context.Context) (*credential.Credentials, error) {
	if err := s.Faults.check("GetCredentials"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.credentials == nil {
		return nil, ierr.NewError("gateway credentials not found").
			WithHint("gateway credentials not found").
			Mark(ierr.ErrNotFound)
	}
	copied := *s.credentials
	return &copied, nil
}

func (s *InMemoryCredentialStore) SaveCredentials(ctx context.Context, c *credential.Credentials) error {
	if err := s.Faults.check("SaveCredentials"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *c
	s.credentials = &copied
	return nil
}

func (s *InMemoryCredentialStore) GetTemplate(ctx context.Context) (*credential.InvoiceTemplate, error) {
	if err := s.Faults.check("GetTemplate"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.template == nil {
		return nil, ierr.NewError("invoice template not found").
			WithHint("invoice template not found").
			Mark(ierr.ErrNotFound)
	}
	copied := *s.template
	return &copied, nil
}

func (s *InMemoryCredentialStore) SaveTemplate(ctx context.Context, t *credential.InvoiceTemplate) error {
	if err := s.Faults.check("SaveTemplate"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *t
	s.template = &copied
	return nil
}

func (s *InMemoryCredentialStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials = nil
	s.template = nil
	s.Faults.Reset()
}
