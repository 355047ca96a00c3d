package profile

import "context"

type Repository interface {
	// Get returns ErrNotFound for unknown principals
	Get(ctx context.Context, owner string) (*Profile, error)
	// Create returns ErrAlreadyExists when the principal is registered
	Create(ctx context.Context, p *Profile) error
	UpdateName(ctx context.Context, owner, name string) error
}
