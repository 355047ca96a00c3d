package cache

import (
	"context"
	"time"

	"github.com/flexprice/checkout/internal/domain/profile"
	"github.com/flexprice/checkout/internal/types"
)

// PrincipalCache holds the per-principal entries populated on registration
// and dropped on logout
type PrincipalCache struct {
	cache Cache
	ttl   time.Duration
}

func NewPrincipalCache(c Cache, ttl time.Duration) *PrincipalCache {
	return &PrincipalCache{cache: c, ttl: ttl}
}

// Init seeds the profile and role of a freshly registered principal
func (p *PrincipalCache) Init(ctx context.Context, prof *profile.Profile) {
	if prof == nil {
		return
	}
	p.cache.Set(ctx, GenerateKey(PrefixProfile, prof.Owner), prof, p.ttl)
	p.cache.Set(ctx, GenerateKey(PrefixRole, prof.Owner), prof.Role, p.ttl)
}

func (p *PrincipalCache) Profile(ctx context.Context, principal string) (*profile.Profile, bool) {
	v, ok := p.cache.Get(ctx, GenerateKey(PrefixProfile, principal))
	if !ok {
		return nil, false
	}
	prof, ok := v.(*profile.Profile)
	return prof, ok
}

func (p *PrincipalCache) Role(ctx context.Context, principal string) (types.UserRole, bool) {
	v, ok := p.cache.Get(ctx, GenerateKey(PrefixRole, principal))
	if !ok {
		return "", false
	}
	role, ok := v.(types.UserRole)
	return role, ok
}

// Invalidate drops every entry held for the principal
func (p *PrincipalCache) Invalidate(ctx context.Context, principal string) {
	for _, key := range PrincipalKeys(principal) {
		p.cache.Delete(ctx, key)
	}
}
