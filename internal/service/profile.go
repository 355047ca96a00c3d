package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/checkout/internal/api/dto"
	"github.com/flexprice/checkout/internal/cache"
	"github.com/flexprice/checkout/internal/domain/profile"
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/types"
)

// ProfileService registers principals and resolves their role
type ProfileService interface {
	// EnsureRegistration creates the principal's profile on first sign-in
	EnsureRegistration(ctx context.Context, owner string) (*dto.LoginResponse, error)
	GetProfile(ctx context.Context, owner string) (*dto.ProfileResponse, error)
	SaveProfile(ctx context.Context, owner string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	// GetRole yields guest when the role cannot be resolved
	GetRole(ctx context.Context, owner string) types.UserRole
	IsAdmin(ctx context.Context, owner string) bool
	Logout(ctx context.Context, owner string)
}

type profileService struct {
	ServiceParams
	principals *cache.PrincipalCache
}

func NewProfileService(params ServiceParams) ProfileService {
	return &profileService{
		ServiceParams: params,
		principals:    cache.NewPrincipalCache(params.Cache, params.Config.Cache.TTL),
	}
}

func (s *profileService) registrationBackoff(ctx context.Context) backoff.BackOffContext {
	cfg := s.Config.Registration
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialInterval
	b.MaxInterval = cfg.MaxInterval
	b.MaxElapsedTime = 0

	retries := cfg.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

func (s *profileService) EnsureRegistration(ctx context.Context, owner string) (*dto.LoginResponse, error) {
	if owner == "" {
		return nil, ierr.NewError("owner is required").
			WithHint("Please sign in again").
			Mark(ierr.ErrUnauthenticated)
	}

	var registered *profile.Profile
	operation := func() error {
		p, err := s.ProfileRepo.Get(ctx, owner)
		if err == nil {
			registered = p
			return nil
		}
		if !ierr.IsNotFound(err) {
			return err
		}

		p = profile.NewProfile(owner, s.initialRole(owner))
		if err := s.ProfileRepo.Create(ctx, p); err != nil {
			// a concurrent registration won, the next attempt reads its row
			return err
		}
		registered = p
		return nil
	}

	notify := func(err error, next time.Duration) {
		s.Logger.WithContext(ctx).Warnw("profile registration attempt failed, retrying",
			"owner", owner,
			"retry_in", next,
			"error", err)
	}

	if err := backoff.RetryNotify(operation, s.registrationBackoff(ctx), notify); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to register your profile").
			Mark(ierr.ErrDatabase)
	}

	s.principals.Init(ctx, registered)
	return &dto.LoginResponse{
		Profile: dto.NewProfileResponse(registered),
		Role:    registered.Role,
		IsAdmin: registered.Role == types.UserRoleAdmin,
	}, nil
}

func (s *profileService) initialRole(owner string) types.UserRole {
	if s.Config.Auth.IsAdminPrincipal(owner) {
		return types.UserRoleAdmin
	}
	return types.UserRoleUser
}

func (s *profileService) load(ctx context.Context, owner string) (*profile.Profile, error) {
	if p, ok := s.principals.Profile(ctx, owner); ok {
		return p, nil
	}
	p, err := s.ProfileRepo.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	s.principals.Init(ctx, p)
	return p, nil
}

func (s *profileService) GetProfile(ctx context.Context, owner string) (*dto.ProfileResponse, error) {
	p, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	return dto.NewProfileResponse(p), nil
}

func (s *profileService) SaveProfile(ctx context.Context, owner string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	err := s.ProfileRepo.UpdateName(ctx, owner, req.Name)
	if ierr.IsNotFound(err) {
		if _, err = s.EnsureRegistration(ctx, owner); err != nil {
			return nil, err
		}
		err = s.ProfileRepo.UpdateName(ctx, owner, req.Name)
	}
	if err != nil {
		return nil, err
	}

	s.principals.Invalidate(ctx, owner)
	return s.GetProfile(ctx, owner)
}

func (s *profileService) GetRole(ctx context.Context, owner string) types.UserRole {
	if owner == "" {
		return types.UserRoleGuest
	}
	if role, ok := s.principals.Role(ctx, owner); ok {
		return role
	}

	p, err := s.ProfileRepo.Get(ctx, owner)
	if err != nil {
		if !ierr.IsNotFound(err) {
			s.Logger.WithContext(ctx).Warnw("failed to resolve role, treating as guest",
				"owner", owner,
				"error", err)
		}
		return types.UserRoleGuest
	}
	if err := p.Role.Validate(); err != nil {
		return types.UserRoleGuest
	}

	s.principals.Init(ctx, p)
	return p.Role
}

func (s *profileService) IsAdmin(ctx context.Context, owner string) bool {
	return s.GetRole(ctx, owner) == types.UserRoleAdmin
}

func (s *profileService) Logout(ctx context.Context, owner string) {
	s.principals.Invalidate(ctx, owner)
	s.Logger.WithContext(ctx).Debugw("principal cache invalidated", "owner", owner)
}
