package types

import (
	ierr "github.com/flexprice/checkout/internal/errors"
)

// UserRole is the authorization level of a principal
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
	UserRoleGuest UserRole = "guest"
)

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) Validate() error {
	switch r {
	case UserRoleAdmin, UserRoleUser, UserRoleGuest:
		return nil
	}
	return ierr.NewError("invalid user role").
		WithHint("Role must be one of admin, user or guest").
		WithReportableDetails(map[string]any{
			"role": r,
		}).
		Mark(ierr.ErrValidation)
}
