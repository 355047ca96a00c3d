package dto

import (
	"github.com/flexprice/checkout/internal/domain/profile"
	"github.com/flexprice/checkout/internal/types"
)

// UpdateProfileRequest renames the caller's profile
type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

// Validate normalizes the name in place
func (r *UpdateProfileRequest) Validate() error {
	name, err := profile.NormalizeName(r.Name)
	if err != nil {
		return err
	}
	r.Name = name
	return nil
}

type ProfileResponse struct {
	*profile.Profile
}

func NewProfileResponse(p *profile.Profile) *ProfileResponse {
	if p == nil {
		return nil
	}
	return &ProfileResponse{Profile: p}
}

// LoginResponse is returned once the caller's registration is ensured
type LoginResponse struct {
	Profile *ProfileResponse `json:"profile"`
	Role    types.UserRole   `json:"role"`
	IsAdmin bool             `json:"is_admin"`
}
