package v1

import (
	"net/http"

	"github.com/flexprice/checkout/internal/api/dto"
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/service"
	"github.com/flexprice/checkout/internal/types"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profiles service.ProfileService
	logger   *logger.Logger
}

func NewProfileHandler(profiles service.ProfileService, logger *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		logger:   logger,
	}
}

// @Summary Get profile
// @Description Get the authenticated principal's profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ProfileResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.profiles.GetProfile(ctx, types.GetUserID(ctx))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Update profile
// @Description Rename the authenticated principal
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body dto.UpdateProfileRequest true "Profile"
// @Success 200 {object} dto.ProfileResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please enter your name").
			Mark(ierr.ErrValidation))
		return
	}

	ctx := c.Request.Context()
	resp, err := h.profiles.SaveProfile(ctx, types.GetUserID(ctx), &req)
	if err != nil {
		h.logger.WithContext(ctx).Errorw("failed to save profile", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Get role
// @Description Get the authenticated principal's role, guest when unresolved
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Router /profile/role [get]
func (h *ProfileHandler) GetRole(c *gin.Context) {
	ctx := c.Request.Context()
	role := h.profiles.GetRole(ctx, types.GetUserID(ctx))
	c.JSON(http.StatusOK, gin.H{"role": role})
}
