package v1

import (
	"net/http"

	"github.com/flexprice/checkout/internal/api/dto"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/service"
	"github.com/flexprice/checkout/internal/types"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	profiles service.ProfileService
	logger   *logger.Logger
}

func NewAuthHandler(profiles service.ProfileService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		profiles: profiles,
		logger:   logger,
	}
}

// @Summary Sign in
// @Description Register the authenticated principal on first sign-in and return its profile and role
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} ierr.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.profiles.EnsureRegistration(ctx, types.GetUserID(ctx))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Sign out
// @Description Drop every cached entry of the authenticated principal
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	h.profiles.Logout(ctx, types.GetUserID(ctx))
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "signed out"})
}
