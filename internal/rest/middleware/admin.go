package middleware

import (
	"context"

	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/types"
	"github.com/gin-gonic/gin"
)

// RoleResolver reports whether a principal holds the admin role
type RoleResolver interface {
	IsAdmin(ctx context.Context, owner string) bool
}

// RequireAdmin rejects principals that are not registered as admins.
// It must run after AuthenticateMiddleware.
func RequireAdmin(roles RoleResolver, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		principal := types.GetUserID(ctx)
		if !roles.IsAdmin(ctx, principal) {
			logger.WithContext(ctx).Infow("admin access denied",
				"principal", principal,
				"path", c.Request.URL.Path)
			_ = c.Error(ierr.NewError("admin role required").
				WithHint("You do not have access to this page").
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}
		c.Next()
	}
}
