package middleware

import (
	"context"
	"strings"

	"github.com/flexprice/checkout/internal/auth"
	"github.com/flexprice/checkout/internal/config"
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/types"
	"github.com/gin-gonic/gin"
)

const (
	authKindAPIKey = "api_key"
	authKindJWT    = "jwt"
)

func unauthenticated(c *gin.Context, msg string) {
	_ = c.Error(ierr.NewError(msg).
		WithHint(ierr.ReauthenticateHint).
		Mark(ierr.ErrUnauthenticated))
	c.Abort()
}

// AuthenticateMiddleware is a middleware that authenticates requests based on either:
// 1. JWT token in the Authorization header as a Bearer token
// 2. API key in the x-api-key header (or configured header name)
// It sets the principal as the user ID in the request context for downstream handlers
func AuthenticateMiddleware(cfg *config.Configuration, logger *logger.Logger) gin.HandlerFunc {
	authProvider := auth.NewProvider(cfg)

	return func(c *gin.Context) {
		// First check for API key
		apiKeyHeader := c.GetHeader(cfg.Auth.APIKey.Header)
		if apiKeyHeader != "" {
			principal, valid := auth.ValidateAPIKey(cfg, apiKeyHeader)
			if !valid || principal == "" {
				logger.Debugw("invalid api key")
				unauthenticated(c, "invalid api key")
				return
			}

			ctx := types.SetUserID(c.Request.Context(), principal)
			ctx = context.WithValue(ctx, types.CtxAuthKind, authKindAPIKey)
			c.Request = c.Request.WithContext(ctx)
			c.Next()
			return
		}

		authHeader := c.GetHeader(types.HeaderAuthorization)
		if authHeader == "" {
			unauthenticated(c, "missing authorization header")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			unauthenticated(c, "invalid authorization header format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := authProvider.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			logger.Debugw("failed to validate token", "error", err)
			_ = c.Error(err)
			c.Abort()
			return
		}

		ctx := types.SetUserID(c.Request.Context(), claims.Principal)
		ctx = context.WithValue(ctx, types.CtxJWT, tokenString)
		ctx = context.WithValue(ctx, types.CtxAuthKind, authKindJWT)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
