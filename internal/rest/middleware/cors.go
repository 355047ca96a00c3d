package middleware

import (
	"net/http"
	"strings"

	"github.com/flexprice/checkout/internal/config"
	"github.com/flexprice/checkout/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// CORSMiddleware allows the configured browser origins. An empty list allows any origin.
func CORSMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	allowed := cfg.Server.AllowedOrigins
	headers := strings.Join([]string{
		types.HeaderAuthorization,
		types.HeaderRequestID,
		cfg.Auth.APIKey.Header,
		"Content-Type",
	}, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case len(allowed) == 0:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case lo.Contains(allowed, origin):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", headers)
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
