package cache

import (
	"github.com/flexprice/checkout/internal/config"
	"github.com/flexprice/checkout/internal/logger"
)

// Initialize builds the process-wide cache used by the profile and credential services
func Initialize(cfg *config.Configuration, log *logger.Logger) Cache {
	c := NewInMemoryCache(cfg)
	log.Infow("cache system initialized", "enabled", c.enabled, "ttl", cfg.Cache.TTL)
	return c
}
