package cache

import (
	"context"

	"github.com/getsentry/sentry-go"
)

// StartCacheSpan opens a sentry span for a cache operation.
// Returns nil when no hub is bound to ctx; every helper below accepts a nil span.
func StartCacheSpan(ctx context.Context, cache, operation string, params map[string]interface{}) *sentry.Span {
	if sentry.GetHubFromContext(ctx) == nil {
		return nil
	}

	name := "cache." + cache + "." + operation
	span := sentry.StartSpan(ctx, name)
	span.Description = name
	span.Op = "db.cache"
	span.SetData("cache", cache)
	span.SetData("operation", operation)
	for k, v := range params {
		span.SetData(k, v)
	}
	return span
}

// SetSpanData attaches a value to a possibly nil span
func SetSpanData(span *sentry.Span, key string, value interface{}) {
	if span != nil {
		span.SetData(key, value)
	}
}

// FinishSpan safely finishes a span, handling nil spans
func FinishSpan(span *sentry.Span) {
	if span != nil {
		span.Finish()
	}
}
