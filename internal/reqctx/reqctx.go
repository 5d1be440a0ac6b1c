// Package reqctx carries per-request identity through a scrape.
package reqctx

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type key int

const requestKey key = 0

// RequestContext identifies one scrape request
type RequestContext struct {
	RequestID string
	URL       string
	StartTime time.Time
	Logger    zerolog.Logger
}

// WithRequestContext attaches a fresh request id and a logger tagged with it
func WithRequestContext(ctx context.Context, url string) context.Context {
	id := uuid.NewString()
	return context.WithValue(ctx, requestKey, &RequestContext{
		RequestID: id,
		URL:       url,
		StartTime: time.Now(),
		Logger:    log.With().Str("request_id", id).Str("url", url).Logger(),
	})
}

// GetRequestContext returns the request context, or a placeholder when ctx
// carries none.
func GetRequestContext(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(requestKey).(*RequestContext); ok {
		return rc
	}
	return &RequestContext{
		RequestID: "unknown",
		StartTime: time.Now(),
		Logger:    log.Logger,
	}
}

// Logger returns the request scoped logger
func Logger(ctx context.Context) *zerolog.Logger {
	l := GetRequestContext(ctx).Logger
	return &l
}

// Elapsed returns the time since the request started
func Elapsed(ctx context.Context) time.Duration {
	return time.Since(GetRequestContext(ctx).StartTime)
}
