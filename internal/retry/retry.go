// internal/retry/retry.go
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
)

// Config defines which HTTP failures are retried and how long to back off.
// Only errors carrying one of RetryableStatusCodes are retried; anything else
// is returned at once so the caller can fall back to a browser render.
type Config struct {
	MaxAttempts          int // including the first
	InitialBackoff       time.Duration
	MaxBackoff           time.Duration
	Multiplier           float64
	RetryableStatusCodes []int
}

// StaticFetchConfig retries gateway style 5xx responses. Access denial and
// timeouts are never retried.
func StaticFetchConfig(attempts int) Config {
	if attempts <= 0 {
		attempts = 1
	}
	return Config{
		MaxAttempts:    attempts,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Multiplier:     2.0,
		RetryableStatusCodes: []int{
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

// WithRetry calls fn until it succeeds, fails with a non-retryable error, or
// runs out of attempts. Backoff waits end early when ctx is done.
func WithRetry(ctx context.Context, cfg Config, fn func() error) error {
	attempts := max(cfg.MaxAttempts, 1)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 0 {
				log.Debug().Int("attempts", attempt+1).Msg("Retry succeeded")
			}
			return nil
		}
		lastErr = err

		if !shouldRetry(err, cfg) {
			return err
		}
		if attempt == attempts-1 {
			break
		}

		backoff := calculateBackoff(attempt, cfg)
		log.Debug().
			Int("attempt", attempt+1).
			Int("max_attempts", attempts).
			Dur("backoff", backoff).
			Err(err).
			Msg("Retrying after backoff")

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("operation failed after %d attempts: %w", attempts, lastErr)
}

// calculateBackoff returns InitialBackoff * Multiplier^attempt, capped
func calculateBackoff(attempt int, cfg Config) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt))
	return time.Duration(min(backoff, float64(cfg.MaxBackoff)))
}

func shouldRetry(err error, cfg Config) bool {
	var sc StatusCoder
	if !errors.As(err, &sc) {
		return false
	}
	return slices.Contains(cfg.RetryableStatusCodes, sc.GetStatusCode())
}

// StatusCoder is an error that carries an HTTP status code
type StatusCoder interface {
	GetStatusCode() int
}

// HTTPError is a non-2xx response
type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s - %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// GetStatusCode implements StatusCoder
func (e HTTPError) GetStatusCode() int {
	return e.StatusCode
}

// NewHTTPError creates a new HTTPError
func NewHTTPError(statusCode int, status string, message string) HTTPError {
	return HTTPError{
		StatusCode: statusCode,
		Status:     status,
		Message:    message,
	}
}
