// internal/engine/dynamic/session.go
package dynamic

import (
	"context"
	"errors"
	"fmt"

	"github.com/law-makers/sitescrape/pkg/models"
	"github.com/rs/zerolog/log"
)

// SessionFunc is the work done while a session is open
type SessionFunc func(ctx context.Context, page Page) error

// WithSession acquires a browser, an isolated context and a page, runs fn,
// then releases page, context and browser in that order. Each release is
// attempted even if an earlier one failed. Acquisition failures are returned
// as BROWSER_INIT errors and fn is not called.
func WithSession(ctx context.Context, launcher Launcher, opts ContextOptions, fn SessionFunc) (err error) {
	var (
		browser  Browser
		bctx     BrowserContext
		page     Page
		released []func() error
	)

	defer func() {
		var errs []error
		for i := len(released) - 1; i >= 0; i-- {
			if rerr := released[i](); rerr != nil {
				errs = append(errs, rerr)
			}
		}
		if joined := errors.Join(errs...); joined != nil {
			log.Warn().Err(joined).Msg("Failed to release browser session")
		}
	}()

	browser, err = launcher.Launch(ctx)
	if err != nil {
		return models.BrowserInitError(err)
	}
	released = append(released, closer("browser", browser.Close))

	bctx, err = browser.NewContext(ctx, opts)
	if err != nil {
		return models.BrowserInitError(err)
	}
	released = append(released, closer("context", bctx.Close))

	page, err = bctx.NewPage(ctx)
	if err != nil {
		return models.BrowserInitError(err)
	}
	released = append(released, closer("page", page.Close))

	return fn(ctx, page)
}

func closer(name string, fn func() error) func() error {
	return func() error {
		if err := fn(); err != nil {
			return fmt.Errorf("close %s: %w", name, err)
		}
		return nil
	}
}
