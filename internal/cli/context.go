// Package cli provides the command-line interface for the sitescrape application.
package cli

import (
	"context"
	"fmt"

	"github.com/law-makers/sitescrape/internal/app"
	"github.com/spf13/cobra"
)

// ctxKey is used for storing the application in a command's context
type ctxKey struct{}

// SetApp stores the Application in the command's context
func SetApp(cmd *cobra.Command, a *app.Application) {
	if cmd == nil {
		return
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, ctxKey{}, a))
}

// GetApp retrieves the Application from the command's context
func GetApp(cmd *cobra.Command) (*app.Application, error) {
	if cmd == nil || cmd.Context() == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	a, ok := cmd.Context().Value(ctxKey{}).(*app.Application)
	if !ok || a == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return a, nil
}
