// internal/cli/root.go
package cli

import (
	"context"
	"os"
	"time"

	"github.com/law-makers/sitescrape/internal/app"
	"github.com/law-makers/sitescrape/internal/config"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// NewRootCmd builds the sitescrape command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sitescrape",
		Short: "Extract structured, labeled sections from any web page",
		Long: `Sitescrape fetches a page, decides whether the server response already
carries the content, and falls back to a headless Chrome render when it does not.

While rendering it dismisses cookie banners, cycles tabs, expands "load more"
controls, scrolls and paginates, then splits the final DOM into typed sections.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	config.RegisterFlags(rootCmd)

	// Lazily initialize the application before running commands (avoid starting app for -h/help)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if _, err := GetApp(cmd); err == nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		SetApp(cmd, a)
		return nil
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		a, err := GetApp(cmd)
		if err != nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Close(ctx)
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().BoolP("help", "h", false, "Help for sitescrape")
	rootCmd.Flags().Bool("version", false, "Version for sitescrape")
	rootCmd.SetHelpFunc(helpFunc)
	rootCmd.SetUsageFunc(usageFunc)

	rootCmd.AddCommand(newScrapeCmd(), newBatchCmd(), newDetectCmd())
	return rootCmd
}

// ExecuteContext runs the CLI. Cancelling ctx aborts in-flight scrapes
// while still releasing their browsers.
func ExecuteContext(ctx context.Context) int {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		return 1
	}
	return 0
}

// Execute runs the CLI with a background context and exits on failure
func Execute() {
	if code := ExecuteContext(context.Background()); code != 0 {
		os.Exit(code)
	}
}
