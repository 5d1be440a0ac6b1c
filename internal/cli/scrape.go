// internal/cli/scrape.go
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/law-makers/sitescrape/internal/app"
	"github.com/law-makers/sitescrape/internal/ui"
	"github.com/law-makers/sitescrape/internal/utils/headers"
	"github.com/law-makers/sitescrape/internal/utils/output"
	urlutil "github.com/law-makers/sitescrape/internal/utils/url"
	"github.com/law-makers/sitescrape/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// requestFlags are shared by scrape and batch
type requestFlags struct {
	mode    string
	headers []string
	noCache bool
	format  string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "auto", "Rendering path: auto, static, or dynamic")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "Custom headers (e.g., -H \"Accept-Language: de\")")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Bypass the result cache")
	cmd.Flags().StringVarP(&f.format, "format", "f", "json", "Stdout format: json, markdown, or csv")
}

// template returns request options without a URL
func (f *requestFlags) template(a *app.Application) (models.RequestOptions, error) {
	mode, err := parseMode(f.mode)
	if err != nil {
		return models.RequestOptions{}, err
	}
	headerMap, err := headers.ParseHeaders(f.headers)
	if err != nil {
		return models.RequestOptions{}, err
	}
	return models.RequestOptions{
		Mode:    mode,
		Headers: headerMap,
		Timeout: a.Config.Timeout.Duration,
		NoCache: f.noCache,
	}, nil
}

func (f *requestFlags) outputFormat() (output.Format, error) {
	switch strings.ToLower(f.format) {
	case "json", "":
		return output.FormatJSON, nil
	case "markdown", "md":
		return output.FormatMarkdown, nil
	case "csv":
		return output.FormatCSV, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be json, markdown, or csv)", f.format)
	}
}

func parseMode(s string) (models.ScraperMode, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return models.ModeAuto, nil
	case "static":
		return models.ModeStatic, nil
	case "dynamic", "spa":
		return models.ModeDynamic, nil
	default:
		return "", fmt.Errorf("invalid mode: %s (must be auto, static, or dynamic)", s)
	}
}

func newScrapeCmd() *cobra.Command {
	var (
		flags   requestFlags
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "scrape <url>",
		Short: "Extract metadata and labeled sections from a URL",
		Long: `Fetches the page statically and keeps that response when it already carries
enough visible content. Otherwise renders it in headless Chrome, handling
overlays, tabs, load-more buttons, infinite scroll and pagination.

The result is printed to stdout, or saved to --output with the format taken
from its extension (.json, .md, .csv).`,
		Example: `  # Adaptive scrape
  sitescrape scrape https://example.com

  # Skip the browser entirely
  sitescrape scrape https://example.com --mode=static

  # Always render in Chrome and save as Markdown
  sitescrape scrape https://example.com --mode=dynamic -o page.md

  # Add custom headers
  sitescrape scrape https://example.com -H "Accept-Language: de"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := GetApp(cmd)
			if err != nil {
				return err
			}

			url := strings.TrimSpace(args[0])
			if err := urlutil.ValidateURL(url); err != nil {
				if a.Config.JSONLog {
					_ = output.WriteInvalidRequest(cmd.OutOrStdout(), "url", err.Error())
				}
				return models.ValidationError("url", err)
			}

			format, err := flags.outputFormat()
			if err != nil {
				return err
			}
			opts, err := flags.template(a)
			if err != nil {
				return err
			}
			opts.URL = url

			log.Info().Str("url", url).Str("mode", string(opts.Mode)).Msg("Scraping URL")
			result := a.Scraper.Scrape(cmd.Context(), opts)

			if outPath != "" {
				if err := output.Save(result, outPath); err != nil {
					return err
				}
				if !quiet(a) {
					printSummary(cmd.ErrOrStderr(), result)
					fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", ui.Success("✓ Saved to "+outPath))
				}
				return nil
			}

			if err := output.Write(cmd.OutOrStdout(), result, format); err != nil {
				return err
			}
			if !quiet(a) {
				printSummary(cmd.ErrOrStderr(), result)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "File path to save output (supports .json, .md, .csv)")
	return cmd
}

// quiet reports whether human summaries should be suppressed. -q lowers the
// log level to error.
func quiet(a *app.Application) bool {
	return a.Config.JSONLog || a.Config.LogLevel == "error"
}

// printSummary writes a short human readable digest of result
func printSummary(w io.Writer, result *models.ScrapeResult) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", ui.Bold("URL:        "), result.URL)
	fmt.Fprintf(w, "%s %s\n", ui.Bold("Title:      "), result.Meta.Title)
	fmt.Fprintf(w, "%s %s\n", ui.Bold("Rendered:   "), result.RenderPath)
	fmt.Fprintf(w, "%s %d\n", ui.Bold("Sections:   "), len(result.Sections))
	fmt.Fprintf(w, "%s %d clicks, %d scrolls, %d pages\n", ui.Bold("Interacted: "),
		len(result.Interactions.Clicks), result.Interactions.Scrolls, len(result.Interactions.Pages))
	for _, e := range result.Errors {
		fmt.Fprintf(w, "%s %s\n", ui.Error("["+string(e.Phase)+"]"), e.Message)
	}
	fmt.Fprintln(w)
}
