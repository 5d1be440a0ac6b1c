package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/law-makers/sitescrape/internal/engine/batch"
	"github.com/law-makers/sitescrape/internal/utils/output"
	urlutil "github.com/law-makers/sitescrape/internal/utils/url"
	"github.com/law-makers/sitescrape/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// batchEntry is one element of the batch JSON array
type batchEntry struct {
	URL    string               `json:"url"`
	Result *models.ScrapeResult `json:"result,omitempty"`
	Error  string               `json:"error,omitempty"`
}

func newBatchCmd() *cobra.Command {
	var (
		flags       requestFlags
		outDir      string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch <file|url>...",
		Short: "Scrape many URLs concurrently",
		Long: `Scrapes every URL given on the command line or listed in the given files
(one per line, # starts a comment). Each URL runs its own independent pipeline.

Requests are interleaved across hosts and bounded by --concurrency.`,
		Example: `  # URLs from a file, results as one JSON array
  sitescrape batch urls.txt

  # Mix files and URLs, one file per result
  sitescrape batch urls.txt https://example.com -o results/ --format=markdown`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := GetApp(cmd)
			if err != nil {
				return err
			}

			urls, err := readTargets(args)
			if err != nil {
				return err
			}
			if len(urls) == 0 {
				return fmt.Errorf("no URLs to scrape")
			}

			format, err := flags.outputFormat()
			if err != nil {
				return err
			}
			template, err := flags.template(a)
			if err != nil {
				return err
			}

			requests := make([]models.RequestOptions, len(urls))
			for i, u := range urls {
				requests[i] = template
				requests[i].URL = u
			}

			limit := concurrency
			if limit <= 0 {
				limit = min(batch.OptimalConcurrency(), a.Config.MaxConcurrency)
			}
			runner := batch.New(a.Scraper, min(limit, a.Config.MaxConcurrency))
			log.Info().Int("urls", len(urls)).Int("concurrency", runner.Concurrency()).Msg("Starting batch")

			var bar *progressbar.ProgressBar
			if !quiet(a) {
				bar = progressbar.NewOptions(len(urls),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("scraping"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}

			items := batch.Collect(runner.Run(cmd.Context(), requests), len(requests), func(item batch.Item) {
				if bar != nil {
					_ = bar.Add(1)
				}
			})
			if bar != nil {
				_ = bar.Finish()
			}

			if err := cmd.Context().Err(); err != nil {
				return fmt.Errorf("batch interrupted: %w", err)
			}

			if outDir != "" {
				return saveBatch(cmd, items, urls, outDir, format)
			}
			return writeBatchJSON(cmd, items, urls)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "Directory to write one file per URL")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "Parallel scrapes (0 picks a value from CPU and memory)")
	return cmd
}

// readTargets expands args into URLs. Arguments that look like URLs are used
// as is; anything else is read as a file of URLs.
func readTargets(args []string) ([]string, error) {
	var urls []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
			urls = append(urls, arg)
			continue
		}

		fh, err := os.Open(arg)
		if err != nil {
			return nil, fmt.Errorf("read targets: %w", err)
		}
		scanner := bufio.NewScanner(fh)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			urls = append(urls, line)
		}
		err = scanner.Err()
		fh.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", arg, err)
		}
	}
	return urls, nil
}

func writeBatchJSON(cmd *cobra.Command, items []batch.Item, urls []string) error {
	entries := make([]batchEntry, len(items))
	for i, item := range items {
		entries[i] = batchEntry{URL: urls[i], Result: item.Result}
		if item.Err != nil {
			entries[i].Error = models.MessageOf(item.Err)
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(entries)
}

// saveBatch writes one file per successful item, named by input position
// and host so reruns overwrite the same files.
func saveBatch(cmd *cobra.Command, items []batch.Item, urls []string, dir string, format output.Format) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	saved := 0
	for i, item := range items {
		if item.Err != nil || item.Result == nil {
			log.Warn().Str("url", urls[i]).Err(item.Err).Msg("Skipped invalid URL")
			continue
		}
		name := fmt.Sprintf("%03d-%s%s", i+1, safeName(urlutil.Host(urls[i])), format.Extension())
		if err := output.Save(item.Result, filepath.Join(dir, name)); err != nil {
			return err
		}
		saved++
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Saved %d of %d results to %s\n", saved, len(items), dir)
	return nil
}

func safeName(host string) string {
	if host == "" {
		return "page"
	}
	return strings.NewReplacer(":", "_", "/", "_").Replace(host)
}
