package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/law-makers/sitescrape/internal/engine/hybrid"
	"github.com/law-makers/sitescrape/internal/ui"
	urlutil "github.com/law-makers/sitescrape/internal/utils/url"
	"github.com/law-makers/sitescrape/pkg/models"
	"github.com/spf13/cobra"
)

// detection is the JSON shape printed by detect --json
type detection struct {
	URL          string `json:"url"`
	Strategy     string `json:"strategy"`
	Reason       string `json:"reason"`
	Marker       string `json:"marker,omitempty"`
	VisibleChars int    `json:"visibleChars"`
	Error        string `json:"error,omitempty"`
}

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <url>",
		Short: "Report whether a URL needs a browser render",
		Long: `Runs only the static fetch and the content sufficiency check, and prints the
rendering path a scrape would take together with the reason.`,
		Example: `  sitescrape detect https://example.com
  sitescrape detect https://app.example.com --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := GetApp(cmd)
			if err != nil {
				return err
			}

			url := strings.TrimSpace(args[0])
			if err := urlutil.ValidateURL(url); err != nil {
				return models.ValidationError("url", err)
			}

			decision := hybrid.Decide(cmd.Context(), a.Fetcher, models.RequestOptions{URL: url})
			d := detection{
				URL:      url,
				Strategy: decision.Strategy.String(),
				Reason:   decision.Reason,
			}
			if decision.HTML != "" {
				v := hybrid.Detect(decision.HTML)
				d.Marker = v.Marker
				d.VisibleChars = v.VisibleChars
			}
			if decision.Err != nil && decision.HTML == "" {
				d.Error = models.MessageOf(decision.Err)
			}

			w := cmd.OutOrStdout()
			if a.Config.JSONLog {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}

			strategy := ui.Success(d.Strategy)
			if decision.Strategy == hybrid.StrategyDynamic {
				strategy = ui.Info(d.Strategy)
			}
			fmt.Fprintf(w, "%s %s\n", ui.Bold("Strategy:"), strategy)
			fmt.Fprintf(w, "%s %s\n", ui.Bold("Reason:  "), d.Reason)
			fmt.Fprintf(w, "%s %d\n", ui.Bold("Visible: "), d.VisibleChars)
			if d.Error != "" {
				fmt.Fprintf(w, "%s %s\n", ui.Error("Error:   "), d.Error)
			}
			return nil
		},
	}
}
