package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format only")
	cmd.PersistentFlags().StringSlice("proxy", nil, "HTTP/SOCKS5 proxy, repeat to rotate (e.g., http://localhost:8080)")
	cmd.PersistentFlags().String("timeout", "", "Hard timeout per scraped URL (default 2m)")
	cmd.PersistentFlags().String("user-agent", "", "User agent for static fetches")
	cmd.PersistentFlags().String("chrome-path", "", "Path to the Chrome or Chromium binary")
	cmd.PersistentFlags().Bool("headful", false, "Show the browser window while rendering")
	cmd.PersistentFlags().Bool("respect-robots", false, "Honor robots.txt before fetching")
	cmd.PersistentFlags().String("config", "", "Path to configuration file (optional)")
}
