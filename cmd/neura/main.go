// Command neura is a terminal client for the Neura chat relay.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"zen-backend/internal/config"
)

var (
	apiURL  string
	timeout time.Duration
	direct  bool
	cfg     *config.ClientConfig
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "neura",
	Short: "Talk to Neura, the Zen emotional-support assistant",
	Long: `Terminal client for the Neura chat relay.

Messages go to the relay at NEURA_API_URL. With --direct the relay runs
in-process using GEMINI_API_KEY, for environments without a deployed relay.

Neura is an AI and does not replace professional care. In a crisis, call
CVV (188), available 24h.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("api-url") {
			apiURL = cfg.APIURL
		}
		if !cmd.Flags().Changed("timeout") {
			timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
	},
}

func init() {
	cfg = config.LoadClient()

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Relay base URL (or set NEURA_API_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-message timeout, at most 30s (or set NEURA_TIMEOUT_SECONDS)")
	rootCmd.PersistentFlags().BoolVar(&direct, "direct", false, "Call Gemini directly instead of the relay")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
