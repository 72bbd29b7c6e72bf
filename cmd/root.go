// ABOUTME: Root command for the airport-ops CLI
// ABOUTME: Handles global flags and resolves configuration with flag > env > default precedence

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tsundip4/airport-ops-console/internal/config"
	"github.com/tsundip4/airport-ops-console/internal/records"
)

var (
	apiURL       string
	jsonOutput   bool
	outputFormat string
	ephemeral    bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "airport-ops",
	Short: "Operations console for the airport, airline and flight API",
	Long: `airport-ops manages airports and airlines, queries flights, triggers
flight ingestion and talks to the flight assistant of the operations API.

Run "airport-ops console" for the interactive console.

Environment Variables:
  AIRPORT_OPS_API_URL          API base URL (fallback VITE_API_BASE_URL, default http://localhost:8000)
  AIRPORT_OPS_TIMEOUT          Request timeout (default 60s)
  AIRPORT_OPS_INGEST_TIMEOUT   Ingestion timeout (default 3m)
  AIRPORT_OPS_STORE            Credential store: file, sqlite or memory (default file)
  AIRPORT_OPS_CONFIG_DIR       Directory for credentials and debug.log
  AIRPORT_OPS_CALLBACK_ADDR    Loopback address for Google sign-in (default 127.0.0.1:5173)
  AIRPORT_OPS_ALL_PROXY        ssh+socks5://user@jumpbox:22?private-key=/path tunnel
  LOG_LEVEL, LOG_FORMAT        Logging (info, console)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides AIRPORT_OPS_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of tables")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "Output format: table, json or yaml")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep the session in memory only")
}

// loadConfig reads the environment and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIBaseURL = config.NormalizeBaseURL(apiURL)
	}
	if ephemeral {
		cfg.StoreBackend = config.StoreMemory
	}
	return cfg, cfg.Validate()
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return config.NormalizeBaseURL(apiURL)
	}
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultAPIURL
	}
	return cfg.APIBaseURL
}

// GetOutputFormat resolves --output and --json; --output wins when both are set
func GetOutputFormat() (records.Format, error) {
	if outputFormat != "" {
		return records.ParseFormat(outputFormat)
	}
	if jsonOutput {
		return records.FormatJSON, nil
	}
	return records.FormatTable, nil
}
