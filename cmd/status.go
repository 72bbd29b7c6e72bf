// ABOUTME: Status command: shows the API endpoint and the session state
// ABOUTME: Reads the credential store without contacting the API

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tsundip4/airport-ops-console/internal/config"
	"github.com/tsundip4/airport-ops-console/internal/records"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the API endpoint and whether a credential is stored",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(runStatus)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusReport struct {
	API     string `json:"api"`
	Session string `json:"session"`
	Store   string `json:"store"`
	Dir     string `json:"config_dir,omitempty"`
}

func runStatus(ctx context.Context, w io.Writer) int {
	format, err := GetOutputFormat()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	return withSession(w, func(s *session) int {
		report := statusReport{
			API:     s.client.BaseURL(),
			Session: s.ctrl.Status().String(),
			Store:   s.cfg.StoreBackend,
		}
		if s.cfg.StoreBackend != config.StoreMemory {
			report.Dir = s.cfg.ConfigDir
		}

		if format != records.FormatTable {
			data, _ := json.Marshal(report)
			return writeRaw(w, data)
		}
		fmt.Fprintln(w, formatStatusHuman(report))
		return 0
	})
}

// formatStatusHuman formats the status report for human readability
func formatStatusHuman(r statusReport) string {
	out := fmt.Sprintf(`API:      %s
Session:  %s
Store:    %s`, r.API, r.Session, r.Store)
	if r.Dir != "" {
		out += fmt.Sprintf("\nConfig:   %s", r.Dir)
	}
	return out
}
