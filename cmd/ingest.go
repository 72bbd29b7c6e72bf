// ABOUTME: Ingest command: triggers a flight ingestion for one airport
// ABOUTME: Uses the extended ingestion timeout and prints the raw response

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tsundip4/airport-ops-console/internal/client"
	"github.com/tsundip4/airport-ops-console/internal/tabs"
)

var ingestLimit int

var ingestCmd = &cobra.Command{
	Use:   "ingest dep|arr IATA",
	Short: "Ingest departures or arrivals for an airport",
	Long: `Ask the API to pull fresh departures (dep) or arrivals (arr) for one
airport from the flight data provider. Runs can take several minutes;
the wait is bounded by AIRPORT_OPS_INGEST_TIMEOUT (default 3m).`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runIngest(ctx, w, args[0], args[1], ingestLimit)
		})
	},
}

func init() {
	ingestCmd.Flags().IntVar(&ingestLimit, "limit", tabs.DefaultIngestLimit, "Maximum flights to ingest")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(ctx context.Context, w io.Writer, direction, iata string, limit int) int {
	dir, err := client.ParseDirection(direction)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	return withSession(w, func(s *session) int {
		raw, err := tabs.NewIngest(s.client).Run(ctx, dir, iata, limit)
		if err != nil {
			return fail(w, err)
		}
		return writeRaw(w, raw)
	})
}
