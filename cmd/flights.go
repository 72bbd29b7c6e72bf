// ABOUTME: Flights command: read-only flight query with optional filters
// ABOUTME: Blank filters are left out of the query; limit and offset always sent

package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/tsundip4/airport-ops-console/internal/client"
	"github.com/tsundip4/airport-ops-console/internal/tabs"
)

var flightFilter = client.DefaultFlightFilter()

var flightsCmd = &cobra.Command{
	Use:   "flights",
	Short: "Query flights",
	Long: `Query flights by departure airport, arrival airport, date and status.

Examples:
  airport-ops flights --dep JFK --date 2024-05-01
  airport-ops flights --arr LAX --status landed --output yaml`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runFlights(ctx, w, flightFilter)
		})
	},
}

func init() {
	flightsCmd.Flags().StringVar(&flightFilter.DepIATA, "dep", "", "Departure airport IATA")
	flightsCmd.Flags().StringVar(&flightFilter.ArrIATA, "arr", "", "Arrival airport IATA")
	flightsCmd.Flags().StringVar(&flightFilter.FlightDate, "date", "", "Flight date (YYYY-MM-DD)")
	flightsCmd.Flags().StringVar(&flightFilter.Status, "status", "", "Flight status")
	flightsCmd.Flags().IntVar(&flightFilter.Limit, "limit", flightFilter.Limit, "Maximum rows to return")
	flightsCmd.Flags().IntVar(&flightFilter.Offset, "offset", 0, "Rows to skip")
	rootCmd.AddCommand(flightsCmd)
}

// runFlights loads the filtered flights through the flights tab
func runFlights(ctx context.Context, w io.Writer, filter client.FlightFilter) int {
	return withSession(w, func(s *session) int {
		flights := tabs.NewFlights(s.client)
		flights.SetFilter(filter)
		if err := flights.Load(ctx); err != nil {
			return fail(w, err)
		}
		return writeRows(w, flights.Rows())
	})
}
