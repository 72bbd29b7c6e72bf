// ABOUTME: Airport commands: list, get, create, update, delete, unique-airlines
// ABOUTME: Codes are upper-cased and blank optional fields are never sent

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tsundip4/airport-ops-console/internal/client"
	"github.com/tsundip4/airport-ops-console/internal/tabs"
)

var (
	pageLimit  int
	pageOffset int

	airportFields tabs.AirportForm
)

var airportsCmd = &cobra.Command{
	Use:     "airports",
	Aliases: []string{"airport"},
	Short:   "Manage airports",
}

var airportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List airports",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(runAirportsList)
	},
}

var airportsGetCmd = &cobra.Command{
	Use:   "get IATA",
	Short: "Show one airport",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runAirportGet(ctx, w, args[0])
		})
	},
}

var airportsUniqueCmd = &cobra.Command{
	Use:   "unique-airlines IATA",
	Short: "List the distinct airlines serving an airport",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runAirportUniqueAirlines(ctx, w, args[0])
		})
	},
}

var airportsCreateCmd = &cobra.Command{
	Use:   "create IATA",
	Short: "Create an airport",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			form := airportFields
			form.IATA = args[0]
			return runAirportCreate(ctx, w, form)
		})
	},
}

var airportsUpdateCmd = &cobra.Command{
	Use:   "update IATA",
	Short: "Update an airport; only the given fields change",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			form := airportFields
			form.IATA = args[0]
			return runAirportUpdate(ctx, w, form)
		})
	},
}

var airportsDeleteCmd = &cobra.Command{
	Use:   "delete IATA",
	Short: "Delete an airport",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runAirportDelete(ctx, w, args[0])
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{airportsCreateCmd, airportsUpdateCmd} {
		c.Flags().StringVar(&airportFields.Name, "name", "", "Airport name")
		c.Flags().StringVar(&airportFields.ICAO, "icao", "", "ICAO code")
		c.Flags().StringVar(&airportFields.Timezone, "timezone", "", "IANA timezone, e.g. America/New_York")
	}
	addPageFlags(airportsListCmd)

	airportsCmd.AddCommand(airportsListCmd, airportsGetCmd, airportsUniqueCmd,
		airportsCreateCmd, airportsUpdateCmd, airportsDeleteCmd)
	rootCmd.AddCommand(airportsCmd)
}

func addPageFlags(c *cobra.Command) {
	c.Flags().IntVar(&pageLimit, "limit", client.DefaultPage.Limit, "Maximum rows to return")
	c.Flags().IntVar(&pageOffset, "offset", client.DefaultPage.Offset, "Rows to skip")
}

func currentPage() client.Page {
	p := client.Page{Limit: pageLimit, Offset: pageOffset}
	if p.Limit <= 0 {
		p.Limit = client.DefaultPage.Limit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// runAirportsList loads one page through the airports tab
func runAirportsList(ctx context.Context, w io.Writer) int {
	return withSession(w, func(s *session) int {
		airports := tabs.NewAirports(s.client)
		airports.SetPage(currentPage())
		if err := airports.Load(ctx); err != nil {
			return fail(w, err)
		}
		return writeRows(w, airports.Rows())
	})
}

func runAirportGet(ctx context.Context, w io.Writer, iata string) int {
	return withSession(w, func(s *session) int {
		raw, err := s.client.GetAirport(ctx, tabs.NormalizeCode(iata))
		if err != nil {
			return fail(w, err)
		}
		return writeRecord(w, raw)
	})
}

func runAirportUniqueAirlines(ctx context.Context, w io.Writer, iata string) int {
	return withSession(w, func(s *session) int {
		raw, err := s.client.UniqueAirlines(ctx, tabs.NormalizeCode(iata))
		if err != nil {
			return fail(w, err)
		}
		return writeRecordList(w, raw)
	})
}

func runAirportCreate(ctx context.Context, w io.Writer, form tabs.AirportForm) int {
	return withSession(w, func(s *session) int {
		raw, err := s.client.CreateAirport(ctx, form.Payload())
		if err != nil {
			return fail(w, err)
		}
		return writeRecord(w, raw)
	})
}

func runAirportUpdate(ctx context.Context, w io.Writer, form tabs.AirportForm) int {
	return withSession(w, func(s *session) int {
		raw, err := s.client.UpdateAirport(ctx, form.Code(), form.Payload())
		if err != nil {
			return fail(w, err)
		}
		return writeRecord(w, raw)
	})
}

func runAirportDelete(ctx context.Context, w io.Writer, iata string) int {
	return withSession(w, func(s *session) int {
		code := tabs.NormalizeCode(iata)
		if err := s.client.DeleteAirport(ctx, code); err != nil {
			return fail(w, err)
		}
		fmt.Fprintf(w, "Deleted airport %s\n", code)
		return 0
	})
}
