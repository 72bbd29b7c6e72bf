// ABOUTME: Airline commands: list, get, create, update, delete
// ABOUTME: Mirrors the airport commands with airline fields

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tsundip4/airport-ops-console/internal/tabs"
)

var airlineFields tabs.AirlineForm

var airlinesCmd = &cobra.Command{
	Use:     "airlines",
	Aliases: []string{"airline"},
	Short:   "Manage airlines",
}

var airlinesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List airlines",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(runAirlinesList)
	},
}

var airlinesGetCmd = &cobra.Command{
	Use:   "get IATA",
	Short: "Show one airline",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runAirlineGet(ctx, w, args[0])
		})
	},
}

var airlinesCreateCmd = &cobra.Command{
	Use:   "create IATA",
	Short: "Create an airline",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			form := airlineFields
			form.IATA = args[0]
			return runAirlineCreate(ctx, w, form)
		})
	},
}

var airlinesUpdateCmd = &cobra.Command{
	Use:   "update IATA",
	Short: "Update an airline; only the given fields change",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			form := airlineFields
			form.IATA = args[0]
			return runAirlineUpdate(ctx, w, form)
		})
	},
}

var airlinesDeleteCmd = &cobra.Command{
	Use:   "delete IATA",
	Short: "Delete an airline",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runAirlineDelete(ctx, w, args[0])
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{airlinesCreateCmd, airlinesUpdateCmd} {
		c.Flags().StringVar(&airlineFields.ICAO, "icao", "", "ICAO code")
		c.Flags().StringVar(&airlineFields.Name, "name", "", "Airline name")
	}
	addPageFlags(airlinesListCmd)

	airlinesCmd.AddCommand(airlinesListCmd, airlinesGetCmd,
		airlinesCreateCmd, airlinesUpdateCmd, airlinesDeleteCmd)
	rootCmd.AddCommand(airlinesCmd)
}

// runAirlinesList loads one page through the airlines tab
func runAirlinesList(ctx context.Context, w io.Writer) int {
	return withSession(w, func(s *session) int {
		airlines := tabs.NewAirlines(s.client)
		airlines.SetPage(currentPage())
		if err := airlines.Load(ctx); err != nil {
			return fail(w, err)
		}
		return writeRows(w, airlines.Rows())
	})
}

func runAirlineGet(ctx context.Context, w io.Writer, iata string) int {
	return withSession(w, func(s *session) int {
		raw, err := s.client.GetAirline(ctx, tabs.NormalizeCode(iata))
		if err != nil {
			return fail(w, err)
		}
		return writeRecord(w, raw)
	})
}

func runAirlineCreate(ctx context.Context, w io.Writer, form tabs.AirlineForm) int {
	return withSession(w, func(s *session) int {
		raw, err := s.client.CreateAirline(ctx, form.Payload())
		if err != nil {
			return fail(w, err)
		}
		return writeRecord(w, raw)
	})
}

func runAirlineUpdate(ctx context.Context, w io.Writer, form tabs.AirlineForm) int {
	return withSession(w, func(s *session) int {
		raw, err := s.client.UpdateAirline(ctx, form.Code(), form.Payload())
		if err != nil {
			return fail(w, err)
		}
		return writeRecord(w, raw)
	})
}

func runAirlineDelete(ctx context.Context, w io.Writer, iata string) int {
	return withSession(w, func(s *session) int {
		code := tabs.NormalizeCode(iata)
		if err := s.client.DeleteAirline(ctx, code); err != nil {
			return fail(w, err)
		}
		fmt.Fprintf(w, "Deleted airline %s\n", code)
		return 0
	})
}
