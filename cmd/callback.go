// ABOUTME: Callback command: completes a sign-in from a redirect location
// ABOUTME: Handles a pasted location directly or listens for one browser redirect

package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsundip4/airport-ops-console/internal/auth"
	"github.com/tsundip4/airport-ops-console/internal/callback"
)

var (
	callbackLocation string
	callbackWait     time.Duration
)

var callbackCmd = &cobra.Command{
	Use:   "callback",
	Short: "Complete a sign-in from a redirect URL",
	Long: `Complete a sign-in from the URL the browser was redirected to.

With --location the URL is handled directly: a #token= fragment is stored
as is, a ?code= is exchanged with the API and an ?error= is reported.
Without it the command listens on AIRPORT_OPS_CALLBACK_ADDR for one
redirect.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runCallback(ctx, w, callbackLocation, callbackWait)
		})
	},
}

func init() {
	callbackCmd.Flags().StringVar(&callbackLocation, "location", "", "Redirect URL to handle")
	callbackCmd.Flags().DurationVar(&callbackWait, "wait", defaultGoogleWait, "How long to listen for a redirect")
	rootCmd.AddCommand(callbackCmd)
}

func runCallback(ctx context.Context, w io.Writer, location string, wait time.Duration) int {
	return withSession(w, func(s *session) int {
		var out auth.Outcome
		if location != "" {
			out = s.ctrl.HandleLocation(ctx, location)
			if out.Pending.Kind == auth.KindNone {
				fmt.Fprintln(w, "Error: location carries no code, error or token")
				return 2
			}
		} else {
			srv := callback.New(s.cfg.CallbackAddr, s.ctrl, s.log)
			if err := srv.Start(); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return 2
			}
			defer shutdown(srv)
			fmt.Fprintf(w, "Listening on %s ...\n", srv.URL())

			waitCtx, cancel := context.WithTimeout(ctx, wait)
			defer cancel()
			var err error
			if out, err = srv.Wait(waitCtx); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return 2
			}
		}

		if out.Err != nil {
			fmt.Fprintf(w, "Error: %s\n", s.ctrl.Message())
			return 2
		}
		fmt.Fprintln(w, s.ctrl.Message())
		return 0
	})
}
