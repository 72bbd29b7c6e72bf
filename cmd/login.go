// ABOUTME: Login and logout commands for password and Google sign-in
// ABOUTME: Google sign-in waits on the loopback listener for the browser redirect

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tsundip4/airport-ops-console/internal/callback"
)

const defaultGoogleWait = 5 * time.Minute

type loginOptions struct {
	email    string
	password string
	google   bool
	wait     time.Duration
}

var loginOpts = loginOptions{wait: defaultGoogleWait}

// promptCredentials asks for whatever the flags left out; tests replace it.
var promptCredentials = func(email, password *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(password),
		).Title("Log in to the operations API"),
	).WithTheme(huh.ThemeBase()).Run()
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password or with Google",
	Long: `Sign in to the operations API. The credential is stored in the
configured credential store and sent with every later command.

With --google the consent page opens in the browser and the command waits
for the redirect on the loopback listener (AIRPORT_OPS_CALLBACK_ADDR).`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runLogin(ctx, w, loginOpts)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored credential",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(runLogout)
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginOpts.email, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginOpts.password, "password", "", "Account password (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginOpts.google, "google", false, "Sign in with Google in the browser")
	loginCmd.Flags().DurationVar(&loginOpts.wait, "wait", defaultGoogleWait, "How long to wait for the Google redirect")
	rootCmd.AddCommand(loginCmd, logoutCmd)
}

func runLogin(ctx context.Context, w io.Writer, opts loginOptions) int {
	if opts.google {
		return runGoogleLogin(ctx, w, opts.wait)
	}

	if strings.TrimSpace(opts.email) == "" || opts.password == "" {
		if err := promptCredentials(&opts.email, &opts.password); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	}

	return withSession(w, func(s *session) int {
		if err := s.ctrl.PasswordLogin(ctx, strings.TrimSpace(opts.email), opts.password); err != nil {
			fmt.Fprintf(w, "Error: %s\n", s.ctrl.Message())
			return 2
		}
		fmt.Fprintln(w, s.ctrl.Message())
		return 0
	})
}

func runGoogleLogin(ctx context.Context, w io.Writer, wait time.Duration) int {
	return withSession(w, func(s *session) int {
		srv := callback.New(s.cfg.CallbackAddr, s.ctrl, s.log)
		if err := srv.Start(); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		defer shutdown(srv)

		authURL, err := s.ctrl.BeginGoogle(ctx)
		switch {
		case err != nil && authURL == "":
			fmt.Fprintf(w, "Error: %s\n", s.ctrl.Message())
			return 2
		case err != nil:
			fmt.Fprintf(w, "Could not open a browser. Open this URL to continue:\n  %s\n", authURL)
		default:
			fmt.Fprintln(w, s.ctrl.Message())
		}
		fmt.Fprintf(w, "Waiting for the redirect on %s ...\n", srv.URL())

		waitCtx, cancel := context.WithTimeout(ctx, wait)
		defer cancel()

		out, err := srv.Wait(waitCtx)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		if out.Err != nil {
			fmt.Fprintf(w, "Error: %s\n", s.ctrl.Message())
			return 2
		}
		fmt.Fprintln(w, s.ctrl.Message())
		return 0
	})
}

func runLogout(ctx context.Context, w io.Writer) int {
	return withSession(w, func(s *session) int {
		s.ctrl.Logout()
		fmt.Fprintln(w, s.ctrl.Message())
		return 0
	})
}

func shutdown(srv *callback.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}
