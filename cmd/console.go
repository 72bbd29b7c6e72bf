// ABOUTME: Console command: launches the interactive operations console
// ABOUTME: Logs to debug.log and keeps a loopback listener open for Google sign-in

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsundip4/airport-ops-console/internal/auth"
	"github.com/tsundip4/airport-ops-console/internal/callback"
	"github.com/tsundip4/airport-ops-console/internal/logger"
	"github.com/tsundip4/airport-ops-console/internal/tui"
)

var consoleCmd = &cobra.Command{
	Use:     "console",
	Aliases: []string{"ui"},
	Short:   "Open the interactive console",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(runConsole)
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(ctx context.Context, w io.Writer) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	log, closeLog, err := logger.NewFile(cfg.ConfigDir, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer closeLog()

	s, err := newSession(cfg, log)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer s.Close()

	var results <-chan auth.Outcome
	srv := callback.New(cfg.CallbackAddr, s.ctrl, log)
	if err := srv.Start(); err != nil {
		log.Warn("google sign-in listener unavailable", zap.Error(err))
	} else {
		defer shutdown(srv)
		results = srv.Results()
	}

	err = tui.Run(ctx, tui.Deps{
		Controller: s.ctrl,
		Client:     s.client,
		Callbacks:  results,
		Log:        log,
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	return 0
}
