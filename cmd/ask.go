// ABOUTME: Ask command: one question to the flight assistant
// ABOUTME: Prints the answer and the model that produced it

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsundip4/airport-ops-console/internal/records"
	"github.com/tsundip4/airport-ops-console/internal/tabs"
)

var askCmd = &cobra.Command{
	Use:   "ask QUESTION...",
	Short: "Ask the flight assistant a question",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runAsk(ctx, w, strings.Join(args, " "))
		})
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(ctx context.Context, w io.Writer, question string) int {
	format, err := GetOutputFormat()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	return withSession(w, func(s *session) int {
		entry, err := tabs.NewTranscript(s.client).Ask(ctx, question)
		if err != nil {
			if errors.Is(err, tabs.ErrCannotSend) {
				fmt.Fprintln(w, "Error: question is empty")
				return 2
			}
			return fail(w, err)
		}

		if format != records.FormatTable {
			out := map[string]string{"question": strings.TrimSpace(question), "answer": entry.Text}
			if entry.Model != "" {
				out["model"] = entry.Model
			}
			data, _ := json.Marshal(out)
			return writeRaw(w, data)
		}

		fmt.Fprintln(w, entry.Text)
		if entry.Model != "" {
			fmt.Fprintf(w, "\nmodel: %s\n", entry.Model)
		}
		return 0
	})
}
