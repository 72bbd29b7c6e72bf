// ABOUTME: Entry point for the airport-ops CLI
// ABOUTME: Operations console for the airport, airline and flight API

package main

import (
	"fmt"
	"os"

	"github.com/tsundip4/airport-ops-console/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
