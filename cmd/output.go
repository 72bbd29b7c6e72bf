// ABOUTME: Renders API results in the selected output format
// ABOUTME: Row sets go through the record renderer, single values as documents

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tsundip4/airport-ops-console/internal/records"
)

func writeRows(w io.Writer, rows []records.Row) int {
	format, err := GetOutputFormat()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if err := records.Write(w, rows, format); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	return 0
}

func writeRaw(w io.Writer, raw json.RawMessage) int {
	format, err := GetOutputFormat()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if err := records.WriteValue(w, raw, format); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	return 0
}

// writeRecordList decodes a list response (bare array or items envelope).
func writeRecordList(w io.Writer, raw json.RawMessage) int {
	rows, err := records.Decode(raw)
	if err != nil {
		return fail(w, err)
	}
	return writeRows(w, rows)
}

// writeRecord shows a single object as a one-row table, or as a document
// in json and yaml.
func writeRecord(w io.Writer, raw json.RawMessage) int {
	format, err := GetOutputFormat()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if format == records.FormatTable {
		if row, err := records.DecodeRow(raw); err == nil {
			return writeRows(w, []records.Row{row})
		}
	}
	return writeRaw(w, raw)
}
