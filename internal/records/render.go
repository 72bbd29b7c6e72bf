// ABOUTME: Renders record sets as aligned tables, JSON or YAML
// ABOUTME: Used by CLI commands for --output handling

package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates an --output value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
}

// NoRows is shown for an empty table.
const NoRows = "No rows"

// maxCellWidth caps column width in tables.
const maxCellWidth = 40

// Write renders rows to w in format.
func Write(w io.Writer, rows []Row, format Format) error {
	switch format {
	case FormatJSON:
		if rows == nil {
			rows = []Row{}
		}
		return writeJSON(w, rows)
	case FormatYAML:
		if rows == nil {
			rows = []Row{}
		}
		return writeYAML(w, rows)
	default:
		_, err := io.WriteString(w, Table(rows, lipgloss.NewRenderer(w))+"\n")
		return err
	}
}

// WriteValue renders any JSON document (ingest results, single records)
// in format. Tables fall back to indented JSON.
func WriteValue(w io.Writer, raw json.RawMessage, format Format) error {
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	if format == FormatYAML {
		if row, err := DecodeRow(raw); err == nil {
			return writeYAML(w, row)
		}
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		return writeYAML(w, v)
	}
	return writeJSON(w, raw)
}

// Table lays rows out in aligned columns with a styled header.
func Table(rows []Row, r *lipgloss.Renderer) string {
	cols := Columns(rows)
	if len(cols) == 0 {
		return NoRows
	}

	widths := make([]int, len(cols))
	cells := make([][]string, len(rows))
	for i, c := range cols {
		widths[i] = lipgloss.Width(c)
	}
	for ri, row := range rows {
		cells[ri] = make([]string, len(cols))
		for ci, c := range cols {
			text := clip(row.Cell(c), maxCellWidth)
			cells[ri][ci] = text
			if w := lipgloss.Width(text); w > widths[ci] {
				widths[ci] = w
			}
		}
	}

	header := r.NewStyle().Bold(true)
	lines := make([]string, 0, len(cells)+1)

	var b strings.Builder
	for ci, c := range cols {
		if ci > 0 {
			b.WriteString("  ")
		}
		b.WriteString(header.Render(pad(c, widths[ci])))
	}
	lines = append(lines, strings.TrimRight(b.String(), " "))

	for _, line := range cells {
		b.Reset()
		for ci, text := range line {
			if ci > 0 {
				b.WriteString("  ")
			}
			b.WriteString(pad(text, widths[ci]))
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return strings.Join(lines, "\n")
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func clip(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
