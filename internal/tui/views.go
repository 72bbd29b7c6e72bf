// ABOUTME: Rendering for the console frame, tab bar and each tab's content
// ABOUTME: Rebuilds the table from tab rows and renders every frame from tab state

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/tsundip4/airport-ops-console/internal/auth"
	"github.com/tsundip4/airport-ops-console/internal/records"
	"github.com/tsundip4/airport-ops-console/internal/tabs"
	"github.com/tsundip4/airport-ops-console/internal/tui/icons"
	"github.com/tsundip4/airport-ops-console/internal/tui/styles"
)

// View implements tea.Model
func (a *App) View() string {
	var content string

	if a.form != nil {
		content = a.form.View()
	} else {
		switch a.active {
		case TabIngest:
			content = a.viewIngest()
		case TabAssistant:
			content = a.viewAssistant()
		default:
			content = a.viewList()
		}
	}

	return a.wrapWithFrame(content)
}

func (t Tab) icon() icons.Icon {
	switch t {
	case TabAirports:
		return icons.Airport
	case TabAirlines:
		return icons.Airline
	case TabIngest:
		return icons.Ingest
	case TabAssistant:
		return icons.Assistant
	default:
		return icons.Flight
	}
}

// frameWidth is the terminal width minus one column, clamped to the
// minimum usable width
func (a *App) frameWidth() int {
	w := a.width - 1
	if w < minTerminalWidth {
		w = minTerminalWidth
	}
	return w
}

func (a *App) tableHeight() int {
	h := a.height - chromeHeight
	if h < minTableHeight {
		h = minTableHeight
	}
	return h
}

// syncTable rebuilds the table from the active tab's rows. Columns follow
// the key order of the first row.
func (a *App) syncTable() {
	list := a.list(a.active)
	if list == nil {
		return
	}

	rows := list.Rows()
	keys := records.Columns(rows)

	cols := make([]table.Column, len(keys))
	for i, k := range keys {
		w := lipgloss.Width(k)
		for _, r := range rows {
			if cw := lipgloss.Width(cellText(r, k)); cw > w {
				w = cw
			}
		}
		if w > maxColumnWidth {
			w = maxColumnWidth
		}
		cols[i] = table.Column{Title: k, Width: w}
	}

	trs := make([]table.Row, len(rows))
	for i, r := range rows {
		cells := make(table.Row, len(keys))
		for j, k := range keys {
			cells[j] = cellText(r, k)
		}
		trs[i] = cells
	}

	// Rows must never have more cells than there are columns.
	a.table.SetRows(nil)
	a.table.SetColumns(cols)
	a.table.SetRows(trs)
	a.table.SetHeight(a.tableHeight())
	if len(trs) > 0 && a.table.Cursor() >= len(trs) {
		a.table.SetCursor(len(trs) - 1)
	}
}

func cellText(r records.Row, key string) string {
	return strings.ReplaceAll(r.Cell(key), "\n", " ")
}

func (a *App) viewList() string {
	list := a.list(a.active)

	var sb strings.Builder
	sb.WriteString(styles.Subtitle.Render(a.listSummary()))
	sb.WriteString("\n")

	if list.Loading() || a.working[a.active] {
		sb.WriteString(a.spinner.View() + " Loading...")
	}
	sb.WriteString("\n")

	if len(list.Rows()) == 0 {
		sb.WriteString(styles.Subtitle.Render(records.NoRows))
	} else {
		sb.WriteString(a.table.View())
	}

	if msg := list.ErrMessage(); msg != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.ErrorText.Render(msg))
	}
	return sb.String()
}

// listSummary describes the filter or page behind the current rows.
func (a *App) listSummary() string {
	switch a.active {
	case TabFlights:
		f := a.flights.Filter()
		var parts []string
		for _, p := range [][2]string{
			{"dep", f.DepIATA}, {"arr", f.ArrIATA}, {"date", f.FlightDate}, {"status", f.Status},
		} {
			if p[1] != "" {
				parts = append(parts, p[0]+"="+p[1])
			}
		}
		parts = append(parts, fmt.Sprintf("limit=%d offset=%d", f.Limit, f.Offset))
		return fmt.Sprintf("%d flights  %s", len(a.flights.Rows()), strings.Join(parts, " "))
	case TabAirports:
		p := a.airports.Page()
		return fmt.Sprintf("%d airports  limit=%d offset=%d", len(a.airports.Rows()), p.Limit, p.Offset)
	case TabAirlines:
		p := a.airlines.Page()
		return fmt.Sprintf("%d airlines  limit=%d offset=%d", len(a.airlines.Rows()), p.Limit, p.Offset)
	}
	return ""
}

func (a *App) viewIngest() string {
	var sb strings.Builder
	sb.WriteString(styles.Subtitle.Render("Pull fresh departures or arrivals for one airport from the flight data provider."))
	sb.WriteString("\n\n")

	if a.ingest.Loading() || a.working[TabIngest] {
		sb.WriteString(a.spinner.View() + " Ingesting...\n")
	}
	if msg := a.ingest.ErrMessage(); msg != "" {
		sb.WriteString(styles.ErrorText.Render(msg) + "\n")
	}
	if out := a.ingest.Pretty(); out != "" {
		sb.WriteString(styles.Panel.Render(out))
	}
	return sb.String()
}

func (a *App) viewAssistant() string {
	var sb strings.Builder

	for _, e := range a.chat.Entries() {
		label := styles.AssistantLabel.Render("assistant")
		if e.Role == tabs.RoleUser {
			label = styles.UserLabel.Render("you")
		}

		line := label + "  " + e.Text
		switch e.State {
		case tabs.Pending:
			line += " " + a.spinner.View()
		case tabs.Failed:
			line += " " + styles.StatusCritical.Render(icons.Critical.String())
		}
		if e.Model != "" {
			line += "  " + styles.Subtitle.Render("("+e.Model+")")
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if msg := a.chat.ErrMessage(); msg != "" {
		sb.WriteString(styles.ErrorText.Render(msg))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(a.input.View())
	return sb.String()
}

func (a *App) renderTabs() string {
	var parts []string
	for i, t := range tabOrder {
		label := fmt.Sprintf("%d %s %s", i+1, t.icon(), t)
		if t == a.active {
			parts = append(parts, styles.TabActive.Render(label))
		} else {
			parts = append(parts, styles.TabInactive.Render(label))
		}
	}
	return " " + strings.Join(parts, " ")
}

// renderSession shows the derived auth state and the last status line.
func (a *App) renderSession() string {
	status := a.ctrl.Status()

	var badge string
	switch status {
	case auth.Authenticated:
		badge = styles.StatusOK.Render(icons.Locked.String() + " " + status.String())
	case auth.Authenticating:
		badge = styles.StatusWarning.Render(icons.Pending.String()+" "+status.String()) + " " + a.spinner.View()
	case auth.Failed:
		badge = styles.StatusCritical.Render(icons.Critical.String() + " " + status.String())
	default:
		badge = styles.Subtitle.Render(icons.Unlocked.String() + " " + status.String())
	}

	line := " " + badge
	if msg := a.ctrl.Message(); msg != "" {
		line += "  " + msg
	}
	if a.notice != "" {
		line += "\n " + styles.StatusWarning.Render(a.notice)
	}
	return line
}

func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftRendered := fmt.Sprintf(" %s %s ", icons.App, titleStyle.Render("Airport Ops"))
	rightRendered := " " + contextStyle.Render(a.apiURL) + " "

	fillWidth := width - 4 - lipgloss.Width(leftRendered) - lipgloss.Width(rightRendered) // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╭─" + leftRendered + strings.Repeat("─", fillWidth) + rightRendered + "─╮")
}

func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	shortcuts := a.shortcuts()

	var styled []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styled = append(styled, s)
		}
	}

	leftText := " " + strings.Join(styled, "  ") + " "
	leftPlain := " " + strings.Join(shortcuts, "  ") + " "

	rightText, rightPlain := "", ""
	if !a.lastUpdate.IsZero() && a.form == nil {
		elapsed := formatTimeSince(a.lastUpdate)
		rightText = " " + statusStyle.Render("Updated "+elapsed) + " "
		rightPlain = " Updated " + elapsed + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftPlain) - lipgloss.Width(rightPlain) // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯")
}

func (a *App) shortcuts() []string {
	if a.form != nil {
		return []string{"Enter Confirm", "Esc Cancel"}
	}

	switch a.active {
	case TabAirports, TabAirlines:
		return []string{"c New", "u Edit", "d Delete", "p Page", "r Reload", "l Login", "q Quit"}
	case TabFlights:
		return []string{"↑↓ Move", "f Filter", "r Reload", "l Login", "o Logout", "q Quit"}
	case TabIngest:
		return []string{"i Run", "Tab Next", "l Login", "q Quit"}
	case TabAssistant:
		return []string{"Enter Send", "Alt+Enter Newline", "Ctrl+L Clear", "Tab Next"}
	}
	return nil
}

// formatTimeSince formats a duration since the given time in human-readable form
func formatTimeSince(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

// wrapWithFrame wraps content with header, tab bar, session line and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(a.renderTabs())
	sb.WriteString("\n")
	sb.WriteString(a.renderSession())
	sb.WriteString("\n\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}
