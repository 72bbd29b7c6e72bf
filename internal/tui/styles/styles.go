// ABOUTME: Shared lipgloss styles for the operations console
// ABOUTME: Defines colors, frame borders, tab labels and transcript styles

package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - Core palette
	Primary   = lipgloss.Color("#0EA5E9") // Sky
	Secondary = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Danger    = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray
	Text      = lipgloss.Color("#F9FAFB") // Light
	Accent    = lipgloss.Color("#38BDF8")
	Surface   = lipgloss.Color("#374151")

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted)

	// Status indicators
	StatusOK = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusCritical = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(Danger)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(0, 1)

	Help = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)

	// Tab bar
	TabActive = lipgloss.NewStyle().
			Foreground(Text).
			Background(Primary).
			Bold(true).
			Padding(0, 1)

	TabInactive = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1)

	// Transcript
	UserLabel = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	AssistantLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	KeyStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)
)
