// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

func detectNerdFonts() bool {
	if env := os.Getenv("AIRPORT_OPS_NERD_FONTS"); env != "" {
		return env == "1" || strings.ToLower(env) == "true"
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	for _, t := range []string{"iTerm.app", "alacritty", "WezTerm", "kitty", "ghostty"} {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}

	return os.Getenv("NERD_FONTS") == "1"
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

var (
	// Tabs
	Flight    = Icon{"󰀝", "✈"} // nf-md-airplane
	Airport   = Icon{"󰀞", "⌂"} // nf-md-airport
	Airline   = Icon{"󰀜", "◆"} // nf-md-airballoon
	Ingest    = Icon{"󰇚", "↓"} // nf-md-download
	Assistant = Icon{"󰚩", "◎"} // nf-md-robot

	// Session
	Locked   = Icon{"󰌾", "●"} // nf-md-lock
	Unlocked = Icon{"󰌿", "○"} // nf-md-lock_open
	Pending  = Icon{"󰔟", "…"} // nf-md-timer_sand

	// Status
	CheckOK  = Icon{"", "✓"} // nf-oct-check_circle
	Critical = Icon{"", "✗"} // nf-oct-x_circle

	App = Icon{"󰀝", "✈"}
)
