// ABOUTME: huh forms for login, entity edits, flight filters and ingestion
// ABOUTME: A draft holds the bound field values until the form completes

package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/tsundip4/airport-ops-console/internal/client"
	"github.com/tsundip4/airport-ops-console/internal/records"
	"github.com/tsundip4/airport-ops-console/internal/tabs"
)

type formKind int

const (
	formNone formKind = iota
	formLoginMethod
	formLogin
	formCreate
	formUpdate
	formDelete
	formPage
	formFilter
	formIngest
)

const (
	methodPassword = "password"
	methodGoogle   = "google"
)

// draft is the value set every form binds to.
type draft struct {
	method   string
	email    string
	password string

	iata     string
	name     string
	icao     string
	timezone string
	confirm  bool

	limit  string
	offset string

	dep    string
	arr    string
	date   string
	status string

	direction string
}

func formTheme() *huh.Theme {
	return huh.ThemeBase()
}

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

func validateCount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return errors.New("enter a whole number")
	}
	return nil
}

func validateDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func loginMethodForm(d *draft) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sign in").
				Description("Use ↑/↓ to select, Enter to confirm").
				Options(
					huh.NewOption("Email and password", methodPassword),
					huh.NewOption("Google", methodGoogle),
				).
				Value(&d.method),
		),
	).WithTheme(formTheme())
}

func loginForm(d *draft) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&d.email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&d.password).
				Validate(required("password")),
		).Title("Log in"),
	).WithTheme(formTheme())
}

func airportForm(d *draft, update bool) *huh.Form {
	title := "New airport"
	if update {
		title = "Update airport"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("IATA").
				CharLimit(3).
				Value(&d.iata).
				Validate(required("IATA code")),
			huh.NewInput().Title("Name").Value(&d.name),
			huh.NewInput().Title("ICAO").CharLimit(4).Value(&d.icao),
			huh.NewInput().Title("Timezone").Placeholder("America/New_York").Value(&d.timezone),
		).Title(title).
			Description("Blank optional fields are left out"),
	).WithTheme(formTheme())
}

func airlineForm(d *draft, update bool) *huh.Form {
	title := "New airline"
	if update {
		title = "Update airline"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("IATA").
				CharLimit(2).
				Value(&d.iata).
				Validate(required("IATA code")),
			huh.NewInput().Title("ICAO").CharLimit(3).Value(&d.icao),
			huh.NewInput().Title("Name").Value(&d.name),
		).Title(title).
			Description("Blank optional fields are left out"),
	).WithTheme(formTheme())
}

func deleteForm(d *draft, noun string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("IATA").
				Value(&d.iata).
				Validate(required("IATA code")),
			huh.NewConfirm().
				Title("Delete this " + noun + "?").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&d.confirm),
		).Title("Delete " + noun),
	).WithTheme(formTheme())
}

func pageForm(d *draft) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Limit").Value(&d.limit).Validate(validateCount),
			huh.NewInput().Title("Offset").Value(&d.offset).Validate(validateCount),
		).Title("Page"),
	).WithTheme(formTheme())
}

func filterForm(d *draft) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Departure IATA").CharLimit(3).Value(&d.dep),
			huh.NewInput().Title("Arrival IATA").CharLimit(3).Value(&d.arr),
			huh.NewInput().Title("Flight date").Placeholder("YYYY-MM-DD").Value(&d.date).Validate(validateDate),
			huh.NewInput().Title("Status").Placeholder("scheduled, active, landed...").Value(&d.status),
			huh.NewInput().Title("Limit").Value(&d.limit).Validate(validateCount),
			huh.NewInput().Title("Offset").Value(&d.offset).Validate(validateCount),
		).Title("Filter flights").
			Description("Blank filters are ignored"),
	).WithTheme(formTheme())
}

func ingestForm(d *draft) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Direction").
				Options(
					huh.NewOption("Departures", string(client.Departures)),
					huh.NewOption("Arrivals", string(client.Arrivals)),
				).
				Value(&d.direction),
			huh.NewInput().
				Title("Airport IATA").
				CharLimit(3).
				Value(&d.iata).
				Validate(required("airport IATA")),
			huh.NewInput().Title("Limit").Value(&d.limit).Validate(validateCount),
		).Title("Ingest flights").
			Description("Runs can take a few minutes"),
	).WithTheme(formTheme())
}

func atoi(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

func (d *draft) airport() tabs.AirportForm {
	return tabs.AirportForm{IATA: d.iata, Name: d.name, ICAO: d.icao, Timezone: d.timezone}
}

func (d *draft) airline() tabs.AirlineForm {
	return tabs.AirlineForm{IATA: d.iata, ICAO: d.icao, Name: d.name}
}

func (d *draft) page() client.Page {
	return client.Page{
		Limit:  atoi(d.limit, client.DefaultPage.Limit),
		Offset: atoi(d.offset, 0),
	}
}

func (d *draft) filter() client.FlightFilter {
	def := client.DefaultFlightFilter()
	return client.FlightFilter{
		DepIATA:    d.dep,
		ArrIATA:    d.arr,
		FlightDate: strings.TrimSpace(d.date),
		Status:     strings.TrimSpace(d.status),
		Limit:      atoi(d.limit, def.Limit),
		Offset:     atoi(d.offset, 0),
	}
}

func (d *draft) ingestLimit() int {
	return atoi(d.limit, tabs.DefaultIngestLimit)
}

// fillFromRow prefills an update form from the highlighted row.
func (d *draft) fillFromRow(row records.Row, t Tab) {
	switch t {
	case TabAirports:
		d.iata = row.Cell("airport_iata")
		d.name = row.Cell("airport_name")
		d.icao = row.Cell("icao")
		d.timezone = row.Cell("timezone")
	case TabAirlines:
		d.iata = row.Cell("airline_iata")
		d.icao = row.Cell("airline_icao")
		d.name = row.Cell("airline_name")
	}
}
