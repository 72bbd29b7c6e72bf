// ABOUTME: Root bubbletea model for the operations console
// ABOUTME: Routes keys to the active tab, runs API calls as commands and frames the view

package tui

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/tsundip4/airport-ops-console/internal/auth"
	"github.com/tsundip4/airport-ops-console/internal/client"
	"github.com/tsundip4/airport-ops-console/internal/records"
	"github.com/tsundip4/airport-ops-console/internal/tabs"
	"github.com/tsundip4/airport-ops-console/internal/tui/styles"
)

// Tab identifies one console tab
type Tab int

const (
	TabFlights Tab = iota
	TabAirports
	TabAirlines
	TabIngest
	TabAssistant
)

var tabOrder = []Tab{TabFlights, TabAirports, TabAirlines, TabIngest, TabAssistant}

func (t Tab) String() string {
	switch t {
	case TabAirports:
		return "Airports"
	case TabAirlines:
		return "Airlines"
	case TabIngest:
		return "Ingest"
	case TabAssistant:
		return "Assistant"
	default:
		return "Flights"
	}
}

func (t Tab) next() Tab {
	return tabOrder[(int(t)+1)%len(tabOrder)]
}

func (t Tab) prev() Tab {
	return tabOrder[(int(t)+len(tabOrder)-1)%len(tabOrder)]
}

// Layout constants
const (
	minTerminalWidth = 80
	minTableHeight   = 5
	maxColumnWidth   = 40
	// header, tab bar, session line, summary, table header and rule,
	// error line, footer
	chromeHeight = 9
)

// listLoadedMsg is sent when a tab's list call returns
type listLoadedMsg struct {
	tab     Tab
	applied bool
	err     error
}

// mutationDoneMsg is sent when a create, update or delete finishes
type mutationDoneMsg struct {
	tab Tab
	err error
}

// authDoneMsg is sent when a password login finishes
type authDoneMsg struct {
	err error
}

// googleStartedMsg is sent once the consent URL has been opened
type googleStartedMsg struct {
	url string
	err error
}

// callbackMsg carries a redirect handled by the loopback listener
type callbackMsg struct {
	outcome auth.Outcome
	ok      bool
}

type ingestDoneMsg struct {
	err error
}

type askDoneMsg struct {
	err error
}

// Deps are the collaborators the console drives.
type Deps struct {
	Controller *auth.Controller
	Client     *client.Client
	// Callbacks delivers redirects from the loopback listener; nil when
	// no listener is running.
	Callbacks <-chan auth.Outcome
	Log       *zap.Logger
}

// App is the root model for the TUI
type App struct {
	ctx       context.Context
	ctrl      *auth.Controller
	callbacks <-chan auth.Outcome
	log       *zap.Logger
	apiURL    string

	airports *tabs.Entity[tabs.AirportForm]
	airlines *tabs.Entity[tabs.AirlineForm]
	flights  *tabs.Flights
	ingest   *tabs.Ingest
	chat     *tabs.Transcript

	active     Tab
	width      int
	height     int
	notice     string
	working    map[Tab]bool
	lastUpdate time.Time

	table   table.Model
	input   textarea.Model
	spinner spinner.Model

	form     *huh.Form
	formKind formKind
	draft    *draft
}

// New creates the console model. ctx bounds every API call it starts.
func New(ctx context.Context, d Deps) *App {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	in := textarea.New()
	in.Placeholder = "Ask about flights, gates, delays..."
	in.ShowLineNumbers = false
	in.CharLimit = 2000
	in.SetHeight(3)
	in.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))

	t := table.New(table.WithFocused(true), table.WithHeight(minTableHeight))
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(styles.Text).
		Background(styles.Surface).
		Bold(false)
	t.SetStyles(ts)

	var apiURL string
	if d.Client != nil {
		apiURL = d.Client.BaseURL()
	}

	return &App{
		ctx:       ctx,
		apiURL:    apiURL,
		ctrl:      d.Controller,
		callbacks: d.Callbacks,
		log:       log,
		airports:  tabs.NewAirports(d.Client),
		airlines:  tabs.NewAirlines(d.Client),
		flights:   tabs.NewFlights(d.Client),
		ingest:    tabs.NewIngest(d.Client),
		chat:      tabs.NewTranscript(d.Client),
		working:   make(map[Tab]bool),
		table:     t,
		input:     in,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary)),
		),
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.activate(TabFlights), a.waitForCallback())
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.SetWidth(a.frameWidth() - 4)
		a.table.SetHeight(a.tableHeight())
		if a.form != nil {
			return a.updateForm(msg)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.form != nil {
			return a.updateForm(msg)
		}
		return a.updateKeys(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case listLoadedMsg:
		if msg.err != nil {
			a.log.Debug("list load failed", zap.Stringer("tab", msg.tab), zap.Error(msg.err))
		}
		if msg.applied && msg.err == nil {
			a.lastUpdate = time.Now()
		}
		if msg.tab == a.active {
			a.syncTable()
		}
		return a, nil

	case mutationDoneMsg:
		delete(a.working, msg.tab)
		if msg.err == nil {
			a.lastUpdate = time.Now()
		}
		if msg.tab == a.active {
			a.syncTable()
		}
		return a, nil

	case authDoneMsg:
		if msg.err != nil {
			return a, nil
		}
		return a, a.load(a.active)

	case googleStartedMsg:
		switch {
		case msg.err != nil && msg.url != "":
			a.notice = "Open this URL to continue: " + msg.url
		case msg.err != nil:
			a.notice = ""
		case a.callbacks == nil:
			a.notice = "No callback listener is running; finish with `airport-ops callback`"
		default:
			a.notice = "Waiting for Google sign-in to return..."
		}
		return a, nil

	case callbackMsg:
		if !msg.ok {
			a.callbacks = nil
			return a, nil
		}
		a.notice = ""
		cmds := []tea.Cmd{a.waitForCallback()}
		if msg.outcome.Err == nil && msg.outcome.Pending.Kind != auth.KindNone {
			cmds = append(cmds, a.load(a.active))
		}
		return a, tea.Batch(cmds...)

	case ingestDoneMsg:
		delete(a.working, TabIngest)
		if msg.err == nil {
			a.lastUpdate = time.Now()
		}
		return a, nil

	case askDoneMsg:
		return a, nil
	}

	if a.form != nil {
		return a.updateForm(msg)
	}
	if a.active == TabAssistant {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		return a, a.activate(a.active.next())
	case "shift+tab":
		return a, a.activate(a.active.prev())
	}

	if a.active == TabAssistant {
		return a.updateAssistant(msg)
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "1", "2", "3", "4", "5":
		n, _ := strconv.Atoi(msg.String())
		return a, a.activate(tabOrder[n-1])
	case "l":
		return a, a.startLogin()
	case "o":
		a.ctrl.Logout()
		a.notice = ""
		return a, nil
	case "r":
		return a, a.load(a.active)
	}

	switch a.active {
	case TabAirports, TabAirlines:
		if cmd, ok := a.entityKey(msg.String()); ok {
			return a, cmd
		}
	case TabFlights:
		if msg.String() == "f" {
			f := a.flights.Filter()
			d := &draft{
				dep: f.DepIATA, arr: f.ArrIATA, date: f.FlightDate, status: f.Status,
				limit: strconv.Itoa(f.Limit), offset: strconv.Itoa(f.Offset),
			}
			return a, a.openForm(formFilter, d, filterForm(d))
		}
	case TabIngest:
		if msg.String() == "i" || msg.String() == "enter" {
			if a.ingest.Loading() {
				return a, nil
			}
			d := &draft{direction: string(client.Departures), limit: strconv.Itoa(tabs.DefaultIngestLimit)}
			return a, a.openForm(formIngest, d, ingestForm(d))
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return a, cmd
}

// entityKey handles the create, update, delete and page keys of the
// airports and airlines tabs.
func (a *App) entityKey(k string) (tea.Cmd, bool) {
	airports := a.active == TabAirports
	d := &draft{}

	switch k {
	case "c":
		if airports {
			return a.openForm(formCreate, d, airportForm(d, false)), true
		}
		return a.openForm(formCreate, d, airlineForm(d, false)), true
	case "u":
		if row, ok := a.selectedRow(); ok {
			d.fillFromRow(row, a.active)
		}
		if airports {
			return a.openForm(formUpdate, d, airportForm(d, true)), true
		}
		return a.openForm(formUpdate, d, airlineForm(d, true)), true
	case "d":
		if row, ok := a.selectedRow(); ok {
			d.fillFromRow(row, a.active)
		}
		noun := "airline"
		if airports {
			noun = "airport"
		}
		return a.openForm(formDelete, d, deleteForm(d, noun)), true
	case "p":
		page := a.airlines.Page()
		if airports {
			page = a.airports.Page()
		}
		d.limit = strconv.Itoa(page.Limit)
		d.offset = strconv.Itoa(page.Offset)
		return a.openForm(formPage, d, pageForm(d)), true
	}
	return nil, false
}

func (a *App) updateAssistant(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		ex, ok := a.chat.Submit(a.input.Value())
		if !ok {
			return a, nil
		}
		a.input.Reset()
		return a, a.await(ex)
	case "ctrl+l":
		if a.chat.Clear() {
			a.notice = ""
		} else {
			a.notice = "Wait for the reply before clearing"
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		a.closeForm()
		return a, nil
	}

	model, cmd := a.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		kind, d := a.formKind, a.draft
		a.closeForm()
		return a, a.submit(kind, d)
	case huh.StateAborted:
		a.closeForm()
		return a, nil
	}
	return a, cmd
}

func (a *App) openForm(kind formKind, d *draft, f *huh.Form) tea.Cmd {
	a.form, a.formKind, a.draft = f, kind, d
	if a.width > 0 {
		a.form = a.form.WithWidth(a.frameWidth() - 4)
	}
	return a.form.Init()
}

func (a *App) closeForm() {
	a.form, a.formKind, a.draft = nil, formNone, nil
}

// submit acts on a completed form.
func (a *App) submit(kind formKind, d *draft) tea.Cmd {
	switch kind {
	case formLoginMethod:
		if d.method == methodGoogle {
			return a.beginGoogle()
		}
		return a.openForm(formLogin, d, loginForm(d))
	case formLogin:
		email, password := d.email, d.password
		d.password = ""
		return a.passwordLogin(email, password)
	case formCreate, formUpdate:
		return a.mutate(a.active, kind, d)
	case formDelete:
		if !d.confirm {
			return nil
		}
		return a.mutate(a.active, kind, d)
	case formPage:
		if a.active == TabAirports {
			a.airports.SetPage(d.page())
		} else {
			a.airlines.SetPage(d.page())
		}
		return a.load(a.active)
	case formFilter:
		a.flights.SetFilter(d.filter())
		return a.load(TabFlights)
	case formIngest:
		return a.runIngest(client.Direction(d.direction), d.iata, d.ingestLimit())
	}
	return nil
}

// activate switches tabs. List tabs reload every time they are shown.
func (a *App) activate(t Tab) tea.Cmd {
	a.active = t
	a.input.Blur()

	switch t {
	case TabAssistant:
		return a.input.Focus()
	case TabIngest:
		return nil
	default:
		a.syncTable()
		return a.load(t)
	}
}

func (a *App) list(t Tab) *tabs.List {
	switch t {
	case TabFlights:
		return a.flights.List
	case TabAirports:
		return a.airports.List
	case TabAirlines:
		return a.airlines.List
	}
	return nil
}

// load starts a list call for t. The ticket is taken here so the newest
// request always wins over slower earlier ones.
func (a *App) load(t Tab) tea.Cmd {
	list := a.list(t)
	if list == nil {
		return nil
	}
	ticket := list.Begin()
	ctx := a.ctx
	return func() tea.Msg {
		raw, err := list.Fetch(ctx)
		applied := list.Finish(ticket, raw, err)
		return listLoadedMsg{tab: t, applied: applied, err: err}
	}
}

func runEntity[F any](ctx context.Context, e *tabs.Entity[F], kind formKind, form F, iata string) error {
	switch kind {
	case formCreate:
		return e.Create(ctx, form)
	case formUpdate:
		return e.Update(ctx, form)
	case formDelete:
		return e.Delete(ctx, iata)
	}
	return nil
}

func (a *App) mutate(t Tab, kind formKind, d *draft) tea.Cmd {
	a.working[t] = true
	ctx := a.ctx
	return func() tea.Msg {
		var err error
		if t == TabAirports {
			err = runEntity(ctx, a.airports, kind, d.airport(), d.iata)
		} else {
			err = runEntity(ctx, a.airlines, kind, d.airline(), d.iata)
		}
		return mutationDoneMsg{tab: t, err: err}
	}
}

func (a *App) startLogin() tea.Cmd {
	if a.ctrl.Status() == auth.Authenticating {
		a.notice = "A sign-in is already in progress"
		return nil
	}
	d := &draft{method: methodPassword}
	return a.openForm(formLoginMethod, d, loginMethodForm(d))
}

func (a *App) passwordLogin(email, password string) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return authDoneMsg{err: a.ctrl.PasswordLogin(ctx, email, password)}
	}
}

func (a *App) beginGoogle() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		url, err := a.ctrl.BeginGoogle(ctx)
		return googleStartedMsg{url: url, err: err}
	}
}

func (a *App) waitForCallback() tea.Cmd {
	ch := a.callbacks
	if ch == nil {
		return nil
	}
	ctx := a.ctx
	return func() tea.Msg {
		select {
		case o, ok := <-ch:
			return callbackMsg{outcome: o, ok: ok}
		case <-ctx.Done():
			return nil
		}
	}
}

func (a *App) runIngest(dir client.Direction, iata string, limit int) tea.Cmd {
	a.working[TabIngest] = true
	ctx := a.ctx
	return func() tea.Msg {
		_, err := a.ingest.Run(ctx, dir, iata, limit)
		return ingestDoneMsg{err: err}
	}
}

func (a *App) await(ex tabs.Exchange) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return askDoneMsg{err: a.chat.Await(ctx, ex)}
	}
}

func (a *App) selectedRow() (records.Row, bool) {
	list := a.list(a.active)
	if list == nil {
		return records.Row{}, false
	}
	rows := list.Rows()
	i := a.table.Cursor()
	if i < 0 || i >= len(rows) {
		return records.Row{}, false
	}
	return rows[i], true
}

// Run starts the TUI
func Run(ctx context.Context, d Deps) error {
	app := New(ctx, d)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
