// ABOUTME: Tests for the console model
// ABOUTME: Drives Update with messages and runs commands against a fake API

package tui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsundip4/airport-ops-console/internal/auth"
	"github.com/tsundip4/airport-ops-console/internal/client"
	"github.com/tsundip4/airport-ops-console/internal/credential"
	"github.com/tsundip4/airport-ops-console/internal/tabs"
)

type fakeAPI struct {
	mu       sync.Mutex
	bodies   map[string]string
	queries  map[string]string
	requests map[string]int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests[r.Method+" "+r.URL.Path]++
	f.bodies[r.Method+" "+r.URL.Path] = string(body)
	f.queries[r.URL.Path] = r.URL.RawQuery
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.Method + " " + r.URL.Path {
	case "GET /flights":
		w.Write([]byte(`[{"flight_iata":"AA100","dep_iata":"JFK","arr_iata":"LAX"},{"flight_iata":"DL200","dep_iata":"JFK","arr_iata":"ATL"}]`))
	case "GET /airports":
		w.Write([]byte(`{"items":[{"airport_iata":"JFK","airport_name":"JFK Intl","icao":"KJFK","timezone":"America/New_York"}]}`))
	case "POST /airports":
		w.WriteHeader(http.StatusCreated)
		w.Write(body)
	case "POST /auth/login":
		w.Write([]byte(`{"access_token":"T1","token_type":"bearer"}`))
	case "POST /ingest/flights":
		w.Write([]byte(`{"ingest_id":7,"raw_inserted":12}`))
	case "POST /ai/ask":
		w.Write([]byte(`{"answer":"Two delays at JFK.","model":"gpt-4o-mini"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Not Found"}`))
	}
}

func (f *fakeAPI) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[key]
}

func (f *fakeAPI) body(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func (f *fakeAPI) query(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[path]
}

func newTestApp(t *testing.T) (*App, *fakeAPI, *credential.Store) {
	t.Helper()

	api := &fakeAPI{bodies: map[string]string{}, queries: map[string]string{}, requests: map[string]int{}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	store, err := credential.Open(credential.NewMemoryBackend())
	require.NoError(t, err)

	c := client.New(srv.URL, client.WithTokenSource(store))
	ctrl := auth.NewController(store, c, auth.NavigatorFunc(func(string) error { return nil }), nil)

	return New(context.Background(), Deps{Controller: ctrl, Client: c}), api, store
}

func update(t *testing.T, a *App, msg tea.Msg) tea.Cmd {
	t.Helper()
	model, cmd := a.Update(msg)
	require.Same(t, a, model)
	return cmd
}

func TestAppInitialState(t *testing.T) {
	a, _, _ := newTestApp(t)

	assert.Equal(t, TabFlights, a.active)
	assert.Nil(t, a.form)
	assert.Equal(t, tabs.Greeting, a.chat.Entries()[0].Text)
}

func TestTabCycle(t *testing.T) {
	assert.Equal(t, TabAirports, TabFlights.next())
	assert.Equal(t, TabFlights, TabAssistant.next())
	assert.Equal(t, TabAssistant, TabFlights.prev())
	assert.Equal(t, "Ingest", TabIngest.String())
}

func TestLoadFillsTable(t *testing.T) {
	a, _, _ := newTestApp(t)

	cmd := a.load(TabFlights)
	assert.True(t, a.flights.Loading())

	msg := cmd()
	update(t, a, msg)

	assert.False(t, a.flights.Loading())
	require.Len(t, a.table.Rows(), 2)
	assert.Equal(t, "AA100", a.table.Rows()[0][0])
	assert.Equal(t, "flight_iata", a.table.Columns()[0].Title)
	assert.False(t, a.lastUpdate.IsZero())
}

func TestOverlappingLoadsKeepNewest(t *testing.T) {
	a, _, _ := newTestApp(t)

	first := a.load(TabFlights)
	second := a.load(TabFlights)

	newest := second().(listLoadedMsg)
	stale := first().(listLoadedMsg)

	assert.True(t, newest.applied)
	assert.False(t, stale.applied)
}

func TestNumberKeysSwitchTabsAndLoad(t *testing.T) {
	a, api, _ := newTestApp(t)

	cmd := update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	require.NotNil(t, cmd)
	assert.Equal(t, TabAirports, a.active)

	update(t, a, cmd())
	assert.Equal(t, 1, api.count("GET /airports"))
	require.Len(t, a.table.Rows(), 1)
	assert.Equal(t, "JFK", a.table.Rows()[0][0])
}

func TestCreateAirportOmitsBlankFieldsAndReloads(t *testing.T) {
	a, api, _ := newTestApp(t)
	a.active = TabAirports

	cmd := a.submit(formCreate, &draft{iata: "jfk", name: "JFK Intl"})
	require.NotNil(t, cmd)
	assert.True(t, a.working[TabAirports])

	msg := cmd().(mutationDoneMsg)
	require.NoError(t, msg.err)
	update(t, a, msg)

	assert.JSONEq(t, `{"airport_iata":"JFK","airport_name":"JFK Intl"}`, api.body("POST /airports"))
	assert.Equal(t, 1, api.count("GET /airports"))
	assert.False(t, a.working[TabAirports])
	assert.Len(t, a.table.Rows(), 1)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	a, api, _ := newTestApp(t)
	a.active = TabAirports

	assert.Nil(t, a.submit(formDelete, &draft{iata: "JFK", confirm: false}))
	assert.Equal(t, 0, api.count("DELETE /airports/JFK"))
}

func TestFilterFormAppliesFilter(t *testing.T) {
	a, api, _ := newTestApp(t)

	cmd := a.submit(formFilter, &draft{dep: "jfk", status: "landed"})
	require.NotNil(t, cmd)

	f := a.flights.Filter()
	assert.Equal(t, "JFK", f.DepIATA)
	assert.Equal(t, 50, f.Limit)

	cmd()
	assert.Equal(t, "dep_iata=JFK&limit=50&offset=0&status=landed", api.query("/flights"))
}

func TestPasswordLoginStoresCredentialAndReloads(t *testing.T) {
	a, _, store := newTestApp(t)

	d := &draft{email: "ops@example.com", password: "secret"}
	cmd := a.submit(formLogin, d)
	require.NotNil(t, cmd)
	assert.Empty(t, d.password)

	msg := cmd().(authDoneMsg)
	require.NoError(t, msg.err)

	token, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "T1", token)
	assert.Equal(t, auth.Authenticated, a.ctrl.Status())

	assert.NotNil(t, update(t, a, msg))
}

func TestLoginMethodGoogleStartsRedirect(t *testing.T) {
	a, _, _ := newTestApp(t)

	cmd := a.submit(formLoginMethod, &draft{method: methodGoogle})
	require.NotNil(t, cmd)

	msg := cmd().(googleStartedMsg)
	// the fake API has no /auth/google/url route
	require.Error(t, msg.err)
	update(t, a, msg)
	assert.Equal(t, auth.Failed, a.ctrl.Status())
}

func TestLoginMethodPasswordOpensForm(t *testing.T) {
	a, _, _ := newTestApp(t)

	a.submit(formLoginMethod, &draft{method: methodPassword})

	require.NotNil(t, a.form)
	assert.Equal(t, formLogin, a.formKind)
}

func TestEscClosesForm(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.startLogin()
	require.NotNil(t, a.form)

	update(t, a, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, a.form)
	assert.Equal(t, formNone, a.formKind)
}

func TestAssistantEnterSubmitsQuestion(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.activate(TabAssistant)
	a.input.SetValue("  any delays at JFK?  ")

	cmd := update(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	entries := a.chat.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "any delays at JFK?", entries[1].Text)
	assert.Equal(t, tabs.Pending, entries[1].State)
	assert.Empty(t, a.input.Value())

	// a second enter while the reply is pending does nothing
	a.input.SetValue("again")
	assert.Nil(t, update(t, a, tea.KeyMsg{Type: tea.KeyEnter}))

	update(t, a, cmd())
	entries = a.chat.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "Two delays at JFK.", entries[2].Text)
	assert.Equal(t, "gpt-4o-mini", entries[2].Model)
	assert.Equal(t, tabs.Delivered, entries[1].State)
}

func TestAssistantBlankInputIsIgnored(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.activate(TabAssistant)
	a.input.SetValue("   ")

	assert.Nil(t, update(t, a, tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Len(t, a.chat.Entries(), 1)
}

func TestCallbackReloadsAfterLogin(t *testing.T) {
	a, _, _ := newTestApp(t)
	ch := make(chan auth.Outcome, 1)
	a.callbacks = ch

	ch <- auth.Outcome{Pending: auth.Pending{Kind: auth.KindFragmentToken, Value: "T2"}}
	msg := a.waitForCallback()()
	require.IsType(t, callbackMsg{}, msg)

	assert.NotNil(t, update(t, a, msg))

	close(ch)
	msg = a.waitForCallback()()
	update(t, a, msg)
	assert.Nil(t, a.callbacks)
}

func TestViewShowsErrorWithoutDroppingRows(t *testing.T) {
	a, _, _ := newTestApp(t)
	update(t, a, a.load(TabFlights)())

	ticket := a.flights.Begin()
	a.flights.Finish(ticket, nil, &client.APIError{Status: 500, Message: "upstream unavailable"})
	update(t, a, listLoadedMsg{tab: TabFlights, applied: true})

	view := a.View()
	assert.Contains(t, view, "upstream unavailable")
	assert.Contains(t, view, "AA100")
}

func TestIngestRunRendersRawResult(t *testing.T) {
	a, api, _ := newTestApp(t)
	a.activate(TabIngest)

	cmd := a.submit(formIngest, &draft{direction: "arr", iata: "jfk", limit: "10"})
	require.NotNil(t, cmd)
	assert.Contains(t, a.View(), "Ingesting...")

	msg := cmd().(ingestDoneMsg)
	require.NoError(t, msg.err)
	update(t, a, msg)

	assert.Equal(t, "arr_iata=JFK&limit=10", api.query("/ingest/flights"))
	view := a.View()
	assert.Contains(t, view, "raw_inserted")
	assert.NotContains(t, view, "Ingesting...")
}
