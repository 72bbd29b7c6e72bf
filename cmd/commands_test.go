// ABOUTME: Tests for the API commands
// ABOUTME: Runs each command against a fake API and checks output and exit codes

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsundip4/airport-ops-console/internal/auth"
	"github.com/tsundip4/airport-ops-console/internal/client"
	"github.com/tsundip4/airport-ops-console/internal/tabs"
)

func TestLoginPersistsAcrossCommands(t *testing.T) {
	api, url := newFakeAPI(t, map[string]fakeRoute{
		"POST /auth/login": {body: `{"access_token":"T1","token_type":"bearer"}`},
		"GET /airports":    {body: `[{"airport_iata":"JFK","airport_name":"JFK Intl"}]`},
	})
	useAPI(t, url)

	var buf bytes.Buffer
	code := runLogin(context.Background(), &buf, loginOptions{email: "ops@example.com", password: "secret"})
	require.Equal(t, 0, code, buf.String())
	assert.Contains(t, buf.String(), auth.MsgLoggedIn)

	buf.Reset()
	require.Equal(t, 0, runAirportsList(context.Background(), &buf))
	assert.Equal(t, "Bearer T1", api.last().auth)
	assert.Contains(t, buf.String(), "JFK Intl")

	buf.Reset()
	require.Equal(t, 0, runStatus(context.Background(), &buf))
	assert.Contains(t, buf.String(), "authenticated")

	buf.Reset()
	require.Equal(t, 0, runLogout(context.Background(), &buf))
	assert.Contains(t, buf.String(), auth.MsgLoggedOut)

	buf.Reset()
	require.Equal(t, 0, runStatus(context.Background(), &buf))
	assert.Contains(t, buf.String(), "anonymous")
}

func TestLoginFailureShowsServerDetail(t *testing.T) {
	_, url := newFakeAPI(t, map[string]fakeRoute{
		"POST /auth/login": {status: http.StatusUnauthorized, body: `{"detail":"Invalid credentials"}`},
	})
	useAPI(t, url)

	var buf bytes.Buffer
	code := runLogin(context.Background(), &buf, loginOptions{email: "ops@example.com", password: "wrong"})

	assert.Equal(t, 2, code)
	assert.Contains(t, buf.String(), "Error: Login failed: Invalid credentials")
}

func TestLoginMissingTokenIsContractError(t *testing.T) {
	_, url := newFakeAPI(t, map[string]fakeRoute{
		"POST /auth/login": {body: `{"token_type":"bearer"}`},
	})
	useAPI(t, url)

	var buf bytes.Buffer
	code := runLogin(context.Background(), &buf, loginOptions{email: "ops@example.com", password: "secret"})

	assert.Equal(t, 2, code)
	assert.Contains(t, buf.String(), auth.MsgNoCredential)
}

func TestLoginPromptsForMissingPassword(t *testing.T) {
	_, url := newFakeAPI(t, map[string]fakeRoute{
		"POST /auth/login": {body: `{"access_token":"T1"}`},
	})
	useAPI(t, url)

	prev := promptCredentials
	defer func() { promptCredentials = prev }()
	prompted := false
	promptCredentials = func(email, password *string) error {
		prompted = true
		*password = "secret"
		return nil
	}

	var buf bytes.Buffer
	code := runLogin(context.Background(), &buf, loginOptions{email: "ops@example.com"})

	assert.Equal(t, 0, code, buf.String())
	assert.True(t, prompted)
}

func TestGoogleLoginCompletesThroughCallback(t *testing.T) {
	api, url := newFakeAPI(t, map[string]fakeRoute{
		"GET /auth/google/url":    {body: `{"url":"https://accounts.example.com/consent"}`},
		"POST /auth/google/token": {body: `{"access_token":"G1"}`},
	})
	useAPI(t, url)

	addr := freeAddr(t)
	t.Setenv("AIRPORT_OPS_CALLBACK_ADDR", addr)

	var opened string
	navigator = auth.NavigatorFunc(func(u string) error {
		opened = u
		// the browser comes back with an authorization code
		go func() {
			resp, err := http.Get("http://" + addr + "/?code=abc&state=xyz")
			if err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	})

	var buf bytes.Buffer
	code := runLogin(context.Background(), &buf, loginOptions{google: true, wait: 10 * time.Second})

	require.Equal(t, 0, code, buf.String())
	assert.Equal(t, "https://accounts.example.com/consent", opened)
	assert.Contains(t, buf.String(), auth.MsgLoggedInGoogle)

	exchange, ok := api.find(http.MethodPost, "/auth/google/token")
	require.True(t, ok)
	assert.JSONEq(t, `{"code":"abc"}`, exchange.body)
}

func TestGoogleLoginIgnoresRedirectWithoutCredential(t *testing.T) {
	api, url := newFakeAPI(t, map[string]fakeRoute{
		"GET /auth/google/url":    {body: `{"url":"https://accounts.example.com/consent"}`},
		"POST /auth/google/token": {body: `{"access_token":"G1"}`},
	})
	useAPI(t, url)

	addr := freeAddr(t)
	t.Setenv("AIRPORT_OPS_CALLBACK_ADDR", addr)

	navigator = auth.NavigatorFunc(func(string) error {
		go func() {
			// an empty fragment token first, then the real redirect
			for _, path := range []string{"/fragment?hash=%23token%3D", "/?code=abc"} {
				resp, err := http.Get("http://" + addr + path)
				if err != nil {
					return
				}
				resp.Body.Close()
			}
		}()
		return nil
	})

	var buf bytes.Buffer
	code := runLogin(context.Background(), &buf, loginOptions{google: true, wait: 10 * time.Second})

	require.Equal(t, 0, code, buf.String())
	assert.Contains(t, buf.String(), auth.MsgLoggedInGoogle)
	_, exchanged := api.find(http.MethodPost, "/auth/google/token")
	assert.True(t, exchanged)
}

func TestGoogleLoginEmptyTokenIsNotSuccess(t *testing.T) {
	_, url := newFakeAPI(t, map[string]fakeRoute{
		"GET /auth/google/url": {body: `{"url":"https://accounts.example.com/consent"}`},
	})
	useAPI(t, url)

	addr := freeAddr(t)
	t.Setenv("AIRPORT_OPS_CALLBACK_ADDR", addr)

	navigator = auth.NavigatorFunc(func(string) error {
		go func() {
			resp, err := http.Get("http://" + addr + "/fragment?hash=%23token%3D")
			if err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	})

	var buf bytes.Buffer
	code := runLogin(context.Background(), &buf, loginOptions{google: true, wait: 300 * time.Millisecond})

	assert.Equal(t, 2, code)
	assert.Contains(t, buf.String(), "waiting for sign-in redirect")

	buf.Reset()
	require.Equal(t, 0, runStatus(context.Background(), &buf))
	assert.Contains(t, buf.String(), auth.Anonymous.String())
}

func TestGoogleLoginTimesOut(t *testing.T) {
	_, url := newFakeAPI(t, map[string]fakeRoute{
		"GET /auth/google/url": {body: `{"url":"https://accounts.example.com/consent"}`},
	})
	useAPI(t, url)
	t.Setenv("AIRPORT_OPS_CALLBACK_ADDR", "127.0.0.1:0")

	var buf bytes.Buffer
	code := runLogin(context.Background(), &buf, loginOptions{google: true, wait: 50 * time.Millisecond})

	assert.Equal(t, 2, code)
	assert.Contains(t, buf.String(), "waiting for sign-in redirect")
}

func TestCallbackLocationStoresFragmentToken(t *testing.T) {
	api, url := newFakeAPI(t, map[string]fakeRoute{
		"GET /flights": {body: `[]`},
	})
	useAPI(t, url)

	var buf bytes.Buffer
	code := runCallback(context.Background(), &buf, "http://127.0.0.1:5173/?code=ignored#token=T2", time.Second)
	require.Equal(t, 0, code, buf.String())
	assert.Contains(t, buf.String(), auth.MsgFragmentLogin)

	// the fragment wins: no exchange call was made
	_, exchanged := api.find(http.MethodPost, "/auth/google/token")
	assert.False(t, exchanged)

	buf.Reset()
	require.Equal(t, 0, runFlights(context.Background(), &buf, client.DefaultFlightFilter()))
	assert.Equal(t, "Bearer T2", api.last().auth)
}

func TestCallbackLocationProviderError(t *testing.T) {
	_, url := newFakeAPI(t, nil)
	useAPI(t, url)

	var buf bytes.Buffer
	code := runCallback(context.Background(), &buf, "http://127.0.0.1:5173/?error=access_denied", time.Second)

	assert.Equal(t, 2, code)
	assert.Contains(t, buf.String(), "Google login error: access_denied")
}

func TestCallbackLocationWithoutParams(t *testing.T) {
	_, url := newFakeAPI(t, nil)
	useAPI(t, url)

	var buf bytes.Buffer
	assert.Equal(t, 2, runCallback(context.Background(), &buf, "http://127.0.0.1:5173/", time.Second))
}

func TestAirportsListPagingAndJSON(t *testing.T) {
	api, url := newFakeAPI(t, map[string]fakeRoute{
		"GET /airports": {body: `{"items":[{"airport_iata":"JFK","airport_name":"JFK Intl"}]}`},
	})
	useAPI(t, url)
	jsonOutput = true
	pageLimit, pageOffset = 10, 20
	defer func() { pageLimit, pageOffset = client.DefaultPage.Limit, 0 }()

	var buf bytes.Buffer
	require.Equal(t, 0, runAirportsList(context.Background(), &buf))

	assert.Equal(t, "limit=10&offset=20", api.last().query)
	var rows []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	assert.Equal(t, "JFK", rows[0]["airport_iata"])
}

func TestAirportCreateOmitsBlankFields(t *testing.T) {
	api, url := newFakeAPI(t, map[string]fakeRoute{
		"POST /airports": {status: http.StatusCreated, body: `{"airport_iata":"JFK","airport_name":"JFK Intl"}`},
	})
	useAPI(t, url)

	var buf bytes.Buffer
	code := runAirportCreate(context.Background(), &buf, tabs.AirportForm{IATA: "jfk", Name: "JFK Intl"})

	require.Equal(t, 0, code, buf.String())
	assert.JSONEq(t, `{"airport_iata":"JFK","airport_name":"JFK Intl"}`, api.last().body)
	assert.Contains(t, buf.String(), "JFK Intl")
}

func TestAirportUpdateSendsCodeInPath(t *testing.T) {
	api, url := newFakeAPI(t, map[string]fakeRoute{
		"PUT /airports/LAX": {body: `{"airport_iata":"LAX","timezone":"America/Los_Angeles"}`},
	})
	useAPI(t, url)

	var buf bytes.Buffer
	code := runAirportUpdate(context.Background(), &buf, tabs.AirportForm{IATA: "lax", Timezone: "America/Los_Angeles"})

	require.Equal(t, 0, code, buf.String())
	assert.JSONEq(t, `{"timezone":"America/Los_Angeles"}`, api.last().body)
}

func TestAirportDeleteNotFound(t *testing.T) {
	_, url := newFakeAPI(t, map[string]fakeRoute{
		"DELETE /airports/ZZZ": {status: http.StatusNotFound, body: `{"detail":"Airport not found"}`},
	})
	useAPI(t, url)

	var buf bytes.Buffer
	assert.Equal(t, 2, runAirportDelete(context.Background(), &buf, "zzz"))
	assert.Equal(t, "Error: Airport not found\n", buf.String())
}

func TestAirportUniqueAirlines(t *testing.T) {
	api, url := newFakeAPI(t, map[string]fakeRoute{
		"GET /airports/JFK/unique-airlines": {body: `[{"airline_iata":"AA"},{"airline_iata":"DL"}]`},
	})
	useAPI(t, url)

	var buf bytes.Buffer
	require.Equal(t, 0, runAirportUniqueAirlines(context.Background(), &buf, "jfk"))
	assert.Equal(t, "/airports/JFK/unique-airlines", api.last().path)
	assert.Contains(t, buf.String(), "DL")
}

func TestAirlineCreateUsesAirlineFields(t *testing.T) {
	api, url := newFakeAPI(t, map[string]fakeRoute{
		"POST /airlines": {status: http.StatusCreated, body: `{"airline_iata":"BA"}`},
	})
	useAPI(t, url)

	var buf bytes.Buffer
	code := runAirlineCreate(context.Background(), &buf, tabs.AirlineForm{IATA: "ba", ICAO: "baw", Name: "British Airways"})

	require.Equal(t, 0, code, buf.String())
	assert.JSONEq(t, `{"airline_iata":"BA","airline_icao":"BAW","airline_name":"British Airways"}`, api.last().body)
}

func TestAirlineGetYAML(t *testing.T) {
	_, url := newFakeAPI(t, map[string]fakeRoute{
		"GET /airlines/BA": {body: `{"airline_iata":"BA","airline_name":"British Airways"}`},
	})
	useAPI(t, url)
	outputFormat = "yaml"

	var buf bytes.Buffer
	require.Equal(t, 0, runAirlineGet(context.Background(), &buf, "ba"))
	assert.Equal(t, "airline_iata: BA\nairline_name: British Airways\n", buf.String())
}

func TestFlightsFilterQuery(t *testing.T) {
	api, url := newFakeAPI(t, map[string]fakeRoute{
		"GET /flights": {body: `[{"flight_iata":"AA100","dep_iata":"JFK"}]`},
	})
	useAPI(t, url)

	filter := client.DefaultFlightFilter()
	filter.DepIATA = "jfk"
	filter.FlightDate = "2024-05-01"

	var buf bytes.Buffer
	require.Equal(t, 0, runFlights(context.Background(), &buf, filter))

	assert.Equal(t, "dep_iata=JFK&flight_date=2024-05-01&limit=50&offset=0", api.last().query)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "AA100")
}

func TestFlightsEmpty(t *testing.T) {
	_, url := newFakeAPI(t, map[string]fakeRoute{"GET /flights": {body: `[]`}})
	useAPI(t, url)

	var buf bytes.Buffer
	require.Equal(t, 0, runFlights(context.Background(), &buf, client.DefaultFlightFilter()))
	assert.Contains(t, buf.String(), "No rows")
}

func TestIngestPrintsRawResult(t *testing.T) {
	api, url := newFakeAPI(t, map[string]fakeRoute{
		"POST /ingest/flights": {body: `{"ingest_id":7,"raw_inserted":12}`},
	})
	useAPI(t, url)

	var buf bytes.Buffer
	require.Equal(t, 0, runIngest(context.Background(), &buf, "arr", "lax", 25))

	assert.Equal(t, "arr_iata=LAX&limit=25", api.last().query)
	assert.Contains(t, buf.String(), `"raw_inserted": 12`)
}

func TestIngestRejectsUnknownDirection(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 2, runIngest(context.Background(), &buf, "sideways", "LAX", 10))
	assert.Contains(t, buf.String(), "Error:")
}

func TestAskPrintsAnswerAndModel(t *testing.T) {
	api, url := newFakeAPI(t, map[string]fakeRoute{
		"POST /ai/ask": {body: `{"answer":"Three flights are delayed.","model":"gpt-4o-mini"}`},
	})
	useAPI(t, url)

	var buf bytes.Buffer
	require.Equal(t, 0, runAsk(context.Background(), &buf, "which flights are delayed?"))

	assert.JSONEq(t, `{"question":"which flights are delayed?"}`, api.last().body)
	assert.Contains(t, buf.String(), "Three flights are delayed.")
	assert.Contains(t, buf.String(), "model: gpt-4o-mini")
}

func TestAskEmptyAnswer(t *testing.T) {
	_, url := newFakeAPI(t, map[string]fakeRoute{"POST /ai/ask": {body: `{}`}})
	useAPI(t, url)

	var buf bytes.Buffer
	require.Equal(t, 0, runAsk(context.Background(), &buf, "anything?"))
	assert.Equal(t, tabs.NoResponse+"\n", buf.String())
}

func TestAskBlankQuestion(t *testing.T) {
	_, url := newFakeAPI(t, nil)
	useAPI(t, url)

	var buf bytes.Buffer
	assert.Equal(t, 2, runAsk(context.Background(), &buf, "   "))
}

func TestConnectionError(t *testing.T) {
	useAPI(t, "http://127.0.0.1:1")

	var buf bytes.Buffer
	code := runFlights(context.Background(), &buf, client.DefaultFlightFilter())

	assert.Equal(t, 2, code)
	assert.Contains(t, buf.String(), "cannot connect to API")
}

func TestFormatStatusHuman(t *testing.T) {
	out := formatStatusHuman(statusReport{API: "http://localhost:8000", Session: "anonymous", Store: "file", Dir: "/tmp/x"})

	assert.Contains(t, out, "http://localhost:8000")
	assert.Contains(t, out, "Config:   /tmp/x")
}
