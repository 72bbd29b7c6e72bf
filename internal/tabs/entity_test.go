package tabs

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsundip4/airport-ops-console/internal/client"
)

// fakeAirportAPI is an in-memory /airports resource.
type fakeAirportAPI struct {
	mu       sync.Mutex
	airports []map[string]any
	bodies   []string
	lists    int
	failNext string
}

func (f *fakeAirportAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNext != "" {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"detail": f.failNext})
		f.failNext = ""
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/airports":
		f.lists++
		json.NewEncoder(w).Encode(map[string]any{"items": f.airports, "total": len(f.airports)})
	case r.Method == http.MethodPost && r.URL.Path == "/airports":
		body, _ := io.ReadAll(r.Body)
		f.bodies = append(f.bodies, string(body))
		var rec map[string]any
		json.Unmarshal(body, &rec)
		f.airports = append(f.airports, rec)
		w.WriteHeader(http.StatusCreated)
		w.Write(body)
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.bodies = append(f.bodies, string(body))
		w.Write(body)
	case r.Method == http.MethodDelete:
		code := strings.TrimPrefix(r.URL.Path, "/airports/")
		kept := f.airports[:0]
		for _, a := range f.airports {
			if a["airport_iata"] != code {
				kept = append(kept, a)
			}
		}
		f.airports = kept
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeAirportAPI) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func newAirportsTab(t *testing.T) (*Entity[AirportForm], *fakeAirportAPI) {
	t.Helper()
	api := &fakeAirportAPI{}
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)
	return NewAirports(client.New(server.URL)), api
}

func TestAirports_CreateOmitsBlankFieldsAndReloads(t *testing.T) {
	tab, api := newAirportsTab(t)

	err := tab.Create(context.Background(), AirportForm{IATA: "jfk", Name: "JFK Intl", ICAO: "", Timezone: ""})
	require.NoError(t, err)

	require.Len(t, api.bodies, 1)
	assert.JSONEq(t, `{"airport_iata":"JFK","airport_name":"JFK Intl"}`, api.bodies[0])
	assert.Equal(t, 1, api.listCount())

	rows := tab.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "JFK", rows[0].Cell("airport_iata"))
}

func TestAirports_FailedMutationKeepsRows(t *testing.T) {
	tab, api := newAirportsTab(t)
	require.NoError(t, tab.Create(context.Background(), AirportForm{IATA: "SFO"}))

	api.mu.Lock()
	api.failNext = "Airport already exists"
	api.mu.Unlock()

	err := tab.Create(context.Background(), AirportForm{IATA: "SFO"})
	require.Error(t, err)

	assert.Equal(t, "Airport already exists", tab.ErrMessage())
	assert.Len(t, tab.Rows(), 1)
	assert.Equal(t, 1, api.listCount())
}

func TestAirports_NextMutationClearsError(t *testing.T) {
	tab, api := newAirportsTab(t)
	api.failNext = "boom"
	require.Error(t, tab.Delete(context.Background(), "JFK"))
	require.Error(t, tab.Err())

	require.NoError(t, tab.Create(context.Background(), AirportForm{IATA: "ORD"}))
	assert.NoError(t, tab.Err())
}

func TestAirports_UpdateSendsOnlyChangedFields(t *testing.T) {
	tab, api := newAirportsTab(t)

	require.NoError(t, tab.Update(context.Background(), AirportForm{IATA: "JFK", Timezone: "America/New_York"}))

	require.Len(t, api.bodies, 1)
	assert.JSONEq(t, `{"timezone":"America/New_York"}`, api.bodies[0])
}

func TestAirports_UpdateRequiresCode(t *testing.T) {
	tab, api := newAirportsTab(t)

	require.Error(t, tab.Update(context.Background(), AirportForm{Name: "Nowhere"}))
	assert.Empty(t, api.bodies)
	assert.Error(t, tab.Err())
}

func TestAirports_DeleteReloads(t *testing.T) {
	tab, api := newAirportsTab(t)
	require.NoError(t, tab.Create(context.Background(), AirportForm{IATA: "JFK"}))
	require.NoError(t, tab.Create(context.Background(), AirportForm{IATA: "LAX"}))

	require.NoError(t, tab.Delete(context.Background(), " lax "))

	rows := tab.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "JFK", rows[0].Cell("airport_iata"))
	assert.Equal(t, 3, api.listCount())
}

func TestAirports_PageUsedByLoad(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	tab := NewAirports(client.New(server.URL))
	tab.SetPage(client.Page{Limit: 10, Offset: 20})
	require.NoError(t, tab.Load(context.Background()))

	assert.Equal(t, "limit=10&offset=20", gotQuery)
}

func TestAirlines_CreatePayload(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			b, _ := io.ReadAll(r.Body)
			body = string(b)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	tab := NewAirlines(client.New(server.URL))
	require.NoError(t, tab.Create(context.Background(), AirlineForm{IATA: "ua", Name: " United "}))

	assert.JSONEq(t, `{"airline_iata":"UA","airline_name":"United"}`, body)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "JFK", NormalizeCode(" jfk "))
	assert.Equal(t, "", NormalizeCode("   "))
}
