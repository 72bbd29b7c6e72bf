package tabs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsundip4/airport-ops-console/internal/client"
)

func TestFlights_LoadUsesFilter(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(`{"items":[{"flight_iata":"UA100","dep_iata":"SFO","dep_delay_min":12}]}`))
	}))
	defer server.Close()

	tab := NewFlights(client.New(server.URL))
	tab.SetFilter(client.FlightFilter{DepIATA: "sfo", FlightDate: "2024-05-01"})
	require.NoError(t, tab.Load(context.Background()))

	assert.Equal(t, "SFO", got.Get("dep_iata"))
	assert.Equal(t, "2024-05-01", got.Get("flight_date"))
	assert.False(t, got.Has("arr_iata"))
	assert.False(t, got.Has("status"))
	assert.Equal(t, "50", got.Get("limit"))
	assert.Equal(t, "0", got.Get("offset"))

	rows := tab.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "12", rows[0].Cell("dep_delay_min"))
}

func TestFlights_DefaultFilter(t *testing.T) {
	tab := NewFlights(client.New("http://unused.invalid"))
	assert.Equal(t, client.DefaultFlightFilter(), tab.Filter())
}
