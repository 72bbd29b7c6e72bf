// ABOUTME: Flight query and ingestion trigger endpoints
// ABOUTME: Builds filter queries and runs long ingestion calls with their own deadline

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// FlightFilter narrows GET /flights; blank fields are not sent.
type FlightFilter struct {
	DepIATA    string
	ArrIATA    string
	FlightDate string // YYYY-MM-DD
	Status     string
	Limit      int
	Offset     int
}

// DefaultFlightFilter is an unfiltered first page.
func DefaultFlightFilter() FlightFilter {
	return FlightFilter{Limit: 50}
}

// Query encodes the filter as URL parameters.
func (f FlightFilter) Query() url.Values {
	q := url.Values{}
	setIfPresent(q, "dep_iata", f.DepIATA)
	setIfPresent(q, "arr_iata", f.ArrIATA)
	setIfPresent(q, "flight_date", f.FlightDate)
	setIfPresent(q, "status", f.Status)
	q.Set("limit", strconv.Itoa(f.Limit))
	q.Set("offset", strconv.Itoa(f.Offset))
	return q
}

// ListFlights calls GET /flights.
func (c *Client) ListFlights(ctx context.Context, f FlightFilter) (json.RawMessage, error) {
	return c.Execute(ctx, "/flights", &RequestOptions{Query: f.Query()})
}

// Direction selects which side of a route an ingestion pulls.
type Direction string

const (
	Departures Direction = "dep"
	Arrivals   Direction = "arr"
)

// ParseDirection accepts dep/departures and arr/arrivals.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dep", "departure", "departures":
		return Departures, nil
	case "arr", "arrival", "arrivals":
		return Arrivals, nil
	}
	return "", fmt.Errorf("unknown direction %q (want dep or arr)", s)
}

func (d Direction) param() string {
	return string(d) + "_iata"
}

// IngestFlights calls POST /ingest/flights with the ingestion deadline.
func (c *Client) IngestFlights(ctx context.Context, dir Direction, iata string, limit int) (json.RawMessage, error) {
	if dir != Departures && dir != Arrivals {
		return nil, fmt.Errorf("unknown direction %q", dir)
	}
	if iata == "" {
		return nil, errMissingIATA
	}

	q := url.Values{}
	q.Set(dir.param(), iata)
	q.Set("limit", strconv.Itoa(limit))

	return c.Execute(ctx, "/ingest/flights", &RequestOptions{
		Method:  http.MethodPost,
		Query:   q,
		Timeout: c.ingestTimeout,
	})
}

func setIfPresent(q url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		q.Set(key, value)
	}
}
