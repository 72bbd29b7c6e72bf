// ABOUTME: Airport and airline record endpoints
// ABOUTME: List, lookup, create, update and delete by IATA code

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

// Page selects a window of a list endpoint.
type Page struct {
	Limit  int
	Offset int
}

// DefaultPage matches the API's default window.
var DefaultPage = Page{Limit: 50, Offset: 0}

func (p Page) query() url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("offset", strconv.Itoa(p.Offset))
	return q
}

// AirportInput is the create/update payload; blank fields are omitted.
type AirportInput struct {
	IATA     string `json:"airport_iata,omitempty"`
	Name     string `json:"airport_name,omitempty"`
	ICAO     string `json:"icao,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// AirlineInput is the create/update payload; blank fields are omitted.
type AirlineInput struct {
	IATA string `json:"airline_iata,omitempty"`
	ICAO string `json:"airline_icao,omitempty"`
	Name string `json:"airline_name,omitempty"`
}

var errMissingIATA = errors.New("IATA code is required")

// ListAirports calls GET /airports.
func (c *Client) ListAirports(ctx context.Context, page Page) (json.RawMessage, error) {
	return c.Execute(ctx, "/airports", &RequestOptions{Query: page.query()})
}

// GetAirport calls GET /airports/{iata}.
func (c *Client) GetAirport(ctx context.Context, iata string) (json.RawMessage, error) {
	if iata == "" {
		return nil, errMissingIATA
	}
	return c.Execute(ctx, "/airports/"+url.PathEscape(iata), nil)
}

// UniqueAirlines calls GET /airports/{iata}/unique-airlines.
func (c *Client) UniqueAirlines(ctx context.Context, iata string) (json.RawMessage, error) {
	if iata == "" {
		return nil, errMissingIATA
	}
	return c.Execute(ctx, "/airports/"+url.PathEscape(iata)+"/unique-airlines", nil)
}

// CreateAirport calls POST /airports.
func (c *Client) CreateAirport(ctx context.Context, in AirportInput) (json.RawMessage, error) {
	if in.IATA == "" {
		return nil, errMissingIATA
	}
	return c.Execute(ctx, "/airports", &RequestOptions{Method: http.MethodPost, Body: in})
}

// UpdateAirport calls PUT /airports/{iata}; the code travels in the path only.
func (c *Client) UpdateAirport(ctx context.Context, iata string, in AirportInput) (json.RawMessage, error) {
	if iata == "" {
		return nil, errMissingIATA
	}
	in.IATA = ""
	return c.Execute(ctx, "/airports/"+url.PathEscape(iata), &RequestOptions{Method: http.MethodPut, Body: in})
}

// DeleteAirport calls DELETE /airports/{iata}.
func (c *Client) DeleteAirport(ctx context.Context, iata string) error {
	if iata == "" {
		return errMissingIATA
	}
	_, err := c.Execute(ctx, "/airports/"+url.PathEscape(iata), &RequestOptions{Method: http.MethodDelete})
	return err
}

// ListAirlines calls GET /airlines.
func (c *Client) ListAirlines(ctx context.Context, page Page) (json.RawMessage, error) {
	return c.Execute(ctx, "/airlines", &RequestOptions{Query: page.query()})
}

// GetAirline calls GET /airlines/{iata}.
func (c *Client) GetAirline(ctx context.Context, iata string) (json.RawMessage, error) {
	if iata == "" {
		return nil, errMissingIATA
	}
	return c.Execute(ctx, "/airlines/"+url.PathEscape(iata), nil)
}

// CreateAirline calls POST /airlines.
func (c *Client) CreateAirline(ctx context.Context, in AirlineInput) (json.RawMessage, error) {
	if in.IATA == "" {
		return nil, errMissingIATA
	}
	return c.Execute(ctx, "/airlines", &RequestOptions{Method: http.MethodPost, Body: in})
}

// UpdateAirline calls PUT /airlines/{iata}.
func (c *Client) UpdateAirline(ctx context.Context, iata string, in AirlineInput) (json.RawMessage, error) {
	if iata == "" {
		return nil, errMissingIATA
	}
	in.IATA = ""
	return c.Execute(ctx, "/airlines/"+url.PathEscape(iata), &RequestOptions{Method: http.MethodPut, Body: in})
}

// DeleteAirline calls DELETE /airlines/{iata}.
func (c *Client) DeleteAirline(ctx context.Context, iata string) error {
	if iata == "" {
		return errMissingIATA
	}
	_, err := c.Execute(ctx, "/airlines/"+url.PathEscape(iata), &RequestOptions{Method: http.MethodDelete})
	return err
}

// DecodeItems accepts either a bare JSON array or an {"items": [...]}
// envelope. Anything else (including an absent body) yields no items.
func DecodeItems(raw json.RawMessage) ([]json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	case '{':
		var envelope struct {
			Items json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, err
		}
		if len(envelope.Items) == 0 || string(envelope.Items) == "null" {
			return nil, nil
		}
		var items []json.RawMessage
		if err := json.Unmarshal(envelope.Items, &items); err != nil {
			return nil, &ContractError{Endpoint: "list response", Field: "items array"}
		}
		return items, nil
	}
	return nil, nil
}
