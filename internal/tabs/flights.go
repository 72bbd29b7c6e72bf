// ABOUTME: Read-only flights tab driven by a filter

package tabs

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tsundip4/airport-ops-console/internal/client"
)

type Flights struct {
	*List

	filterMu sync.Mutex
	filter   client.FlightFilter
}

func NewFlights(c *client.Client) *Flights {
	f := &Flights{filter: client.DefaultFlightFilter()}
	f.List = NewList(func(ctx context.Context) (json.RawMessage, error) {
		return c.ListFlights(ctx, f.Filter())
	})
	return f
}

func (f *Flights) Filter() client.FlightFilter {
	f.filterMu.Lock()
	defer f.filterMu.Unlock()
	return f.filter
}

// SetFilter replaces the filter; codes are upper-cased.
func (f *Flights) SetFilter(filter client.FlightFilter) {
	filter.DepIATA = NormalizeCode(filter.DepIATA)
	filter.ArrIATA = NormalizeCode(filter.ArrIATA)
	if filter.Limit <= 0 {
		filter.Limit = client.DefaultFlightFilter().Limit
	}

	f.filterMu.Lock()
	defer f.filterMu.Unlock()
	f.filter = filter
}
