// ABOUTME: Result list shared by the data tabs
// ABOUTME: Tracks rows, loading and error with last-initiated-wins load tickets

package tabs

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tsundip4/airport-ops-console/internal/client"
	"github.com/tsundip4/airport-ops-console/internal/records"
)

// Fetcher performs the list call for the tab's current filter.
type Fetcher func(ctx context.Context) (json.RawMessage, error)

// Ticket identifies one load. Only the most recently issued ticket may
// change the list; older loads finish silently.
type Ticket struct {
	gen uint64
}

// List holds the last successful result set of one tab.
type List struct {
	fetch Fetcher

	mu      sync.Mutex
	rows    []records.Row
	loading bool
	err     error
	gen     uint64
}

func NewList(fetch Fetcher) *List {
	return &List{fetch: fetch}
}

// Begin starts a load, superseding any load still in flight.
func (l *List) Begin() Ticket {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.loading = true
	l.err = nil
	return Ticket{gen: l.gen}
}

// Finish applies a load result. It reports false when t was superseded,
// in which case nothing changes.
func (l *List) Finish(t Ticket, raw json.RawMessage, err error) bool {
	var rows []records.Row
	if err == nil {
		rows, err = records.Decode(raw)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if t.gen != l.gen {
		return false
	}
	l.loading = false
	if err != nil {
		l.err = err
		return true
	}
	l.rows = rows
	return true
}

// Fetch performs the list call without touching state. Pair it with
// Begin and Finish when the call runs off the caller's goroutine.
func (l *List) Fetch(ctx context.Context) (json.RawMessage, error) {
	return l.fetch(ctx)
}

// Load fetches and replaces the rows. On failure the previous rows stay.
func (l *List) Load(ctx context.Context) error {
	t := l.Begin()
	raw, err := l.fetch(ctx)
	l.Finish(t, raw, err)
	return err
}

// Rows returns the current result set.
func (l *List) Rows() []records.Row {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]records.Row(nil), l.rows...)
}

func (l *List) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

func (l *List) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// ErrMessage is the error line shown under the tab, empty when healthy.
func (l *List) ErrMessage() string {
	return client.Message(l.Err())
}

func (l *List) setErr(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}
