// ABOUTME: Ingestion trigger tab
// ABOUTME: Keeps only the last raw ingestion response for display

package tabs

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/tsundip4/airport-ops-console/internal/client"
)

// DefaultIngestLimit matches the API's default batch size.
const DefaultIngestLimit = 50

type Ingest struct {
	c *client.Client

	mu      sync.Mutex
	result  json.RawMessage
	loading bool
	err     error
	gen     uint64
}

func NewIngest(c *client.Client) *Ingest {
	return &Ingest{c: c}
}

// Run triggers an ingestion for one airport and direction. The previous
// result and error are cleared when the run starts.
func (i *Ingest) Run(ctx context.Context, dir client.Direction, iata string, limit int) (json.RawMessage, error) {
	if limit <= 0 {
		limit = DefaultIngestLimit
	}

	i.mu.Lock()
	i.gen++
	gen := i.gen
	i.result = nil
	i.err = nil
	i.loading = true
	i.mu.Unlock()

	raw, err := i.c.IngestFlights(ctx, dir, NormalizeCode(iata), limit)

	i.mu.Lock()
	defer i.mu.Unlock()
	if gen == i.gen {
		i.loading = false
		i.result = raw
		i.err = err
	}
	return raw, err
}

func (i *Ingest) Result() json.RawMessage {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.result
}

// Pretty renders the last result as indented JSON, or "" when there is none.
func (i *Ingest) Pretty() string {
	raw := i.Result()
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func (i *Ingest) Loading() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.loading
}

func (i *Ingest) Err() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.err
}

func (i *Ingest) ErrMessage() string {
	return client.Message(i.Err())
}
