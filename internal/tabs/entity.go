// ABOUTME: CRUD tab for airports and airlines
// ABOUTME: Mutations clear the previous error and reload the list on success

package tabs

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tsundip4/airport-ops-console/internal/client"
)

type entityOps[F any] struct {
	list   func(ctx context.Context, page client.Page) (json.RawMessage, error)
	create func(ctx context.Context, form F) error
	update func(ctx context.Context, form F) error
	remove func(ctx context.Context, iata string) error
}

// Entity is a paged list with create, update and delete.
type Entity[F any] struct {
	*List

	ops entityOps[F]

	pageMu sync.Mutex
	page   client.Page
}

func newEntity[F any](ops entityOps[F]) *Entity[F] {
	e := &Entity[F]{ops: ops, page: client.DefaultPage}
	e.List = NewList(func(ctx context.Context) (json.RawMessage, error) {
		return e.ops.list(ctx, e.Page())
	})
	return e
}

// NewAirports builds the airports tab.
func NewAirports(c *client.Client) *Entity[AirportForm] {
	return newEntity(entityOps[AirportForm]{
		list: c.ListAirports,
		create: func(ctx context.Context, f AirportForm) error {
			_, err := c.CreateAirport(ctx, f.Payload())
			return err
		},
		update: func(ctx context.Context, f AirportForm) error {
			_, err := c.UpdateAirport(ctx, f.Code(), f.Payload())
			return err
		},
		remove: c.DeleteAirport,
	})
}

// NewAirlines builds the airlines tab.
func NewAirlines(c *client.Client) *Entity[AirlineForm] {
	return newEntity(entityOps[AirlineForm]{
		list: c.ListAirlines,
		create: func(ctx context.Context, f AirlineForm) error {
			_, err := c.CreateAirline(ctx, f.Payload())
			return err
		},
		update: func(ctx context.Context, f AirlineForm) error {
			_, err := c.UpdateAirline(ctx, f.Code(), f.Payload())
			return err
		},
		remove: c.DeleteAirline,
	})
}

func (e *Entity[F]) Page() client.Page {
	e.pageMu.Lock()
	defer e.pageMu.Unlock()
	return e.page
}

// SetPage changes the window used by the next Load.
func (e *Entity[F]) SetPage(p client.Page) {
	e.pageMu.Lock()
	defer e.pageMu.Unlock()
	e.page = p
}

func (e *Entity[F]) Create(ctx context.Context, form F) error {
	return e.mutate(ctx, func() error { return e.ops.create(ctx, form) })
}

func (e *Entity[F]) Update(ctx context.Context, form F) error {
	return e.mutate(ctx, func() error { return e.ops.update(ctx, form) })
}

func (e *Entity[F]) Delete(ctx context.Context, iata string) error {
	code := NormalizeCode(iata)
	return e.mutate(ctx, func() error { return e.ops.remove(ctx, code) })
}

// mutate clears the prior error, runs op and reloads on success. A failed
// op leaves the rows as they were.
func (e *Entity[F]) mutate(ctx context.Context, op func() error) error {
	e.setErr(nil)
	if err := op(); err != nil {
		e.setErr(err)
		return err
	}
	return e.Load(ctx)
}
