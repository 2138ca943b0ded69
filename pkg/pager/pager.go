// Package pager drives cursor pagination over the backend's
// "everything older than the last seen id" lists. One Pager serves one
// entity type; each parent id under it is an independent unit with its
// own cursor, exhaustion flag and in-flight guard.
package pager

import (
	"context"
	"sync"

	"github.com/xiaoen-app/appcore/pkg/cache"
)

// Fetcher loads up to size entities under parentId that are older than
// lastId. lastId 0 means the top of the list.
type Fetcher[T cache.Entity] func(ctx context.Context, parentId, lastId int64, size int) ([]T, error)

type Pager[T cache.Entity] struct {
	store *cache.Store[T]
	fetch Fetcher[T]
	size  int

	mu    sync.Mutex
	units map[int64]*unit
}

// unit is the pagination state of one parent id. gen tags outstanding
// fetches; a bump orphans them so their results are discarded on
// arrival instead of being merged over newer data.
type unit struct {
	cursor  int64
	hasMore bool
	loading bool
	gen     uint64
}

func New[T cache.Entity](store *cache.Store[T], fetch Fetcher[T], size int) *Pager[T] {
	return &Pager[T]{
		store: store,
		fetch: fetch,
		size:  size,
		units: map[int64]*unit{},
	}
}

func (p *Pager[T]) unit(parentId int64) *unit {
	u, ok := p.units[parentId]
	if !ok {
		u = &unit{hasMore: true}
		p.units[parentId] = u
	}
	return u
}

// LoadMore appends the next page to the parent's list. It is a no-op
// while a load is already in flight for the parent or once the list is
// exhausted. On failure the cursor and exhaustion flag are untouched,
// so the call is safe to retry.
func (p *Pager[T]) LoadMore(ctx context.Context, parentId int64) error {
	p.mu.Lock()
	u := p.unit(parentId)
	if u.loading || !u.hasMore {
		p.mu.Unlock()
		return nil
	}
	u.loading = true
	gen := u.gen
	lastId := u.cursor
	p.mu.Unlock()

	items, err := p.fetch(ctx, parentId, lastId, p.size)

	p.mu.Lock()
	defer p.mu.Unlock()
	if u.gen != gen {
		// A refresh superseded this load; the unit belongs to it now.
		return nil
	}
	u.loading = false
	if err != nil {
		return err
	}

	p.store.UpsertPage(parentId, items, cache.Append)
	if n := len(items); n > 0 {
		u.cursor = items[n-1].EntityId()
	}
	u.hasMore = len(items) == p.size
	return nil
}

// Refresh refetches the list from the top, replacing the accumulated
// items. It is always allowed: an outstanding LoadMore for the same
// parent is orphaned and its late result discarded.
func (p *Pager[T]) Refresh(ctx context.Context, parentId int64) error {
	p.mu.Lock()
	u := p.unit(parentId)
	u.gen++
	gen := u.gen
	u.loading = true
	p.mu.Unlock()

	items, err := p.fetch(ctx, parentId, 0, p.size)

	p.mu.Lock()
	defer p.mu.Unlock()
	if u.gen != gen {
		return nil
	}
	u.loading = false
	if err != nil {
		return err
	}

	p.store.UpsertPage(parentId, items, cache.Replace)
	u.cursor = 0
	if n := len(items); n > 0 {
		u.cursor = items[n-1].EntityId()
	}
	u.hasMore = len(items) == p.size
	return nil
}

// HasMore reports whether LoadMore can still fetch anything. It flips
// back to true only via Refresh.
func (p *Pager[T]) HasMore(parentId int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unit(parentId).hasMore
}

// Loading reports whether a fetch is outstanding for the parent.
func (p *Pager[T]) Loading(parentId int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unit(parentId).loading
}

// Cursor returns the last seen id for the parent, 0 before the first
// successful page and after a refresh of an empty list.
func (p *Pager[T]) Cursor(parentId int64) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unit(parentId).cursor
}
