package cache

import (
	"sync"
)

// Entity is anything a Store can hold: identified by a stable,
// server-assigned id. Ids are unique within one entity type.
type Entity interface {
	EntityId() int64
}

// Mode selects how an incoming page merges with the accumulated list.
type Mode int

const (
	// Append adds items to the end, skipping ids already present.
	// The first occurrence wins; server order is newest-first.
	Append Mode = iota
	// Replace discards the accumulated list for the parent first.
	Replace
)

// Store accumulates deduplicated, server-ordered lists of one entity
// type, grouped by parent id (the post id for comments, the comment id
// for replies, 0 for the feed itself). Screens render from it via
// List/Subscribe; the pager and mutation layers write to it.
type Store[T Entity] struct {
	mu      sync.Mutex
	lists   map[int64][]T
	owner   map[int64]int64 // entity id -> parent id
	subs    map[int64]map[int64]func([]T)
	nextSub int64
}

func NewStore[T Entity]() *Store[T] {
	return &Store[T]{
		lists: map[int64][]T{},
		owner: map[int64]int64{},
		subs:  map[int64]map[int64]func([]T){},
	}
}

// UpsertPage merges one fetched page into the parent's list.
func (s *Store[T]) UpsertPage(parentId int64, items []T, mode Mode) {
	s.mu.Lock()
	if mode == Replace {
		s.dropLocked(parentId)
	}
	list := s.lists[parentId]
	for _, item := range items {
		id := item.EntityId()
		if _, dup := s.owner[id]; dup {
			continue
		}
		s.owner[id] = parentId
		list = append(list, item)
	}
	s.lists[parentId] = list
	s.mu.Unlock()

	s.notify(parentId)
}

// Prepend puts a freshly created item at the head of the parent's list,
// e.g. a just-published post on top of the feed. Ignored if the id is
// already present.
func (s *Store[T]) Prepend(parentId int64, item T) {
	s.mu.Lock()
	id := item.EntityId()
	if _, dup := s.owner[id]; dup {
		s.mu.Unlock()
		return
	}
	s.owner[id] = parentId
	s.lists[parentId] = append([]T{item}, s.lists[parentId]...)
	s.mu.Unlock()

	s.notify(parentId)
}

// Patch applies fn to the cached entity with the given id. It reports
// false, applying nothing, if the entity isn't cached (paged out or
// never fetched).
func (s *Store[T]) Patch(id int64, fn func(T)) bool {
	s.mu.Lock()
	parentId, ok := s.owner[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	for _, item := range s.lists[parentId] {
		if item.EntityId() == id {
			fn(item)
			break
		}
	}
	s.mu.Unlock()

	s.notify(parentId)
	return true
}

// PatchAll applies fn to every cached entity; fn reports whether it
// changed the item. Parents with at least one change are notified.
// Used for best-effort sweeps like author avatar reconciliation.
func (s *Store[T]) PatchAll(fn func(T) bool) {
	s.mu.Lock()
	changed := map[int64]bool{}
	for parentId, list := range s.lists {
		for _, item := range list {
			if fn(item) {
				changed[parentId] = true
			}
		}
	}
	s.mu.Unlock()

	for parentId := range changed {
		s.notify(parentId)
	}
}

// Get looks up a single cached entity by id.
func (s *Store[T]) Get(id int64) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	parentId, ok := s.owner[id]
	if !ok {
		return zero, false
	}
	for _, item := range s.lists[parentId] {
		if item.EntityId() == id {
			return item, true
		}
	}
	return zero, false
}

// List returns a copy of the parent's accumulated list in server order.
func (s *Store[T]) List(parentId int64) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[parentId]
	out := make([]T, len(list))
	copy(out, list)
	return out
}

func (s *Store[T]) Len(parentId int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lists[parentId])
}

// Drop forgets the parent's accumulated list, e.g. when its screen is
// torn down for good. Subscriptions are not cancelled.
func (s *Store[T]) Drop(parentId int64) {
	s.mu.Lock()
	s.dropLocked(parentId)
	s.mu.Unlock()
}

func (s *Store[T]) dropLocked(parentId int64) {
	for _, item := range s.lists[parentId] {
		delete(s.owner, item.EntityId())
	}
	delete(s.lists, parentId)
}

// Subscribe registers fn to receive the parent's list after every
// change. The returned cancel makes further deliveries no-ops, so a
// response landing after a screen unmounts updates nobody.
func (s *Store[T]) Subscribe(parentId int64, fn func([]T)) (cancel func()) {
	s.mu.Lock()
	s.nextSub++
	key := s.nextSub
	if s.subs[parentId] == nil {
		s.subs[parentId] = map[int64]func([]T){}
	}
	s.subs[parentId][key] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs[parentId], key)
		s.mu.Unlock()
	}
}

func (s *Store[T]) notify(parentId int64) {
	s.mu.Lock()
	fns := make([]func([]T), 0, len(s.subs[parentId]))
	for _, fn := range s.subs[parentId] {
		fns = append(fns, fn)
	}
	list := s.lists[parentId]
	snapshot := make([]T, len(list))
	copy(snapshot, list)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
