// Package mutate implements the user-action half of the state core:
// optimistic like toggles with rollback, and confirm-then-refresh
// submission for authored comments and replies.
package mutate

import (
	"context"
	"errors"
	"sync"

	"github.com/xiaoen-app/appcore/pkg/api"
	"github.com/xiaoen-app/appcore/pkg/cache"
	"github.com/xiaoen-app/appcore/pkg/session"
)

var ErrNotCached = errors.New("entityNotCached")

// Likeable is a cached entity whose like state can be flipped in place.
type Likeable interface {
	cache.Entity
	Liked() bool
	Likes() int64
	SetLike(liked bool, count int64)
}

// LikeFunc performs the network half of a toggle, carrying the intended
// new status, and returns whatever authoritative state the server
// echoes back.
type LikeFunc func(ctx context.Context, id int64, like bool) (*api.LikeResult, error)

// LikeToggler flips an entity's like state in the cache immediately,
// confirms it over the network, and rolls back if the server or the
// transport refuses. At most one toggle per entity id is in flight; a
// second tap while one is outstanding is a silent no-op.
type LikeToggler[T Likeable] struct {
	session *session.Provider
	store   *cache.Store[T]
	send    LikeFunc

	mu       sync.Mutex
	inflight map[int64]struct{}
}

func NewLikeToggler[T Likeable](s *session.Provider, store *cache.Store[T], send LikeFunc) *LikeToggler[T] {
	return &LikeToggler[T]{
		session:  s,
		store:    store,
		send:     send,
		inflight: map[int64]struct{}{},
	}
}

// Toggle flips the like state of the cached entity with the given id.
// The cache reflects the flip before the network call resolves; on any
// failure the pre-toggle count and status are restored exactly.
func (t *LikeToggler[T]) Toggle(ctx context.Context, id int64) error {
	if !t.session.LoggedIn() {
		return api.ErrNotLoggedIn
	}

	t.mu.Lock()
	if _, busy := t.inflight[id]; busy {
		t.mu.Unlock()
		return nil
	}
	t.inflight[id] = struct{}{}
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		delete(t.inflight, id)
		t.mu.Unlock()
	}()

	// Optimistic flip, remembering the snapshot to restore on failure.
	var prevLiked, nextLiked bool
	var prevCount int64
	if !t.store.Patch(id, func(e T) {
		prevLiked = e.Liked()
		prevCount = e.Likes()
		nextLiked = !prevLiked
		if nextLiked {
			e.SetLike(true, prevCount+1)
		} else {
			e.SetLike(false, prevCount-1)
		}
	}) {
		return ErrNotCached
	}

	res, err := t.send(ctx, id, nextLiked)
	if err != nil {
		t.store.Patch(id, func(e T) {
			e.SetLike(prevLiked, prevCount)
		})
		return err
	}

	// The server is the source of truth when it echoes state back;
	// a concurrent like from another device may have moved the count.
	if res != nil && (res.Liked != nil || res.Count != nil) {
		t.store.Patch(id, func(e T) {
			liked := e.Liked()
			count := e.Likes()
			if res.Liked != nil {
				liked = *res.Liked
			}
			if res.Count != nil {
				count = *res.Count
			}
			e.SetLike(liked, count)
		})
	}
	return nil
}
