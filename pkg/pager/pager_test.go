package pager

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaoen-app/appcore/pkg/cache"
)

type item struct {
	Id int64 `msgpack:"id"`
}

func (i *item) EntityId() int64 { return i.Id }

func page(ids ...int64) []*item {
	out := make([]*item, len(ids))
	for i, id := range ids {
		out[i] = &item{Id: id}
	}
	return out
}

func listIds(list []*item) []int64 {
	out := make([]int64, len(list))
	for i, it := range list {
		out[i] = it.Id
	}
	return out
}

// pagesFetcher serves descending ids from a fixed backing list, the way
// the backend does: everything older than lastId, up to size.
func pagesFetcher(backing []int64) Fetcher[*item] {
	return func(_ context.Context, _ int64, lastId int64, size int) ([]*item, error) {
		out := []*item{}
		for _, id := range backing {
			if lastId != 0 && id >= lastId {
				continue
			}
			out = append(out, &item{Id: id})
			if len(out) == size {
				break
			}
		}
		return out, nil
	}
}

func TestPager_LoadMoreAdvancesCursor(t *testing.T) {
	store := cache.NewStore[*item]()
	backing := []int64{108, 107, 106, 105, 104, 103, 102, 101, 100, 99, 98, 97, 96}
	p := New(store, pagesFetcher(backing), 8)
	ctx := context.Background()

	require.NoError(t, p.LoadMore(ctx, 0))
	assert.Equal(t, int64(101), p.Cursor(0))
	assert.True(t, p.HasMore(0))
	assert.Equal(t, 8, store.Len(0))

	require.NoError(t, p.LoadMore(ctx, 0))
	assert.Equal(t, int64(96), p.Cursor(0))
	assert.False(t, p.HasMore(0))
	assert.Equal(t, 13, store.Len(0))
}

func TestPager_NoDuplicatesAcrossOverlappingPages(t *testing.T) {
	store := cache.NewStore[*item]()
	pages := [][]*item{
		page(10, 9, 8),
		page(8, 7, 6), // server shifted under us; 8 repeats
	}
	var call int
	fetch := func(context.Context, int64, int64, int) ([]*item, error) {
		out := pages[call]
		call++
		return out, nil
	}
	p := New(store, fetch, 3)
	ctx := context.Background()

	require.NoError(t, p.LoadMore(ctx, 0))
	require.NoError(t, p.LoadMore(ctx, 0))

	assert.Equal(t, []int64{10, 9, 8, 7, 6}, listIds(store.List(0)))
}

func TestPager_ExhaustionIsSticky(t *testing.T) {
	store := cache.NewStore[*item]()
	var calls int
	fetch := func(context.Context, int64, int64, int) ([]*item, error) {
		calls++
		return page(3, 2), nil // short page
	}
	p := New(store, fetch, 3)
	ctx := context.Background()

	require.NoError(t, p.LoadMore(ctx, 0))
	assert.False(t, p.HasMore(0))

	// Exhausted: further LoadMore calls never hit the network.
	require.NoError(t, p.LoadMore(ctx, 0))
	require.NoError(t, p.LoadMore(ctx, 0))
	assert.Equal(t, 1, calls)
}

func TestPager_RefreshReplacesAndRearms(t *testing.T) {
	store := cache.NewStore[*item]()
	pages := [][]*item{
		page(108, 107, 106, 105, 104, 103, 102, 101),
		page(100, 99, 98, 97, 96),
		page(120, 119, 118, 117, 116, 115, 114, 113),
	}
	var call int
	fetch := func(_ context.Context, _ int64, lastId int64, _ int) ([]*item, error) {
		out := pages[call]
		call++
		return out, nil
	}
	p := New(store, fetch, 8)
	ctx := context.Background()

	require.NoError(t, p.LoadMore(ctx, 0))
	require.NoError(t, p.LoadMore(ctx, 0))
	assert.Equal(t, 13, store.Len(0))
	assert.False(t, p.HasMore(0))

	require.NoError(t, p.Refresh(ctx, 0))
	assert.Equal(t, []int64{120, 119, 118, 117, 116, 115, 114, 113}, listIds(store.List(0)))
	assert.Equal(t, int64(113), p.Cursor(0))
	assert.True(t, p.HasMore(0))
}

func TestPager_RefreshOfEmptyListResetsCursor(t *testing.T) {
	store := cache.NewStore[*item]()
	fetch := func(context.Context, int64, int64, int) ([]*item, error) {
		return []*item{}, nil
	}
	p := New(store, fetch, 8)

	require.NoError(t, p.Refresh(context.Background(), 0))
	assert.Equal(t, int64(0), p.Cursor(0))
	assert.False(t, p.HasMore(0))
}

func TestPager_ErrorLeavesStateUntouched(t *testing.T) {
	store := cache.NewStore[*item]()
	fail := errors.New("boom")
	var failing atomic.Bool
	fetch := func(context.Context, int64, int64, int) ([]*item, error) {
		if failing.Load() {
			return nil, fail
		}
		return page(10, 9, 8), nil
	}
	p := New(store, fetch, 3)
	ctx := context.Background()

	require.NoError(t, p.LoadMore(ctx, 0))
	require.Equal(t, int64(8), p.Cursor(0))

	failing.Store(true)
	assert.ErrorIs(t, p.LoadMore(ctx, 0), fail)
	assert.Equal(t, int64(8), p.Cursor(0))
	assert.True(t, p.HasMore(0))
	assert.Equal(t, 3, store.Len(0))
	assert.False(t, p.Loading(0))

	// Safe to retry.
	failing.Store(false)
	require.NoError(t, p.LoadMore(ctx, 0))
	assert.Equal(t, 6, store.Len(0))
}

func TestPager_SingleFlightPerParent(t *testing.T) {
	store := cache.NewStore[*item]()
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(context.Context, int64, int64, int) ([]*item, error) {
		calls.Add(1)
		close(entered)
		<-release
		return page(10, 9, 8), nil
	}
	p := New(store, fetch, 3)
	ctx := context.Background()

	done := make(chan error)
	go func() { done <- p.LoadMore(ctx, 0) }()
	<-entered

	// Second tap while the first is outstanding: silent no-op.
	require.NoError(t, p.LoadMore(ctx, 0))
	assert.Equal(t, int32(1), calls.Load())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 3, store.Len(0))
}

func TestPager_RefreshSupersedesInFlightLoadMore(t *testing.T) {
	store := cache.NewStore[*item]()
	entered := make(chan struct{})
	release := make(chan struct{})
	var call atomic.Int32
	fetch := func(context.Context, int64, int64, int) ([]*item, error) {
		if call.Add(1) == 1 {
			close(entered)
			<-release // the orphaned LoadMore; resolves last
			return page(5, 4, 3), nil
		}
		return page(10, 9, 8), nil
	}
	p := New(store, fetch, 3)
	ctx := context.Background()

	done := make(chan error)
	go func() { done <- p.LoadMore(ctx, 0) }()
	<-entered

	// Refresh wins even though its response arrives first.
	require.NoError(t, p.Refresh(ctx, 0))

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, []int64{10, 9, 8}, listIds(store.List(0)))
	assert.Equal(t, int64(8), p.Cursor(0))
}

func TestPager_ParentsAreIndependent(t *testing.T) {
	store := cache.NewStore[*item]()
	fetch := func(_ context.Context, parentId, _ int64, _ int) ([]*item, error) {
		return page(parentId*100 + 2, parentId*100 + 1), nil
	}
	p := New(store, fetch, 2)
	ctx := context.Background()

	require.NoError(t, p.LoadMore(ctx, 1))
	require.NoError(t, p.LoadMore(ctx, 2))

	assert.Equal(t, []int64{102, 101}, listIds(store.List(1)))
	assert.Equal(t, []int64{202, 201}, listIds(store.List(2)))
	assert.Equal(t, int64(101), p.Cursor(1))
	assert.Equal(t, int64(201), p.Cursor(2))
}
