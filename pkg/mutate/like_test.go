package mutate

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaoen-app/appcore/pkg/api"
	"github.com/xiaoen-app/appcore/pkg/cache"
	"github.com/xiaoen-app/appcore/pkg/session"
	"github.com/xiaoen-app/appcore/pkg/structs"
)

func newLikeFixture(send LikeFunc) (*cache.Store[*structs.Comment], *LikeToggler[*structs.Comment]) {
	sess := session.New(nil)
	sess.Login("token", structs.User{Id: 1, Nickname: "tester"})
	store := cache.NewStore[*structs.Comment]()
	store.UpsertPage(1, []*structs.Comment{
		{Id: 7, LikeCount: 4, LikeStatus: 0},
	}, cache.Append)
	return store, NewLikeToggler(sess, store, send)
}

func likeState(t *testing.T, store *cache.Store[*structs.Comment], id int64) (bool, int64) {
	t.Helper()
	c, ok := store.Get(id)
	require.True(t, ok)
	return c.Liked(), c.LikeCount
}

func TestToggle_OptimisticThenConfirmed(t *testing.T) {
	var sentLike bool
	store, toggler := newLikeFixture(func(_ context.Context, id int64, like bool) (*api.LikeResult, error) {
		sentLike = like
		return &api.LikeResult{}, nil // server echoes nothing back
	})

	require.NoError(t, toggler.Toggle(context.Background(), 7))

	assert.True(t, sentLike, "the request carries the intended new status")
	liked, count := likeState(t, store, 7)
	assert.True(t, liked)
	assert.Equal(t, int64(5), count)
}

func TestToggle_ServerStateOverwritesOptimistic(t *testing.T) {
	liked := true
	count := int64(42) // a concurrent like from another device moved it
	store, toggler := newLikeFixture(func(context.Context, int64, bool) (*api.LikeResult, error) {
		return &api.LikeResult{Liked: &liked, Count: &count}, nil
	})

	require.NoError(t, toggler.Toggle(context.Background(), 7))

	gotLiked, gotCount := likeState(t, store, 7)
	assert.True(t, gotLiked)
	assert.Equal(t, int64(42), gotCount)
}

func TestToggle_RollbackOnServerRefusal(t *testing.T) {
	serverErr := &api.Error{Code: 50000, Msg: "不允许"}
	store, toggler := newLikeFixture(func(context.Context, int64, bool) (*api.LikeResult, error) {
		return nil, serverErr
	})

	err := toggler.Toggle(context.Background(), 7)
	assert.ErrorAs(t, err, new(*api.Error))

	liked, count := likeState(t, store, 7)
	assert.False(t, liked)
	assert.Equal(t, int64(4), count)
}

func TestToggle_RollbackOnTransportFailure(t *testing.T) {
	store, toggler := newLikeFixture(func(context.Context, int64, bool) (*api.LikeResult, error) {
		return nil, api.ErrNetwork
	})

	err := toggler.Toggle(context.Background(), 7)
	assert.ErrorIs(t, err, api.ErrNetwork)

	liked, count := likeState(t, store, 7)
	assert.False(t, liked)
	assert.Equal(t, int64(4), count)
}

func TestToggle_RapidSecondTapIsNoop(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	store, toggler := newLikeFixture(func(context.Context, int64, bool) (*api.LikeResult, error) {
		calls.Add(1)
		close(entered)
		<-release
		return &api.LikeResult{}, nil
	})

	done := make(chan error)
	go func() { done <- toggler.Toggle(context.Background(), 7) }()
	<-entered

	// Second tap while the first is outstanding: no call, no change.
	require.NoError(t, toggler.Toggle(context.Background(), 7))
	assert.Equal(t, int32(1), calls.Load())

	close(release)
	require.NoError(t, <-done)

	liked, count := likeState(t, store, 7)
	assert.True(t, liked)
	assert.Equal(t, int64(5), count)
}

func TestToggle_Unliking(t *testing.T) {
	store, toggler := newLikeFixture(func(context.Context, int64, bool) (*api.LikeResult, error) {
		return &api.LikeResult{}, nil
	})
	store.Patch(7, func(c *structs.Comment) { c.SetLike(true, 5) })

	require.NoError(t, toggler.Toggle(context.Background(), 7))

	liked, count := likeState(t, store, 7)
	assert.False(t, liked)
	assert.Equal(t, int64(4), count)
}

func TestToggle_RequiresLogin(t *testing.T) {
	sess := session.New(nil)
	store := cache.NewStore[*structs.Comment]()
	var calls int
	toggler := NewLikeToggler(sess, store, func(context.Context, int64, bool) (*api.LikeResult, error) {
		calls++
		return &api.LikeResult{}, nil
	})

	assert.ErrorIs(t, toggler.Toggle(context.Background(), 7), api.ErrNotLoggedIn)
	assert.Zero(t, calls)
}

func TestToggle_UncachedEntity(t *testing.T) {
	_, toggler := newLikeFixture(func(context.Context, int64, bool) (*api.LikeResult, error) {
		t.Fatal("no network call expected")
		return nil, nil
	})

	assert.ErrorIs(t, toggler.Toggle(context.Background(), 999), ErrNotCached)
}
