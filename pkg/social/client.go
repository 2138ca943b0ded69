// Package social wires the api client, session, caches, pagers and
// mutators into the operations the post, detail and profile screens
// consume.
package social

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xiaoen-app/appcore/pkg/api"
	"github.com/xiaoen-app/appcore/pkg/cache"
	"github.com/xiaoen-app/appcore/pkg/mutate"
	"github.com/xiaoen-app/appcore/pkg/pager"
	"github.com/xiaoen-app/appcore/pkg/session"
	"github.com/xiaoen-app/appcore/pkg/structs"
)

const (
	// FeedParent keys the home feed in the post store.
	FeedParent int64 = 0
	// detailParent holds posts opened outside the feed (deep links),
	// so their like state has a cache entry to live in.
	detailParent int64 = -1
)

type Client struct {
	api     *api.Client
	session *session.Provider

	Posts    *cache.Store[*structs.Post]
	Comments *cache.Store[*structs.Comment]
	Replies  *cache.Store[*structs.Reply]

	feed     *pager.Pager[*structs.Post]
	comments *pager.Pager[*structs.Comment]
	replies  *pager.Pager[*structs.Reply]

	postLikes    *mutate.LikeToggler[*structs.Post]
	commentLikes *mutate.LikeToggler[*structs.Comment]
}

func NewClient(a *api.Client, s *session.Provider) *Client {
	c := &Client{
		api:      a,
		session:  s,
		Posts:    cache.NewStore[*structs.Post](),
		Comments: cache.NewStore[*structs.Comment](),
		Replies:  cache.NewStore[*structs.Reply](),
	}

	c.feed = pager.New(c.Posts, func(ctx context.Context, _ int64, lastId int64, size int) ([]*structs.Post, error) {
		return a.ListPosts(ctx, lastId, size)
	}, api.PostPageSize)
	c.comments = pager.New(c.Comments, func(ctx context.Context, postId, lastId int64, size int) ([]*structs.Comment, error) {
		return a.ListComments(ctx, postId, lastId, size)
	}, api.CommentPageSize)
	c.replies = pager.New(c.Replies, func(ctx context.Context, commentId, lastId int64, size int) ([]*structs.Reply, error) {
		return a.ListReplies(ctx, commentId, lastId, size)
	}, api.ReplyPageSize)

	c.postLikes = mutate.NewLikeToggler(s, c.Posts, func(ctx context.Context, id int64, like bool) (*api.LikeResult, error) {
		return a.LikePost(ctx, id, like)
	})
	c.commentLikes = mutate.NewLikeToggler(s, c.Comments, func(ctx context.Context, id int64, like bool) (*api.LikeResult, error) {
		return a.LikeComment(ctx, id, like)
	})

	return c
}

/* ---- feed ---- */

func (c *Client) LoadMoreFeed(ctx context.Context) error {
	return c.feed.LoadMore(ctx, FeedParent)
}

func (c *Client) RefreshFeed(ctx context.Context) error {
	return c.feed.Refresh(ctx, FeedParent)
}

func (c *Client) FeedHasMore() bool {
	return c.feed.HasMore(FeedParent)
}

/* ---- comments ---- */

func (c *Client) LoadMoreComments(ctx context.Context, postId int64) error {
	return c.comments.LoadMore(ctx, postId)
}

func (c *Client) RefreshComments(ctx context.Context, postId int64) error {
	return c.comments.Refresh(ctx, postId)
}

func (c *Client) CommentsHaveMore(postId int64) bool {
	return c.comments.HasMore(postId)
}

/* ---- replies ---- */

func (c *Client) LoadMoreReplies(ctx context.Context, commentId int64) error {
	return c.replies.LoadMore(ctx, commentId)
}

func (c *Client) RefreshReplies(ctx context.Context, commentId int64) error {
	return c.replies.Refresh(ctx, commentId)
}

func (c *Client) RepliesHaveMore(commentId int64) bool {
	return c.replies.HasMore(commentId)
}

/* ---- likes ---- */

func (c *Client) TogglePostLike(ctx context.Context, postId int64) error {
	return c.postLikes.Toggle(ctx, postId)
}

func (c *Client) ToggleCommentLike(ctx context.Context, commentId int64) error {
	return c.commentLikes.Toggle(ctx, commentId)
}

/* ---- detail ---- */

// LoadPost fetches one post and reconciles the cache with the
// authoritative copy. Posts opened outside the feed get a cache entry
// of their own so like toggles still have something to patch.
func (c *Client) LoadPost(ctx context.Context, id int64) (*structs.Post, error) {
	post, err := c.api.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	patched := c.Posts.Patch(id, func(p *structs.Post) {
		*p = *post
	})
	if !patched {
		c.Posts.Prepend(detailParent, post)
	}
	cached, _ := c.Posts.Get(id)
	return cached, nil
}

/* ---- authored content ---- */

// PublishPost creates a post and puts it on top of the in-memory feed
// under the server-assigned id.
func (c *Client) PublishPost(ctx context.Context, title, content string, imageUrls []string) (int64, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return 0, api.ErrEmptyContent
	}
	if !c.session.LoggedIn() {
		return 0, api.ErrNotLoggedIn
	}

	id, err := c.api.CreatePost(ctx, title, content, imageUrls)
	if err != nil {
		return 0, err
	}

	user, _ := c.session.User()
	c.Posts.Prepend(FeedParent, &structs.Post{
		Id:             id,
		Title:          title,
		Content:        content,
		PosterNickname: user.Nickname,
		AvatarUrl:      user.AvatarUrl,
		ImageUrls:      imageUrls,
		CreateAt:       time.Now().Format("2006-01-02 15:04:05"),
	})
	return id, nil
}

// SubmitComment creates a top-level comment and then re-fetches the
// post's comment list; the new comment is never inserted locally
// because the server owns its id.
func (c *Client) SubmitComment(ctx context.Context, postId int64, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return api.ErrEmptyContent
	}
	if !c.session.LoggedIn() {
		return api.ErrNotLoggedIn
	}
	if err := c.api.CreateComment(ctx, postId, content); err != nil {
		return err
	}
	return c.comments.Refresh(ctx, postId)
}

// SubmitReply creates a reply under a comment and re-fetches the
// thread. replyTo is the poster id being addressed, 0 for the comment
// itself.
func (c *Client) SubmitReply(ctx context.Context, postId, commentId, replyTo int64, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return api.ErrEmptyContent
	}
	if !c.session.LoggedIn() {
		return api.ErrNotLoggedIn
	}
	if err := c.api.CreateReply(ctx, postId, commentId, replyTo, content); err != nil {
		return err
	}
	return c.replies.Refresh(ctx, commentId)
}

// NewComposer returns a draft holder bound to this client's session,
// for the comment input bar.
func (c *Client) NewComposer() *mutate.Composer {
	return mutate.NewComposer(c.session)
}

/* ---- profile ---- */

// Login exchanges credentials for a token, then fetches the profile so
// author reconciliation has an identity to match against.
func (c *Client) Login(ctx context.Context, username, password string) error {
	token, err := c.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	c.session.SetToken(token)
	user, err := c.api.GetUserInfo(ctx)
	if err != nil {
		return err
	}
	c.session.SetUser(*user)
	return nil
}

// SetAvatar records the user's new avatar and sweeps the caches,
// re-pointing every entity the user authored at the new image. The
// version suffix busts stale image caches downstream. This is a
// cosmetic best-effort sync; posts and comments match by nickname only,
// which can collide, so replies match by poster id first.
func (c *Client) SetAvatar(url string) {
	user, ok := c.session.User()
	if !ok {
		return
	}
	user.AvatarUrl = url
	c.session.SetUser(user)

	busted := fmt.Sprintf("%s?v=%d", url, time.Now().Unix())
	c.Posts.PatchAll(func(p *structs.Post) bool {
		if !p.AuthoredBy(user) {
			return false
		}
		p.SetAvatarUrl(busted)
		return true
	})
	c.Comments.PatchAll(func(cm *structs.Comment) bool {
		if !cm.AuthoredBy(user) {
			return false
		}
		cm.SetAvatarUrl(busted)
		return true
	})
	c.Replies.PatchAll(func(r *structs.Reply) bool {
		if !r.AuthoredBy(user) {
			return false
		}
		r.SetAvatarUrl(busted)
		return true
	})
}
