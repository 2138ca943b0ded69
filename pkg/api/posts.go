package api

import (
	"context"
	"fmt"

	"github.com/xiaoen-app/appcore/pkg/structs"
)

// PostPageSize is the feed page size the post list screen requests.
const PostPageSize = 8

type listPostsReq struct {
	LastPid int64 `json:"last_pid" validate:"min=0"`
	Size    int   `json:"size" validate:"required,min=1,max=100"`
}

// ListPosts fetches up to size posts older than lastPid, newest first.
// lastPid 0 starts from the top of the feed.
func (c *Client) ListPosts(ctx context.Context, lastPid int64, size int) ([]*structs.Post, error) {
	posts := []*structs.Post{}
	err := c.postInto(ctx, "/api/v1/post/auth/list", listPostsReq{
		LastPid: lastPid,
		Size:    size,
	}, true, &posts)
	return posts, err
}

// GetPost fetches one post with the viewer's like state filled in.
func (c *Client) GetPost(ctx context.Context, id int64) (*structs.Post, error) {
	var post structs.Post
	err := c.postInto(ctx, fmt.Sprintf("/api/v1/post/auth/%d", id), nil, true, &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

type createPostReq struct {
	Title     string   `json:"title" validate:"required,max=100"`
	Content   string   `json:"content" validate:"required"`
	ImageUrls []string `json:"image_urls,omitempty" validate:"max=9"`
}

type createPostData struct {
	Id int64 `json:"id"`
}

// CreatePost publishes a post and returns the server-assigned id.
func (c *Client) CreatePost(ctx context.Context, title, content string, imageUrls []string) (int64, error) {
	var data createPostData
	err := c.postInto(ctx, "/api/v1/post/auth/create", createPostReq{
		Title:     title,
		Content:   content,
		ImageUrls: imageUrls,
	}, true, &data)
	return data.Id, err
}

type likePostReq struct {
	PostId     int64 `json:"post_id" validate:"required"`
	LikeStatus int8  `json:"like_status" validate:"min=0,max=1"`
}

// LikeResult is the authoritative like state echoed by the like
// endpoints. Fields are nil when the server omits them, in which case
// the optimistic values stand.
type LikeResult struct {
	Liked *bool
	Count *int64
}

func likeResult(env *envelope) *LikeResult {
	res := &LikeResult{Count: env.LikeCount}
	if env.LikeStatus != nil {
		liked := *env.LikeStatus == 1
		res.Liked = &liked
	}
	return res
}

// LikePost sets the viewer's like state on a post. like carries the
// intended new status, not the current one.
func (c *Client) LikePost(ctx context.Context, postId int64, like bool) (*LikeResult, error) {
	req := likePostReq{PostId: postId}
	if like {
		req.LikeStatus = 1
	}
	env, err := c.post(ctx, "/api/v1/post/auth/like", req, true)
	if err != nil {
		return nil, err
	}
	return likeResult(env), nil
}
