package api

import (
	"context"

	"github.com/xiaoen-app/appcore/pkg/structs"
)

const (
	// CommentPageSize is the page size for top-level comments.
	CommentPageSize = 10
	// ReplyPageSize is the page size for replies under a comment. The
	// reply list is always paged; there is no fetch-everything mode.
	ReplyPageSize = 10
)

type listCommentsReq struct {
	LastCid int64 `json:"last_cid" validate:"min=0"`
	PostId  int64 `json:"post_id" validate:"required"`
	Size    int   `json:"size" validate:"required,min=1,max=100"`
}

// ListComments fetches up to size comments under a post, older than
// lastCid, newest first.
func (c *Client) ListComments(ctx context.Context, postId, lastCid int64, size int) ([]*structs.Comment, error) {
	comments := []*structs.Comment{}
	err := c.postInto(ctx, "/api/v1/comment/auth/list", listCommentsReq{
		LastCid: lastCid,
		PostId:  postId,
		Size:    size,
	}, true, &comments)
	return comments, err
}

type listRepliesReq struct {
	LastScid int64 `json:"last_scid" validate:"min=0"`
	Parent   int64 `json:"parent" validate:"required"`
	Size     int   `json:"size" validate:"required,min=1,max=100"`
}

// ListReplies fetches up to size replies under a comment, older than
// lastScid.
func (c *Client) ListReplies(ctx context.Context, commentId, lastScid int64, size int) ([]*structs.Reply, error) {
	replies := []*structs.Reply{}
	err := c.postInto(ctx, "/api/v1/comment/auth/listreply", listRepliesReq{
		LastScid: lastScid,
		Parent:   commentId,
		Size:     size,
	}, true, &replies)
	return replies, err
}

type createCommentReq struct {
	Content string `json:"content" validate:"required"`
	PostId  int64  `json:"post_id" validate:"required"`
}

// CreateComment posts a top-level comment. The caller re-fetches the
// comment list afterwards; the server owns the new id.
func (c *Client) CreateComment(ctx context.Context, postId int64, content string) error {
	_, err := c.post(ctx, "/api/v1/comment/auth/create", createCommentReq{
		Content: content,
		PostId:  postId,
	}, true)
	return err
}

type createReplyReq struct {
	Content string `json:"content" validate:"required"`
	PostId  int64  `json:"post_id" validate:"required"`
	Parent  int64  `json:"parent" validate:"required"`
	Reply   int64  `json:"reply"`
}

// CreateReply posts a reply under a comment. replyTo is the poster id
// being addressed within the thread, 0 when replying to the comment
// itself.
func (c *Client) CreateReply(ctx context.Context, postId, commentId, replyTo int64, content string) error {
	_, err := c.post(ctx, "/api/v1/comment/auth/createreply", createReplyReq{
		Content: content,
		PostId:  postId,
		Parent:  commentId,
		Reply:   replyTo,
	}, true)
	return err
}

type likeCommentReq struct {
	CommentId  int64 `json:"comment_id" validate:"required"`
	LikeStatus int8  `json:"like_status" validate:"min=0,max=1"`
}

// LikeComment sets the viewer's like state on a comment.
func (c *Client) LikeComment(ctx context.Context, commentId int64, like bool) (*LikeResult, error) {
	req := likeCommentReq{CommentId: commentId}
	if like {
		req.LikeStatus = 1
	}
	env, err := c.post(ctx, "/api/v1/comment/auth/like", req, true)
	if err != nil {
		return nil, err
	}
	return likeResult(env), nil
}
