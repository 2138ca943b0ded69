package structs

// Comment is a top-level comment under a post, from
// /api/v1/comment/auth/list. CommentCount is the number of replies
// below it.
type Comment struct {
	Id             int64  `json:"id" msgpack:"id"`
	PostId         int64  `json:"post_id" msgpack:"post_id"`
	Content        string `json:"content" msgpack:"content"`
	PosterNickname string `json:"poster_nickname" msgpack:"poster_nickname"`
	AvatarUrl      string `json:"avatar_url" msgpack:"avatar_url"`
	LikeCount      int64  `json:"like_count" msgpack:"like_count"`
	LikeStatus     int8   `json:"like_status" msgpack:"like_status"` // 0 / 1
	CommentCount   int64  `json:"comment_count" msgpack:"comment_count"`
	CreateAt       string `json:"create_at" msgpack:"create_at"`
}

func (c *Comment) EntityId() int64 {
	return c.Id
}

func (c *Comment) Liked() bool {
	return c.LikeStatus == 1
}

func (c *Comment) Likes() int64 {
	return c.LikeCount
}

func (c *Comment) SetLike(liked bool, count int64) {
	if liked {
		c.LikeStatus = 1
	} else {
		c.LikeStatus = 0
	}
	c.LikeCount = count
}

func (c *Comment) AuthoredBy(u User) bool {
	return u.Nickname != "" && c.PosterNickname == u.Nickname
}

func (c *Comment) SetAvatarUrl(url string) {
	c.AvatarUrl = url
}
