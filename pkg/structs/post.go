package structs

// Post is a feed post as the backend returns it from
// /api/v1/post/auth/list and /api/v1/post/auth/{id}.
type Post struct {
	Id             int64    `json:"id" msgpack:"id"`
	Title          string   `json:"title" msgpack:"title"`
	Content        string   `json:"content" msgpack:"content"`
	PosterNickname string   `json:"poster_nickname" msgpack:"poster_nickname"`
	PosterDept     string   `json:"poster_department,omitempty" msgpack:"poster_department,omitempty"`
	PosterCampus   string   `json:"poster_campus,omitempty" msgpack:"poster_campus,omitempty"`
	AvatarUrl      string   `json:"avatar_url" msgpack:"avatar_url"`
	ImageUrls      []string `json:"image_urls,omitempty" msgpack:"image_urls,omitempty"`
	LikeCount      int64    `json:"like_count" msgpack:"like_count"`
	LikeStatus     int8     `json:"like_status" msgpack:"like_status"` // 0 / 1
	CollectCount   int64    `json:"collect_count" msgpack:"collect_count"`
	CommentCount   int64    `json:"comment_count" msgpack:"comment_count"`
	ViewCount      int64    `json:"view_count" msgpack:"view_count"`
	CreateAt       string   `json:"create_at" msgpack:"create_at"`
}

func (p *Post) EntityId() int64 {
	return p.Id
}

func (p *Post) Liked() bool {
	return p.LikeStatus == 1
}

func (p *Post) Likes() int64 {
	return p.LikeCount
}

func (p *Post) SetLike(liked bool, count int64) {
	if liked {
		p.LikeStatus = 1
	} else {
		p.LikeStatus = 0
	}
	p.LikeCount = count
}

// The post list doesn't carry a poster id, so author matching
// falls back to nickname equality.
func (p *Post) AuthoredBy(u User) bool {
	return u.Nickname != "" && p.PosterNickname == u.Nickname
}

func (p *Post) SetAvatarUrl(url string) {
	p.AvatarUrl = url
}
