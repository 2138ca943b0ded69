package structs

// Reply is a second-level comment, from /api/v1/comment/auth/listreply.
// Replies are flat under their parent comment; ReplyToId is the poster
// id of whoever within the thread this reply addresses.
type Reply struct {
	Id             int64  `json:"id" msgpack:"id"`
	Parent         int64  `json:"parent" msgpack:"parent"` // parent comment id
	PosterId       int64  `json:"poster_id" msgpack:"poster_id"`
	PosterNickname string `json:"poster_nickname" msgpack:"poster_nickname"`
	AvatarUrl      string `json:"avatar_url" msgpack:"avatar_url"`
	Content        string `json:"content" msgpack:"content"`
	ReplyToId      int64  `json:"reply" msgpack:"reply"`
	CreateAt       string `json:"create_at" msgpack:"create_at"`
}

func (r *Reply) EntityId() int64 {
	return r.Id
}

// Replies carry a poster id, so matching by id is preferred and the
// nickname is only consulted when the id is missing.
func (r *Reply) AuthoredBy(u User) bool {
	if r.PosterId != 0 && u.Id != 0 {
		return r.PosterId == u.Id
	}
	return u.Nickname != "" && r.PosterNickname == u.Nickname
}

func (r *Reply) SetAvatarUrl(url string) {
	r.AvatarUrl = url
}
