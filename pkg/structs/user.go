package structs

// User is the signed-in user's profile, from
// /api/v1/user/auth/get_userinfo.
type User struct {
	Id         int64  `json:"id" msgpack:"id"`
	Username   string `json:"username" msgpack:"username"`
	Nickname   string `json:"nickname" msgpack:"nickname"`
	AvatarUrl  string `json:"avatar_url" msgpack:"avatar_url"`
	Department string `json:"department,omitempty" msgpack:"department,omitempty"`
	Campus     string `json:"campus,omitempty" msgpack:"campus,omitempty"`
}
