package api

import (
	"context"

	"github.com/xiaoen-app/appcore/pkg/structs"
)

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginData struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token. It does not touch the
// session; the caller stores the token there once the user profile has
// been fetched.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var data loginData
	err := c.postInto(ctx, "/api/v1/user/login", loginReq{
		Username: username,
		Password: password,
	}, false, &data)
	return data.Token, err
}

// GetUserInfo fetches the signed-in user's profile.
func (c *Client) GetUserInfo(ctx context.Context) (*structs.User, error) {
	var user structs.User
	err := c.postInto(ctx, "/api/v1/user/auth/get_userinfo", nil, true, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type updateUserReq struct {
	Nickname   string `json:"nickname" validate:"required,max=32"`
	Department string `json:"department,omitempty"`
	Campus     string `json:"campus,omitempty"`
}

// UpdateUserInfo pushes edited profile fields.
func (c *Client) UpdateUserInfo(ctx context.Context, user structs.User) error {
	_, err := c.post(ctx, "/api/v1/user/auth/update_userinfo", updateUserReq{
		Nickname:   user.Nickname,
		Department: user.Department,
		Campus:     user.Campus,
	}, true)
	return err
}
