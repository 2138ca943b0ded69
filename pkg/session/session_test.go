package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xiaoen-app/appcore/pkg/structs"
)

func TestProvider_LoginAndLogout(t *testing.T) {
	s := New(nil)
	assert.False(t, s.LoggedIn())

	s.Login("tok", structs.User{Id: 1, Nickname: "甲"})
	assert.True(t, s.LoggedIn())
	assert.Equal(t, "tok", s.Token())
	user, ok := s.User()
	assert.True(t, ok)
	assert.Equal(t, "甲", user.Nickname)

	s.Logout()
	assert.False(t, s.LoggedIn())
	_, ok = s.User()
	assert.False(t, ok)
}

func TestProvider_ExpiryFiresOnce(t *testing.T) {
	var fired int
	s := New(func() { fired++ })
	s.Login("tok", structs.User{Id: 1})

	s.HandleExpired()
	s.HandleExpired()
	s.HandleExpired()

	assert.Equal(t, 1, fired)
	assert.Empty(t, s.Token())
}

func TestProvider_LoginRearmsExpiryLatch(t *testing.T) {
	var fired int
	s := New(func() { fired++ })

	s.Login("tok1", structs.User{Id: 1})
	s.HandleExpired()
	assert.Equal(t, 1, fired)

	s.Login("tok2", structs.User{Id: 1})
	s.HandleExpired()
	assert.Equal(t, 2, fired)
}

func TestProvider_SetTokenRearmsLatch(t *testing.T) {
	var fired int
	s := New(func() { fired++ })
	s.SetToken("tok1")
	s.HandleExpired()
	s.SetToken("tok2")
	s.HandleExpired()
	assert.Equal(t, 2, fired)
}

func TestProvider_UserIsACopy(t *testing.T) {
	s := New(nil)
	s.Login("tok", structs.User{Id: 1, Nickname: "甲"})

	user, _ := s.User()
	user.Nickname = "乙"

	again, _ := s.User()
	assert.Equal(t, "甲", again.Nickname)
}
