package session

import (
	"sync"

	"github.com/xiaoen-app/appcore/pkg/structs"
)

// Provider owns the bearer token and the signed-in user. The pager and
// mutation layers only read it; it is written by the login/logout flow.
type Provider struct {
	mu        sync.Mutex
	token     string
	user      *structs.User
	expired   bool
	onExpired func()
}

// New creates a logged-out provider. onExpired is invoked (at most once
// per login) when the backend signals that the token is no longer valid.
func New(onExpired func()) *Provider {
	return &Provider{onExpired: onExpired}
}

func (p *Provider) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}

func (p *Provider) LoggedIn() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token != ""
}

// User returns a copy of the current user, if one is known.
func (p *Provider) User() (structs.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.user == nil {
		return structs.User{}, false
	}
	return *p.user, true
}

// SetToken stores a fresh credential and re-arms the expiry latch.
func (p *Provider) SetToken(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = token
	p.expired = false
}

// Login stores a fresh credential and the user it belongs to, and
// re-arms the expiry latch.
func (p *Provider) Login(token string, user structs.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = token
	p.user = &user
	p.expired = false
}

// SetUser replaces the cached profile (e.g. after a nickname or avatar
// update) without touching the token.
func (p *Provider) SetUser(user structs.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.user = &user
}

func (p *Provider) Logout() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
	p.user = nil
}

// HandleExpired drops the dead token and fires the expiry callback.
// Subsequent failures attributable to the same expired session are
// swallowed until the next Login.
func (p *Provider) HandleExpired() {
	p.mu.Lock()
	if p.expired {
		p.mu.Unlock()
		return
	}
	p.expired = true
	p.token = ""
	cb := p.onExpired
	p.mu.Unlock()

	if cb != nil {
		cb()
	}
}
