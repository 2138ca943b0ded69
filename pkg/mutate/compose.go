package mutate

import (
	"context"
	"strings"
	"sync"

	"github.com/xiaoen-app/appcore/pkg/api"
	"github.com/xiaoen-app/appcore/pkg/session"
)

// SubmitFunc performs the create call for whatever the composer is
// currently aimed at (a comment under a post, a reply within a thread).
type SubmitFunc func(ctx context.Context, content string) error

// Composer backs the comment input bar. Submission is
// confirm-then-refresh: the created item is never inserted into the
// cache optimistically, because the server owns the new id; callers
// re-fetch the list after a successful send. The draft survives a
// failed send so nothing the user typed is lost.
type Composer struct {
	session *session.Provider

	mu   sync.Mutex
	text string
	busy bool
}

func NewComposer(s *session.Provider) *Composer {
	return &Composer{session: s}
}

func (c *Composer) SetText(text string) {
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()
}

func (c *Composer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Submit sends the current draft. Empty (after trimming) drafts and
// logged-out sessions are rejected before any network call. The draft
// is cleared only when send succeeds.
func (c *Composer) Submit(ctx context.Context, send SubmitFunc) error {
	c.mu.Lock()
	content := strings.TrimSpace(c.text)
	if content == "" {
		c.mu.Unlock()
		return api.ErrEmptyContent
	}
	if c.busy {
		c.mu.Unlock()
		return nil
	}
	c.busy = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	if !c.session.LoggedIn() {
		return api.ErrNotLoggedIn
	}

	if err := send(ctx, content); err != nil {
		return err
	}

	c.mu.Lock()
	c.text = ""
	c.mu.Unlock()
	return nil
}
