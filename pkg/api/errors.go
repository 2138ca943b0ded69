package api

import (
	"errors"
	"fmt"
)

var (
	ErrNotLoggedIn    = errors.New("notLoggedIn")    // rejected before any network call
	ErrEmptyContent   = errors.New("emptyContent")   // rejected before any network call
	ErrInvalidRequest = errors.New("invalidRequest") // rejected before any network call
	ErrNetwork        = errors.New("networkError")   // transport failure, safe to retry
	ErrSessionExpired = errors.New("sessionExpired") // token rejected, forced logout fired
)

// Error is an application-level failure (code != CodeOK). Msg is the
// server-supplied text and is shown to the user verbatim when present.
type Error struct {
	Code int
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("server error %d", e.Code)
	}
	return e.Msg
}
