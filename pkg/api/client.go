package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"github.com/xiaoen-app/appcore/pkg/session"
)

const (
	DefaultBaseUrl = "https://remote.xiaoen.xyz"

	// The backend doesn't enforce a deadline, so the client does.
	RequestTimeout = 15 * time.Second

	CodeOK           = 10000
	CodeTokenExpired = 40003
)

var validate = validator.New()

// Client talks to the backend over its POST+JSON envelope. All state it
// needs besides the base URL comes from the session provider; it never
// writes the session except to trip the expiry latch.
type Client struct {
	baseUrl string
	http    *http.Client
	session *session.Provider
}

func NewClient(baseUrl string, s *session.Provider) *Client {
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	return &Client{
		baseUrl: baseUrl,
		http:    &http.Client{Timeout: RequestTimeout},
		session: s,
	}
}

// envelope is the uniform response wrapper. The like endpoints report
// the new state beside the envelope rather than inside data.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`

	LikeStatus *int8  `json:"like_status"`
	LikeCount  *int64 `json:"like_count"`
}

// post issues one call and handles the shared envelope concerns: auth
// header, timeout, expiry codes and the success sentinel.
func (c *Client) post(ctx context.Context, path string, body interface{}, withAuth bool) (*envelope, error) {
	var reqBody io.Reader
	if body != nil {
		if err := validate.Struct(body); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		marshaled, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		reqBody = bytes.NewReader(marshaled)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if withAuth {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		sentry.CaptureException(err)
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.session.HandleExpired()
		return nil, ErrSessionExpired
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		sentry.CaptureException(err)
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	// Some endpoints return 204 with an empty body.
	var env envelope
	if len(raw) == 0 {
		env.Code = CodeOK
		return &env, nil
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		sentry.CaptureException(err)
		return nil, fmt.Errorf("%w: malformed response: %v", ErrNetwork, err)
	}

	if env.Code == CodeTokenExpired || env.Code == http.StatusUnauthorized {
		c.session.HandleExpired()
		return nil, ErrSessionExpired
	}
	if env.Code != CodeOK {
		return nil, &Error{Code: env.Code, Msg: env.Msg}
	}

	return &env, nil
}

// postInto issues a call and unmarshals the envelope's data into out.
func (c *Client) postInto(ctx context.Context, path string, body interface{}, withAuth bool, out interface{}) error {
	env, err := c.post(ctx, path, body, withAuth)
	if err != nil {
		return err
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		sentry.CaptureException(err)
		return fmt.Errorf("%w: malformed data: %v", ErrNetwork, err)
	}
	return nil
}
