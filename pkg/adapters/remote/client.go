// Package remote implements the gateway to the pad host's REST API.
//
// The gateway owns one outstanding credential and classifies every
// transport and HTTP failure into the core error taxonomy before it
// reaches the sync engine.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/padsync/padsync/pkg/core"
)

// DefaultAPIURL is the pad host's REST endpoint.
const DefaultAPIURL = "https://api.mdpad.io/v1"

const (
	defaultTimeout     = 10 * time.Second
	defaultSettleDelay = 500 * time.Millisecond
	defaultMaxRetries  = 2
	defaultBackoff     = 250 * time.Millisecond
)

// Client talks to the pad host. It caches one verified session per token
// value: the session is reused until the token changes or authentication
// fails.
type Client struct {
	baseURL     string
	httpc       *http.Client
	logger      *slog.Logger
	settleDelay time.Duration
	maxRetries  int
	backoff     time.Duration

	mu           sync.Mutex
	token        string
	session      *core.UserInfo
	sessionToken string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client. Tests use this alongside
// httptest servers.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithTimeout bounds every request round trip.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpc.Timeout = d }
}

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithSettleDelay overrides the wait before re-fetching a note after the
// server acknowledged an update asynchronously.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Client) { c.settleDelay = d }
}

// WithRetry overrides the bounded retry applied to transient failures.
func WithRetry(maxRetries int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

// New creates a gateway for the API at baseURL, authenticating with the
// bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		httpc:       &http.Client{Timeout: defaultTimeout},
		logger:      slog.Default(),
		settleDelay: defaultSettleDelay,
		maxRetries:  defaultMaxRetries,
		backoff:     defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the credential. A new token value invalidates the
// cached session; in-flight requests on the old session are not cancelled,
// they simply become orphaned.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.token {
		c.token = token
		c.session = nil
		c.sessionToken = ""
	}
}

// Authenticate verifies the credential against GET /me and returns the
// current user. The network round trip only happens when no session has
// been verified for the current token value.
func (c *Client) Authenticate(ctx context.Context) (core.UserInfo, error) {
	c.mu.Lock()
	if c.session != nil && c.sessionToken == c.token {
		user := *c.session
		c.mu.Unlock()
		return user, nil
	}
	token := c.token
	c.mu.Unlock()

	var user core.UserInfo
	if err := c.do(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return core.UserInfo{}, err
	}

	c.mu.Lock()
	c.session = &user
	c.sessionToken = token
	c.mu.Unlock()
	return user, nil
}

// GetNote fetches a note by ID.
func (c *Client) GetNote(ctx context.Context, id string) (core.RemoteNote, error) {
	var note core.RemoteNote
	if err := c.do(ctx, http.MethodGet, "/notes/"+id, nil, &note); err != nil {
		return core.RemoteNote{}, err
	}
	return note, nil
}

// CreateNote creates a new note.
func (c *Client) CreateNote(ctx context.Context, opts core.NoteOptions) (core.RemoteNote, error) {
	var note core.RemoteNote
	if err := c.do(ctx, http.MethodPost, "/notes", opts, &note); err != nil {
		return core.RemoteNote{}, err
	}
	return note, nil
}

// UpdateNote applies a partial update. The server may acknowledge receipt
// before applying the change (HTTP 202); on that signal the client waits a
// short fixed delay and re-fetches the note to obtain the settled state
// instead of returning a stale result.
func (c *Client) UpdateNote(ctx context.Context, id string, opts core.NoteOptions) (core.RemoteNote, error) {
	status, body, err := c.roundTrip(ctx, http.MethodPatch, "/notes/"+id, opts)
	if err != nil {
		return core.RemoteNote{}, err
	}

	if status == http.StatusAccepted || len(body) == 0 {
		c.logger.Debug("update accepted asynchronously, settling", "note", id)
		select {
		case <-time.After(c.settleDelay):
		case <-ctx.Done():
			return core.RemoteNote{}, core.WrapError(core.KindConnectionFailed, "update interrupted while settling", ctx.Err())
		}
		return c.GetNote(ctx, id)
	}

	var note core.RemoteNote
	if err := json.Unmarshal(body, &note); err != nil {
		return core.RemoteNote{}, core.WrapError(core.KindUnknown, "malformed note payload", err)
	}
	return note, nil
}

// DeleteNote ensures the note is absent. Deleting an ID that no longer
// exists on the server already satisfies that purpose, so not-found is
// success.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/notes/"+id, nil, nil)
	if core.IsKind(err, core.KindNoteNotFound) {
		return nil
	}
	return err
}

// do performs a request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	_, body, err := c.roundTrip(ctx, method, path, in)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return core.WrapError(core.KindUnknown, "malformed response payload", err)
	}
	return nil
}

// roundTrip issues the request with bounded retries for transient failure
// classes. Conflict and auth failures are terminal per attempt and never
// retried.
func (c *Client) roundTrip(ctx context.Context, method, path string, in any) (int, []byte, error) {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return 0, nil, core.WrapError(core.KindUnknown, "encode request", err)
		}
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		status, body, err := c.once(ctx, method, path, payload)
		if err == nil {
			return status, body, nil
		}
		lastErr = err

		if attempt >= c.maxRetries || !transient(core.KindOf(err)) {
			return 0, nil, err
		}
		c.logger.Debug("retrying request", "method", method, "path", path, "attempt", attempt+1, "error", err)
		select {
		case <-time.After(c.backoff * time.Duration(attempt+1)):
		case <-ctx.Done():
			return 0, nil, lastErr
		}
	}
}

func (c *Client) once(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, core.WrapError(core.KindUnknown, "build request", err)
	}

	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, core.WrapError(core.KindConnectionFailed, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, core.WrapError(core.KindConnectionFailed, "read response", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, body, nil
	}
	return resp.StatusCode, nil, c.classify(resp.StatusCode, token)
}

// classify maps an HTTP failure status into the taxonomy. An auth failure
// also invalidates the cached session so the next operation re-probes.
func (c *Client) classify(status int, token string) *core.Error {
	switch {
	case status == http.StatusUnauthorized:
		c.invalidateSession()
		if token == "" {
			return core.NewError(core.KindAuthRequired, "no access token configured")
		}
		return core.NewError(core.KindAuthInvalid, "access token rejected by the server")
	case status == http.StatusForbidden:
		return core.NewError(core.KindPermissionDenied, "the token does not grant access to this note")
	case status == http.StatusNotFound:
		return core.NewError(core.KindNoteNotFound, "note does not exist on the server")
	case status == http.StatusTooManyRequests:
		return core.NewError(core.KindRateLimited, "rate limit reached, try again later")
	case status >= 500:
		return core.Errorf(core.KindServerError, "server error (HTTP %d)", status)
	default:
		return core.Errorf(core.KindUnknown, "unexpected response (HTTP %d)", status)
	}
}

func (c *Client) invalidateSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
	c.sessionToken = ""
}

func transient(kind core.Kind) bool {
	switch kind {
	case core.KindRateLimited, core.KindServerError, core.KindConnectionFailed:
		return true
	default:
		return false
	}
}

var _ core.Remote = (*Client)(nil)

// String identifies the gateway endpoint in logs.
func (c *Client) String() string {
	return fmt.Sprintf("remote(%s)", c.baseURL)
}
