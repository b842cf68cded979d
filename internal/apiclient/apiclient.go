// Package apiclient talks to the FinControl HTTP API on behalf of the client
// engine. It implements the storage interfaces, the session authenticator,
// the admin backend and the advisor.
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/hongminglow/fincontrol-be/internal/client"
	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/models/dto"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Error is a non-2xx API response. It unwraps to the matching sentinels.
type Error struct {
	Status  int
	Message string
	// Authenticated is set when the request carried a session token.
	Authenticated bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Unwrap maps the status to storage, validation and session sentinels. A
// rejected token and a blocked account also unwrap to the client engine's
// ErrSessionExpired and ErrAccountBlocked so it can end the session.
func (e *Error) Unwrap() []error {
	switch e.Status {
	case http.StatusNotFound:
		return []error{storage.ErrNotFound}
	case http.StatusConflict:
		return []error{storage.ErrAlreadyExists}
	case http.StatusBadRequest:
		return []error{models.ErrInvalid}
	case http.StatusUnauthorized:
		if e.Authenticated {
			return []error{ErrUnauthorized, client.ErrSessionExpired}
		}
		return []error{ErrUnauthorized}
	case http.StatusForbidden:
		if e.Message == dto.AccountBlockedMessage {
			return []error{ErrForbidden, client.ErrAccountBlocked}
		}
		return []error{ErrForbidden}
	}
	return nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.SugaredLogger

	mu      sync.RWMutex
	session *client.Session
	subs    map[int]func(*client.Session)
	nextSub int
}

// New returns a client for baseURL. timeout bounds every request.
func New(baseURL string, timeout time.Duration, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
		subs:    map[int]func(*client.Session){},
	}
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return ""
	}
	return c.session.Token
}

// do sends body as JSON and decodes the envelope data into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	tok := c.token()
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && resp.StatusCode < 300 {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 300 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: msg, Authenticated: tok != ""}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	return nil
}

// download fetches a binary resource.
func (c *Client) download(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	tok := c.token()
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var env envelope
		_ = json.NewDecoder(resp.Body).Decode(&env)
		return nil, &Error{Status: resp.StatusCode, Message: env.Message, Authenticated: tok != ""}
	}
	return io.ReadAll(resp.Body)
}

// Export downloads the session owner's ledger workbook.
func (c *Client) Export(ctx context.Context) ([]byte, error) {
	return c.download(ctx, "/api/export.xlsx")
}
