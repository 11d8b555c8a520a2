package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
	mimeJSON            = "application/json"
)

// Config wires the API client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Session    session.Store
	Logger     *zap.Logger
	Timeout    time.Duration
}

// Client is the only component that talks to the notes backend.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	session    session.Store
	logger     *zap.Logger
}

// NewClient validates cfg and constructs a Client.
func NewClient(cfg Config) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if trimmed == "" {
		return nil, errors.New("api: base url required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("api: invalid base url %q", cfg.BaseURL)
	}
	if cfg.Session == nil {
		return nil, errors.New("api: session store required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    parsed,
		httpClient: httpClient,
		session:    cfg.Session,
		logger:     logger,
	}, nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, email, password string) (User, error) {
	var user User
	err := c.do(ctx, http.MethodPost, "/auth/signup", false, credentialsPayload{Email: email, Password: password}, &user)
	return user, err
}

// Login exchanges credentials for an access token. The token is not stored here.
func (c *Client) Login(ctx context.Context, email, password string) (AuthToken, error) {
	var token AuthToken
	err := c.do(ctx, http.MethodPost, "/auth/login", false, credentialsPayload{Email: email, Password: password}, &token)
	return token, err
}

// ListNotes returns the caller's notes in server order.
func (c *Client) ListNotes(ctx context.Context) ([]Note, error) {
	notes := []Note{}
	if err := c.do(ctx, http.MethodGet, "/notes", true, nil, &notes); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []Note{}
	}
	return notes, nil
}

// CreateNote creates a note and returns it with its server-assigned id.
func (c *Client) CreateNote(ctx context.Context, title, content string) (Note, error) {
	var note Note
	err := c.do(ctx, http.MethodPost, "/notes", true, noteCreatePayload{Title: title, Content: content}, &note)
	return note, err
}

// UpdateNote applies a partial update to the note identified by id.
func (c *Client) UpdateNote(ctx context.Context, id int64, update NoteUpdate) (Note, error) {
	var note Note
	err := c.do(ctx, http.MethodPut, notePath(id), true, update, &note)
	return note, err
}

// DeleteNote removes the note identified by id.
func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, notePath(id), true, nil, nil)
}

func notePath(id int64) string {
	return "/notes/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, authenticated bool, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: %s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	request.Header.Set("Content-Type", mimeJSON)
	request.Header.Set("Accept", mimeJSON)
	requestID := newRequestID()
	request.Header.Set(headerRequestID, requestID)
	if authenticated {
		if token := c.session.Token(); token != "" {
			request.Header.Set(headerAuthorization, "Bearer "+token)
		}
	}

	started := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("api: %s %s: read body: %w", method, path, err)
	}

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", response.StatusCode),
		zap.Duration("latency", time.Since(started)),
		zap.String("request_id", requestID),
	)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return newError(response.StatusCode, payload)
	}
	if response.StatusCode == http.StatusNoContent || out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("api: %s %s: decode response: %w", method, path, err)
	}
	return nil
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
