// Package api is the REST client for the practice platform backend: session
// CRUD, bot roster, analysis, and audio storage. All calls are plain JSON or
// multipart over HTTP with bearer-token authorization where authenticated.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrUnauthorized      = errors.New("not authenticated")
	ErrNotFound          = errors.New("not found")
	ErrSessionLoadFailed = errors.New("failed to load session")
	ErrJoinFailed        = errors.New("failed to join session")
	ErrAnalysisFailed    = errors.New("failed to load analysis")
	ErrUploadFailed      = errors.New("failed to upload audio")
	ErrDeleteFailed      = errors.New("failed to delete audio")
)

// TokenSource supplies the persisted bearer token. An empty token means the
// request goes out unauthenticated.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource holding a fixed token. Used by tests and the
// login flow before a token is persisted.
type StaticToken string

func (t StaticToken) Token() (string, error) { return string(t), nil }

// Client talks to the backend REST API.
type Client struct {
	baseURL       string
	http          *http.Client
	tokens        TokenSource
	uploadTimeout time.Duration
	log           *zerolog.Logger
}

// NewClient builds a REST client. uploadTimeout bounds one audio upload; zero
// falls back to transport defaults.
func NewClient(baseURL string, tokens TokenSource, uploadTimeout time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          &http.Client{},
		tokens:        tokens,
		uploadTimeout: uploadTimeout,
		log:           logger,
	}
}

// errorBody is the backend's error response shape.
type errorBody struct {
	Message string `json:"message"`
}

// doJSON performs one JSON request. Non-nil in is marshalled as the body;
// non-nil out receives the decoded response.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(req); err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.statusError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) authorize(req *http.Request) error {
	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

func (c *Client) statusError(resp *http.Response) error {
	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, eb.Message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, eb.Message)
	}
	if eb.Message != "" {
		return fmt.Errorf("backend: %s (status %d)", eb.Message, resp.StatusCode)
	}
	return fmt.Errorf("backend: status %d", resp.StatusCode)
}
