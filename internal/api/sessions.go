package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Session is a practice session as returned by the backend.
type Session struct {
	ID               string               `json:"_id"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	Topic            string               `json:"topic"`
	Type             string               `json:"type"`
	Status           string               `json:"status"`
	Duration         int                  `json:"duration"`
	MaxParticipants  int                  `json:"maxParticipants"`
	AIParticipants   int                  `json:"aiParticipants"`
	RealParticipants int                  `json:"realParticipants"`
	ShareableCode    string               `json:"shareableCode"`
	ScheduledTime    time.Time            `json:"scheduledTime"`
	Participants     []SessionParticipant `json:"participants"`
}

// SessionParticipant is one participant record on a session document. Human
// entries carry a user object; AI entries carry a name and flag.
type SessionParticipant struct {
	User     *SessionUser `json:"user,omitempty"`
	UserName string       `json:"userName,omitempty"`
	IsAI     bool         `json:"isAI,omitempty"`
}

// SessionUser identifies a registered user on a session document.
type SessionUser struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CreateSessionRequest is the create form payload.
type CreateSessionRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Topic            string `json:"topic"`
	Type             string `json:"type"`
	Duration         int    `json:"duration"`
	MaxParticipants  int    `json:"maxParticipants"`
	AIParticipants   int    `json:"aiParticipants"`
	RealParticipants int    `json:"realParticipants"`
	ScheduledTime    string `json:"scheduledTime,omitempty"`
}

// CreateSession creates a new practice session.
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	var s Session
	if err := c.doJSON(ctx, http.MethodPost, "/api/sessions/create", req, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionLoadFailed, err)
	}
	return &s, nil
}

// GetSession fetches one session by id.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	var s Session
	if err := c.doJSON(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(sessionID), nil, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionLoadFailed, err)
	}
	return &s, nil
}

// MySessions lists the authenticated user's sessions.
func (c *Client) MySessions(ctx context.Context) ([]Session, error) {
	var out []Session
	if err := c.doJSON(ctx, http.MethodGet, "/api/sessions/my-sessions", nil, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionLoadFailed, err)
	}
	return out, nil
}

// PreviewByCode fetches the session behind a shareable code without joining.
func (c *Client) PreviewByCode(ctx context.Context, code string) (*Session, error) {
	var s Session
	if err := c.doJSON(ctx, http.MethodGet, "/api/sessions/join/"+url.PathEscape(code), nil, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJoinFailed, err)
	}
	return &s, nil
}

// JoinByCode attaches the authenticated user to the session behind a
// shareable code.
func (c *Client) JoinByCode(ctx context.Context, code string) (*Session, error) {
	var s Session
	if err := c.doJSON(ctx, http.MethodPost, "/api/sessions/join/"+url.PathEscape(code), nil, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJoinFailed, err)
	}
	return &s, nil
}

// EndSession marks the session finished so analysis can be generated.
func (c *Client) EndSession(ctx context.Context, sessionID string) error {
	path := "/api/sessions/" + url.PathEscape(sessionID) + "/end"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}
