package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Bot is one AI persona attached to a session.
type Bot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type botsResponse struct {
	Success bool  `json:"success"`
	Bots    []Bot `json:"bots"`
}

// SessionBots fetches the actual AI persona roster for a session. When the
// bots have not been initialized yet (or the call fails), callers fall back
// to GenericBots.
func (c *Client) SessionBots(ctx context.Context, sessionID string) ([]Bot, error) {
	var resp botsResponse
	path := "/api/ai-bots/bots/" + url.PathEscape(sessionID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch bots: %w", err)
	}
	if !resp.Success {
		return nil, nil
	}
	return resp.Bots, nil
}

// GenericBots synthesizes placeholder personas ("AI Participant N") for a
// session whose bots are not initialized yet. Their names are reconciled
// later from AI-flagged message events.
func GenericBots(count int) []Bot {
	bots := make([]Bot, 0, count)
	for i := 0; i < count; i++ {
		bots = append(bots, Bot{
			ID:   fmt.Sprintf("ai-%d", i),
			Name: fmt.Sprintf("AI Participant %d", i+1),
		})
	}
	return bots
}
