package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Analysis is the generated performance report for a finished session.
type Analysis struct {
	ID           string                `json:"_id"`
	Session      AnalysisSession       `json:"session"`
	Participants []ParticipantAnalysis `json:"participants"`
	Overall      OverallAnalysis       `json:"overall"`
	Transcript   string                `json:"transcript"`
	GeneratedAt  time.Time             `json:"generatedAt"`
}

type AnalysisSession struct {
	Title string `json:"title"`
	Topic string `json:"topic"`
	Type  string `json:"type"`
}

type ParticipantAnalysis struct {
	UserName        string        `json:"userName"`
	ParticipantType string        `json:"participantType"`
	Participation   Participation `json:"participation"`
	Feedback        Feedback      `json:"feedback"`
}

type Participation struct {
	SpeakingTime  int `json:"speakingTime"`
	Contributions int `json:"contributions"`
	Clarity       int `json:"clarity"`
	Confidence    int `json:"confidence"`
}

type Feedback struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	OverallScore int      `json:"overallScore"`
	Suggestions  []string `json:"suggestions"`
}

type OverallAnalysis struct {
	Engagement     int      `json:"engagement"`
	Collaboration  int      `json:"collaboration"`
	TopicRelevance int      `json:"topicRelevance"`
	Summary        string   `json:"summary"`
	KeyPoints      []string `json:"keyPoints"`
}

// AnalysisParticipant is one participant sent to the generation endpoint.
type AnalysisParticipant struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	UserID *string `json:"userId"`
}

type generateAnalysisRequest struct {
	Transcript   string                `json:"transcript"`
	Participants []AnalysisParticipant `json:"participants"`
}

type generateAnalysisResponse struct {
	Analysis Analysis `json:"analysis"`
}

// GetAnalysis fetches the analysis for a session. ErrNotFound means it has
// not been generated yet.
func (c *Client) GetAnalysis(ctx context.Context, sessionID string) (*Analysis, error) {
	var a Analysis
	path := "/api/analysis/" + url.PathEscape(sessionID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &a); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	return &a, nil
}

// GenerateAnalysis asks the backend to produce an analysis from the given
// transcript and participant list.
func (c *Client) GenerateAnalysis(ctx context.Context, sessionID, transcript string, participants []AnalysisParticipant) (*Analysis, error) {
	var resp generateAnalysisResponse
	path := "/api/analysis/generate/" + url.PathEscape(sessionID)
	req := generateAnalysisRequest{Transcript: transcript, Participants: participants}
	if err := c.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	return &resp.Analysis, nil
}

// FetchOrGenerateAnalysis retrieves a session's analysis, generating it first
// when none exists. Generation derives the participant list from the session
// document and uses a placeholder transcript.
func (c *Client) FetchOrGenerateAnalysis(ctx context.Context, sessionID string) (*Analysis, error) {
	a, err := c.GetAnalysis(ctx, sessionID)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	session, err := c.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	participants := participantsForAnalysis(session)
	transcript := fmt.Sprintf(
		"Discussion about %s with %d participants. This is a placeholder transcript that would normally be generated from audio recordings during the session.",
		session.Topic, len(participants),
	)
	return c.GenerateAnalysis(ctx, sessionID, transcript, participants)
}

// participantsForAnalysis flattens a session's participant records into the
// shape the generation endpoint expects, dropping unidentifiable entries.
func participantsForAnalysis(s *Session) []AnalysisParticipant {
	out := make([]AnalysisParticipant, 0, len(s.Participants))
	for _, p := range s.Participants {
		switch {
		case p.User != nil:
			name := p.User.Username
			if name == "" {
				name = p.User.Email
			}
			if name == "" {
				continue
			}
			id := p.User.ID
			out = append(out, AnalysisParticipant{Name: name, Type: "human", UserID: &id})
		case p.IsAI || p.UserName != "":
			name := p.UserName
			if name == "" {
				name = "AI Participant"
			}
			out = append(out, AnalysisParticipant{Name: name, Type: "ai"})
		}
	}
	return out
}
