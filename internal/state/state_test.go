package state

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTokenRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	token, err := s.Token()
	if err != nil {
		t.Fatalf("token on empty store: %v", err)
	}
	if token != "" {
		t.Fatalf("empty store must yield empty token, got %q", token)
	}

	if err := s.SaveToken(ctx, "tok-1"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if token, _ = s.Token(); token != "tok-1" {
		t.Fatalf("token = %q", token)
	}

	// Re-login replaces the stored token.
	if err := s.SaveToken(ctx, "tok-2"); err != nil {
		t.Fatalf("save again: %v", err)
	}
	if token, _ = s.Token(); token != "tok-2" {
		t.Fatalf("token after replace = %q", token)
	}

	if err := s.ClearToken(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if token, _ = s.Token(); token != "" {
		t.Fatalf("token after clear = %q", token)
	}
}

func TestRememberSessionUpserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.RememberSession(ctx, CachedSession{ID: "s1", Title: "Mock interview", Status: "active"}); err != nil {
		t.Fatalf("remember: %v", err)
	}
	if err := s.RememberSession(ctx, CachedSession{ID: "s1", Title: "Mock interview", Status: "completed"}); err != nil {
		t.Fatalf("remember again: %v", err)
	}
	if err := s.RememberSession(ctx, CachedSession{ID: "s2", Title: "Group discussion", Topic: "caching"}); err != nil {
		t.Fatalf("remember second: %v", err)
	}

	sessions, err := s.RecentSessions(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("revisit must not duplicate, got %d rows", len(sessions))
	}

	byID := map[string]CachedSession{}
	for _, cs := range sessions {
		byID[cs.ID] = cs
	}
	if byID["s1"].Status != "completed" {
		t.Fatalf("revisit must refresh fields, got %+v", byID["s1"])
	}
	if byID["s2"].Topic != "caching" {
		t.Fatalf("s2 = %+v", byID["s2"])
	}
	if byID["s1"].VisitedAt.IsZero() {
		t.Fatal("visited_at must be stamped")
	}
}

func TestRecentSessionsLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := s.RememberSession(ctx, CachedSession{ID: id, Title: id}); err != nil {
			t.Fatalf("remember %s: %v", id, err)
		}
	}

	sessions, err := s.RecentSessions(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("limit ignored, got %d rows", len(sessions))
	}
}
