package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterPerKey(t *testing.T) {
	l := NewRateLimiter(1, 1)
	if !l.Allow("a") {
		t.Fatal("expected first request of a to pass")
	}
	if l.Allow("a") {
		t.Error("expected second request of a to be limited")
	}
	if !l.Allow("b") {
		t.Error("expected b to have its own bucket")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(10 * time.Minute)
	l.Allow("fresh")
	now = now.Add(6 * time.Minute)

	l.Cleanup()
	if got := l.size(); got != 1 {
		t.Fatalf("expected one bucket left, got %d", got)
	}
	l.mu.Lock()
	_, ok := l.entries["fresh"]
	l.mu.Unlock()
	if !ok {
		t.Error("expected the recently used bucket to survive")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	if got := clientIP(req); got != "10.0.0.9" {
		t.Errorf("expected host part, got %q", got)
	}
	req.RemoteAddr = "pipe"
	if got := clientIP(req); got != "pipe" {
		t.Errorf("expected raw address, got %q", got)
	}
}
