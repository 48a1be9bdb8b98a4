package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lysyi3m/list-comb/app/list"
)

func newTestServer(t *testing.T, hits *int32, status int) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)

		if r.URL.Path != "/repos/owner/repo" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("Expected User-Agent 'test-agent', got '%s'", r.Header.Get("User-Agent"))
		}

		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"stargazers_count": 1234}`))
	}))
	t.Cleanup(server.Close)

	return server
}

func TestGitHubStars_Enrich(t *testing.T) {
	var hits int32
	server := newTestServer(t, &hits, http.StatusOK)

	enricher := NewGitHubStars(server.Client(), server.URL, "test-agent", "", time.Hour)

	entry := list.Entry{
		Identifier: "https://github.com/owner/repo",
		Markdown:   "- [Repo](https://github.com/Owner/repo) tool\n  - nested",
		Line:       3,
	}

	result, err := enricher.Enrich(context.Background(), entry)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := "- [Repo](https://github.com/Owner/repo) tool ⭐ 1.2k\n  - nested"
	if result.Markdown != expected {
		t.Errorf("Expected %q, got %q", expected, result.Markdown)
	}
	if result.Identifier != entry.Identifier || result.Line != entry.Line {
		t.Errorf("Expected identity to be kept, got %+v", result)
	}
}

func TestGitHubStars_Cache(t *testing.T) {
	var hits int32
	server := newTestServer(t, &hits, http.StatusOK)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	enricher := NewGitHubStars(server.Client(), server.URL, "test-agent", "", time.Hour)
	enricher.now = func() time.Time { return now }

	entry := list.Entry{Markdown: "- [Repo](https://github.com/owner/repo)"}

	for i := 0; i < 3; i++ {
		if _, err := enricher.Enrich(context.Background(), entry); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("Expected 1 request while cached, got %d", got)
	}

	now = now.Add(2 * time.Hour)
	if _, err := enricher.Enrich(context.Background(), entry); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("Expected refetch after expiry, got %d requests", got)
	}
}

func TestGitHubStars_Failure(t *testing.T) {
	var hits int32
	server := newTestServer(t, &hits, http.StatusForbidden)

	enricher := NewGitHubStars(server.Client(), server.URL, "test-agent", "", time.Hour)

	entry := list.Entry{Markdown: "- [Repo](https://github.com/owner/repo)"}

	result, err := enricher.Enrich(context.Background(), entry)
	if err == nil {
		t.Fatal("Expected error for forbidden response")
	}
	if result.Markdown != entry.Markdown {
		t.Errorf("Expected markdown unchanged, got %q", result.Markdown)
	}
}

func TestGitHubStars_NoRepository(t *testing.T) {
	var hits int32
	server := newTestServer(t, &hits, http.StatusOK)

	enricher := NewGitHubStars(server.Client(), server.URL, "test-agent", "", time.Hour)

	entry := list.Entry{Markdown: "- [Site](https://example.com)"}

	result, err := enricher.Enrich(context.Background(), entry)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Markdown != entry.Markdown {
		t.Errorf("Expected markdown unchanged, got %q", result.Markdown)
	}
	if got := atomic.LoadInt32(&hits); got != 0 {
		t.Errorf("Expected no requests, got %d", got)
	}
}

func TestFormatStars(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1k",
		1234:    "1.2k",
		56789:   "56.8k",
		2500000: "2.5m",
	}

	for stars, expected := range tests {
		if got := FormatStars(stars); got != expected {
			t.Errorf("FormatStars(%d): expected '%s', got '%s'", stars, expected, got)
		}
	}
}
