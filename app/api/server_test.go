package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lysyi3m/list-comb/app/database"
	"github.com/lysyi3m/list-comb/app/source"
)

type fakeLister struct {
	files []database.FileRecord
	err   error
}

func (f *fakeLister) ListFiles(_ context.Context) ([]database.FileRecord, error) {
	return f.files, f.err
}

const testFeed = `{
  "version": "https://jsonfeed.org/version/1.1",
  "title": "Recent awesome-tools updates",
  "home_page_url": "http://localhost/owner/repo/",
  "items": [
    {"id": "a", "title": "awesome-tools updates on Mar 01, 2024", "content_html": "<p>a</p>", "date_published": "2024-03-02T00:00:00Z", "date_modified": "2024-03-01T10:00:00Z"},
    {"id": "b", "title": "awesome-tools updates on Feb 28, 2024", "content_html": "<p>b</p>", "date_published": "2024-02-29T00:00:00Z", "date_modified": "2024-02-28T10:00:00Z"}
  ]
}`

func newTestConfig() *source.Config {
	return &source.Config{
		Sources: map[string]*source.Source{
			"owner/repo": {
				ID:   "owner/repo",
				Name: "awesome-tools",
				URL:  "https://github.com/owner/repo",
				Files: map[string]*source.File{
					"README.md":    {Path: "README.md", Name: "awesome-tools", Index: true},
					"docs/libs.md": {Path: "docs/libs.md", Name: "Libraries"},
				},
			},
		},
	}
}

func newTestServer(t *testing.T, lister FileLister, apiKey string) (http.Handler, string) {
	t.Helper()

	publicDir := t.TempDir()
	feedDir := filepath.Join(publicDir, "owner", "repo")
	if err := os.MkdirAll(feedDir, 0755); err != nil {
		t.Fatalf("Failed to create feed dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(feedDir, "feed.json"), []byte(testFeed), 0644); err != nil {
		t.Fatalf("Failed to write feed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(feedDir, "index.html"), []byte("<html>tools</html>"), 0644); err != nil {
		t.Fatalf("Failed to write page: %v", err)
	}

	handler := NewHandler(lister, newTestConfig(), publicDir, "test")
	return NewServer(handler, apiKey), publicDir
}

func doRequest(server http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	lister := &fakeLister{files: []database.FileRecord{{SourceID: "owner/repo", FilePath: "README.md"}}}
	server, _ := newTestServer(t, lister, "")

	rec := doRequest(server, "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["version"] != "test" {
		t.Errorf("Expected version 'test', got %v", body["version"])
	}
	if body["sources"] != float64(1) {
		t.Errorf("Expected 1 source, got %v", body["sources"])
	}
	if body["tracked_files"] != float64(1) {
		t.Errorf("Expected 1 tracked file, got %v", body["tracked_files"])
	}
}

func TestServer_Stats(t *testing.T) {
	server, _ := newTestServer(t, &fakeLister{}, "")

	rec := doRequest(server, "GET", "/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var body struct {
		Feeds []FeedStats `json:"feeds"`
		Total int         `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Total != 1 || len(body.Feeds) != 1 {
		t.Fatalf("Expected 1 feed, got %d", body.Total)
	}

	stats := body.Feeds[0]
	if stats.Folder != "owner/repo" {
		t.Errorf("Expected folder 'owner/repo', got '%s'", stats.Folder)
	}
	if stats.Title != "Recent awesome-tools updates" {
		t.Errorf("Expected feed title, got '%s'", stats.Title)
	}
	if stats.Items != 2 {
		t.Errorf("Expected 2 items, got %d", stats.Items)
	}
}

func TestServer_StatsMissingDir(t *testing.T) {
	handler := NewHandler(&fakeLister{}, newTestConfig(), filepath.Join(t.TempDir(), "missing"), "test")
	server := NewServer(handler, "")

	rec := doRequest(server, "GET", "/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var body struct {
		Feeds []FeedStats `json:"feeds"`
		Total int         `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Total != 0 {
		t.Errorf("Expected no feeds, got %d", body.Total)
	}
}

func TestServer_StaticSite(t *testing.T) {
	server, _ := newTestServer(t, &fakeLister{}, "")

	rec := doRequest(server, "GET", "/site/owner/repo/index.html", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "<html>tools</html>" {
		t.Errorf("Expected page content, got '%s'", rec.Body.String())
	}
}

func TestServer_APIDisabledWithoutKey(t *testing.T) {
	server, _ := newTestServer(t, &fakeLister{}, "")

	rec := doRequest(server, "GET", "/api/sources", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestServer_APIAuth(t *testing.T) {
	server, _ := newTestServer(t, &fakeLister{}, "secret")

	tests := []struct {
		name     string
		headers  map[string]string
		expected int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"header key", map[string]string{"X-API-Key": "secret"}, http.StatusOK},
		{"bearer key", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(server, "GET", "/api/sources", tt.headers)
			if rec.Code != tt.expected {
				t.Errorf("Expected status %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}

func TestServer_ListSources(t *testing.T) {
	updated := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	lister := &fakeLister{files: []database.FileRecord{
		{SourceID: "owner/repo", FilePath: "README.md", UpdatedAt: updated},
	}}
	server, _ := newTestServer(t, lister, "secret")

	rec := doRequest(server, "GET", "/api/sources", map[string]string{"X-API-Key": "secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var body struct {
		Sources []SourceInfo `json:"sources"`
		Total   int          `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Total != 1 {
		t.Fatalf("Expected 1 source, got %d", body.Total)
	}

	files := body.Sources[0].Files
	if len(files) != 2 {
		t.Fatalf("Expected 2 files, got %d", len(files))
	}
	if files[0].Path != "README.md" || files[0].Folder != "owner/repo" {
		t.Errorf("Expected index file first, got %+v", files[0])
	}
	if files[0].UpdatedAt != "2024-03-01T10:00:00Z" {
		t.Errorf("Expected updated_at, got '%s'", files[0].UpdatedAt)
	}
	if files[1].Folder != "owner/repo/docs/libs" {
		t.Errorf("Expected folder 'owner/repo/docs/libs', got '%s'", files[1].Folder)
	}
	if files[1].UpdatedAt != "" {
		t.Errorf("Expected no updated_at for untracked file, got '%s'", files[1].UpdatedAt)
	}
}

func TestServer_ListSourcesDatabaseError(t *testing.T) {
	server, _ := newTestServer(t, &fakeLister{err: errors.New("boom")}, "secret")

	rec := doRequest(server, "GET", "/api/sources", map[string]string{"X-API-Key": "secret"})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rec.Code)
	}
}

func TestServer_RootAndFavicon(t *testing.T) {
	server, _ := newTestServer(t, &fakeLister{}, "")

	rec := doRequest(server, "GET", "/", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	rec = doRequest(server, "GET", "/favicon.ico", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
}
