package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/lysyi3m/list-comb/app/list"
)

const (
	DefaultGitHubAPI = "https://api.github.com"
	DefaultCacheTTL  = 24 * time.Hour
	requestTimeout   = 15 * time.Second
)

var repoLink = regexp.MustCompile(`https?://(?:www\.)?github\.com/([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)`)

type cachedStars struct {
	stars     int
	expiresAt time.Time
}

// GitHubStars appends the star count of the first GitHub repository an entry links to.
type GitHubStars struct {
	httpClient *http.Client
	apiURL     string
	userAgent  string
	token      string
	ttl        time.Duration
	now        func() time.Time

	mu    sync.Mutex
	cache map[string]cachedStars
}

func NewGitHubStars(httpClient *http.Client, apiURL, userAgent, token string, ttl time.Duration) *GitHubStars {
	if apiURL == "" {
		apiURL = DefaultGitHubAPI
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &GitHubStars{
		httpClient: httpClient,
		apiURL:     strings.TrimSuffix(apiURL, "/"),
		userAgent:  userAgent,
		token:      token,
		ttl:        ttl,
		now:        time.Now,
		cache:      make(map[string]cachedStars),
	}
}

func (g *GitHubStars) Enrich(ctx context.Context, entry list.Entry) (list.Entry, error) {
	match := repoLink.FindStringSubmatch(entry.Markdown)
	if match == nil {
		return entry, nil
	}

	repo := strings.ToLower(match[1] + "/" + strings.TrimSuffix(match[2], ".git"))

	stars, err := g.stars(ctx, repo)
	if err != nil {
		return entry, err
	}

	lines := strings.SplitN(entry.Markdown, "\n", 2)
	lines[0] = lines[0] + " ⭐ " + FormatStars(stars)
	entry.Markdown = strings.Join(lines, "\n")

	return entry, nil
}

func (g *GitHubStars) stars(ctx context.Context, repo string) (int, error) {
	g.mu.Lock()
	cached, ok := g.cache[repo]
	g.mu.Unlock()

	if ok && g.now().Before(cached.expiresAt) {
		return cached.stars, nil
	}

	stars, err := g.fetchStars(ctx, repo)
	if err != nil {
		return 0, err
	}

	g.mu.Lock()
	g.cache[repo] = cachedStars{stars: stars, expiresAt: g.now().Add(g.ttl)}
	g.mu.Unlock()

	return stars, nil
}

func (g *GitHubStars) fetchStars(ctx context.Context, repo string) (int, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", g.apiURL+"/repos/"+repo, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch repository %s: %w", repo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body: %w", err)
	}

	var payload struct {
		StargazersCount int `json:"stargazers_count"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("failed to decode repository %s: %w", repo, err)
	}

	return payload.StargazersCount, nil
}

// FormatStars renders a star count the way badges do: 950, 1.2k, 3.4m.
func FormatStars(stars int) string {
	switch {
	case stars < 1000:
		return fmt.Sprintf("%d", stars)
	case stars < 1000000:
		return trimZero(fmt.Sprintf("%.1f", float64(stars)/1000)) + "k"
	default:
		return trimZero(fmt.Sprintf("%.1f", float64(stars)/1000000)) + "m"
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}
