// Package fetch retrieves the raw content of tracked list files.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lysyi3m/list-comb/app/source"
)

const DefaultTimeout = 30 * time.Second

type Fetcher interface {
	Fetch(ctx context.Context, src *source.Source, filePath string) ([]byte, error)
}

// HTTPFetcher downloads files relative to a source's raw URL.
type HTTPFetcher struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewHTTPFetcher(httpClient *http.Client, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    DefaultTimeout,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, src *source.Source, filePath string) ([]byte, error) {
	url := strings.TrimSuffix(src.RawURL, "/") + "/" + strings.TrimPrefix(filePath, "/")

	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// DirFetcher reads files from a local checkout of a source.
type DirFetcher struct{}

func NewDirFetcher() *DirFetcher {
	return &DirFetcher{}
}

func (f *DirFetcher) Fetch(_ context.Context, src *source.Source, filePath string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(src.Dir, filepath.FromSlash(filePath)))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return data, nil
}

// Router picks the fetcher matching how a source is configured.
type Router struct {
	http *HTTPFetcher
	dir  *DirFetcher
}

func NewRouter(httpFetcher *HTTPFetcher, dirFetcher *DirFetcher) *Router {
	return &Router{http: httpFetcher, dir: dirFetcher}
}

// ForSource returns the directory fetcher for sources with a local dir and the
// HTTP fetcher otherwise.
func (r *Router) ForSource(src *source.Source) Fetcher {
	if src.Dir != "" {
		return r.dir
	}
	return r.http
}

func (r *Router) Fetch(ctx context.Context, src *source.Source, filePath string) ([]byte, error) {
	return r.ForSource(src).Fetch(ctx, src, filePath)
}
