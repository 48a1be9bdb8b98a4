package api

import (
	"context"

	"github.com/lysyi3m/list-comb/app/database"
	"github.com/lysyi3m/list-comb/app/feed"
	"github.com/lysyi3m/list-comb/app/source"
)

// FileLister exposes the persisted store index.
type FileLister interface {
	ListFiles(ctx context.Context) ([]database.FileRecord, error)
}

var _ FileLister = (*database.StoreRepository)(nil)

type Handler struct {
	files     FileLister
	config    *source.Config
	reader    *feed.Reader
	publicDir string
	version   string
}

type FeedStats struct {
	Folder       string `json:"folder"`
	Title        string `json:"title"`
	Items        int    `json:"items"`
	LastModified string `json:"last_modified,omitempty"`
}

type FileInfo struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Folder    string `json:"folder"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type SourceInfo struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	URL   string     `json:"url,omitempty"`
	Skip  bool       `json:"skip"`
	Files []FileInfo `json:"files"`
}
