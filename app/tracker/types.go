package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/lysyi3m/list-comb/app/database"
)

const DayBucketLayout = "20060102"

var ErrUnknownSource = errors.New("unknown source")

// Store is the persistence the tracker loads from and flushes to.
type Store interface {
	Load(ctx context.Context) (*database.Snapshot, error)
	Save(ctx context.Context, snapshot *database.Snapshot) error
}

// Renderer turns entry markdown into HTML.
type Renderer interface {
	Run(source string) (string, error)
}

type FileKey struct {
	SourceID string
	FilePath string
}

// TrackedEntry is the persisted state of one list entry.
type TrackedEntry struct {
	Identifier string
	Category   string
	Markdown   string
	Source     string // Markdown before enrichment, compared across runs
	HTML       string
	UpdatedAt  time.Time // Moves only when the list item itself changes
}

// DayBucket is the UTC calendar date of UpdatedAt.
func (e TrackedEntry) DayBucket() string {
	return e.UpdatedAt.UTC().Format(DayBucketLayout)
}

type FileMeta struct {
	SourceID  string
	FilePath  string
	UpdatedAt time.Time // Latest UpdatedAt across Entries
	Entries   []TrackedEntry
}

func (f *FileMeta) Key() FileKey {
	return FileKey{SourceID: f.SourceID, FilePath: f.FilePath}
}

// Result summarises one reconciliation.
type Result struct {
	Added     int
	Changed   int
	Unchanged int
	Removed   int
}

func (r Result) Modified() bool {
	return r.Added > 0 || r.Changed > 0 || r.Removed > 0
}
