package database

import (
	"time"
)

// Snapshot is the complete persisted state of the update tracker.
type Snapshot struct {
	CheckedAt time.Time // Zero when no run has completed yet
	Files     []FileRecord
}

type FileRecord struct {
	SourceID  string
	FilePath  string
	UpdatedAt time.Time // Latest UpdatedAt of its entries
	Entries   []EntryRecord
}

type EntryRecord struct {
	Identifier string
	Category   string
	Markdown   string
	Source     string // Markdown before enrichment, empty for rows stored before it was tracked
	HTML       string
	UpdatedAt  time.Time
	DayBucket  string // UTC date of UpdatedAt, YYYYMMDD
}
