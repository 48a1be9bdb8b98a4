// Package list turns heading/list structured markdown documents into an ordered
// sequence of categorized entries.
package list

import (
	"context"

	"github.com/lysyi3m/list-comb/app/source"
)

// Entry is one list item with its resolved category path.
type Entry struct {
	Category   string // Heading path joined with " / "
	Identifier string // Stable key used to match the entry across runs
	Markdown   string // Item re-indented as a top-level bullet, enrichment included
	Source     string // Markdown as written in the list, before enrichment
	Line       int    // 1-based line of the item in the original document
}

// Document is the parse result of one tracked file.
type Document struct {
	Title       string // From front matter, if any
	Description string // From front matter, if any
	Entries     []Entry
}

// Options controls how one file is parsed.
type Options struct {
	MaxHeadingLevel int
	MinHeadingLevel int // 0 means the deepest heading found in the document
	ParseCategory   bool
	Filters         []source.Filter
	Enrich          bool
}

// Enricher augments an entry with external metadata. Implementations must be safe
// for concurrent use; a failed call leaves the entry untouched.
type Enricher interface {
	Enrich(ctx context.Context, entry Entry) (Entry, error)
}

// OptionsFor derives the parse options of a tracked file from its source configuration.
func OptionsFor(src *source.Source, filePath string) Options {
	opts := Options{
		MaxHeadingLevel: 2,
		ParseCategory:   true,
		Filters:         src.FiltersFor(filePath),
		Enrich:          src.Enrich,
	}

	if file, ok := src.Files[filePath]; ok {
		if file.Options.MaxHeadingLevel > 0 {
			opts.MaxHeadingLevel = file.Options.MaxHeadingLevel
		}
		opts.MinHeadingLevel = file.Options.MinHeadingLevel
		opts.ParseCategory = file.Options.ParseCategory()
	}

	return opts
}
