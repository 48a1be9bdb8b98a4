package feed

import (
	"time"

	"github.com/lysyi3m/list-comb/app/tracker"
)

const (
	DayNameLayout = "Jan 02, 2006"
	DayPathLayout = "2006/01/02/"

	JSONFeedVersion = "https://jsonfeed.org/version/1"
)

// Bucket holds the entries of one UTC calendar day.
type Bucket struct {
	Key           string    // YYYYMMDD
	Name          string    // Jan 02, 2006
	Path          string    // 2006/01/02/
	Groups        []Group   // Category groups in first-seen order
	DatePublished time.Time // Earliest UpdatedAt in the bucket
	DateModified  time.Time // Latest UpdatedAt in the bucket
}

type Group struct {
	Category string
	Entries  []tracker.TrackedEntry
}

// Count is the number of entries in the bucket.
func (b *Bucket) Count() int {
	n := 0
	for _, g := range b.Groups {
		n += len(g.Entries)
	}
	return n
}

// Page describes the tracked file a set of artifacts is built for.
type Page struct {
	SourceID    string
	FilePath    string
	Folder      string // Output folder relative to the content and public roots
	Name        string // Display name of the file
	Description string
	SourceURL   string
	Related     []Nav
}

type Nav struct {
	Name        string
	MarkdownURL string
	HTMLURL     string
}

// Artifacts are the rendered outputs of one tracked file.
type Artifacts struct {
	Markdown string
	HTML     string
	JSONFeed []byte
	RSS      string
}

// JSON Feed version 1 document.
type JSONFeed struct {
	Version     string         `json:"version"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	HomePageURL string         `json:"home_page_url"`
	FeedURL     string         `json:"feed_url"`
	Items       []JSONFeedItem `json:"items"`
}

type JSONFeedItem struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	DatePublished string `json:"date_published"`
	DateModified  string `json:"date_modified"`
	ContentText   string `json:"content_text,omitempty"`
	ContentHTML   string `json:"content_html"`
}
