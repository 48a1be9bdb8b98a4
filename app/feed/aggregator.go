package feed

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/lysyi3m/list-comb/app/tracker"
)

// Aggregator groups tracked entries into day buckets.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Run buckets entries by the UTC day of their UpdatedAt, newest day first. Entries keep
// their relative order inside each category group. now seeds the DatePublished sentinel.
func (a *Aggregator) Run(entries []tracker.TrackedEntry, now time.Time) []Bucket {
	sentinel := now.UTC().Add(24 * time.Hour)

	var buckets []*Bucket
	byKey := make(map[string]*Bucket)

	for _, entry := range entries {
		key := entry.DayBucket()

		bucket, ok := byKey[key]
		if !ok {
			day := entry.UpdatedAt.UTC()
			bucket = &Bucket{
				Key:           key,
				Name:          day.Format(DayNameLayout),
				Path:          day.Format(DayPathLayout),
				DatePublished: sentinel,
			}
			byKey[key] = bucket
			buckets = append(buckets, bucket)
		}

		bucket.add(entry)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Key > buckets[j].Key
	})

	result := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		result = append(result, *b)
	}

	return result
}

func (b *Bucket) add(entry tracker.TrackedEntry) {
	idx := -1
	for i := range b.Groups {
		if b.Groups[i].Category == entry.Category {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.Groups = append(b.Groups, Group{Category: entry.Category})
		idx = len(b.Groups) - 1
	}
	b.Groups[idx].Entries = append(b.Groups[idx].Entries, entry)

	updatedAt := entry.UpdatedAt.UTC()
	if updatedAt.Before(b.DatePublished) {
		b.DatePublished = updatedAt
	}
	if updatedAt.After(b.DateModified) {
		b.DateModified = updatedAt
	}
}

// Summary is the one line description of the bucket.
func (b *Bucket) Summary() string {
	return fmt.Sprintf("%d project(s) updated on %s", b.Count(), b.Name)
}

// Anchor is the HTML id of the bucket heading.
func (b *Bucket) Anchor() string {
	return anchor(b.Name, "day-"+b.Key)
}

// MarkdownBody renders the category groups of the bucket as markdown.
func (b *Bucket) MarkdownBody() string {
	var sb strings.Builder

	for _, g := range b.Groups {
		if g.Category != "" {
			sb.WriteString("\n\n### ")
			sb.WriteString(g.Category)
			sb.WriteString("\n")
		} else {
			sb.WriteString("\n")
		}
		for _, e := range g.Entries {
			sb.WriteString("\n")
			sb.WriteString(e.Markdown)
		}
	}

	return sb.String()
}

// HTMLBody renders the category groups of the bucket as an HTML fragment.
func (b *Bucket) HTMLBody() string {
	var sb strings.Builder

	for _, g := range b.Groups {
		if g.Category != "" {
			fmt.Fprintf(&sb, "<h3 id=\"%s\">%s</h3>",
				html.EscapeString(b.Key+"-"+anchor(g.Category, "category")),
				html.EscapeString(g.Category))
		}
		for _, e := range g.Entries {
			sb.WriteString("\n")
			sb.WriteString(e.HTML)
		}
	}

	return sb.String()
}

func anchor(value, fallback string) string {
	if normalized, err := slug.Normalize(value); err == nil && normalized != "" {
		return normalized
	}
	return fallback
}

// startOfDay is midnight UTC of the day containing t.
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
