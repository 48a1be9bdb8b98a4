package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/list-comb/app/tracker"
)

// Day buckets last modified longer ago than this are counted but not printed in the
// markdown document.
const retention = 365 * 24 * time.Hour

func (b *Builder) renderMarkdown(page Page, title string, entries []tracker.TrackedEntry, now time.Time) string {
	var recent []Bucket
	hidden := 0

	for _, bucket := range b.aggregator.Run(entries, now) {
		if now.Sub(bucket.DateModified) > retention {
			hidden += bucket.Count()
			continue
		}
		recent = append(recent, bucket)
	}

	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(title)
	sb.WriteString("\n")

	if page.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(page.Description)
		sb.WriteString("\n")
	}

	if len(page.Related) > 0 {
		sb.WriteString("\n")
		for _, nav := range page.Related {
			fmt.Fprintf(&sb, "- [%s](%s)\n", nav.Name, nav.MarkdownURL)
		}
	}

	for _, bucket := range recent {
		sb.WriteString("\n## ")
		sb.WriteString(bucket.Name)
		sb.WriteString(bucket.MarkdownBody())
		sb.WriteString("\n")
	}

	sb.WriteString("\n## Older than 1 year\n\n")
	sb.WriteString("This changelog only contains entries modified within the last year.")
	if hidden > 0 {
		fmt.Fprintf(&sb, " %d older %s not shown.", hidden, plural(hidden, "entry is", "entries are"))
	}
	sb.WriteString("\n")

	if page.SourceURL != "" {
		fmt.Fprintf(&sb, "\nView the full list at [%s](%s).\n", page.SourceID, page.SourceURL)
	}

	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
