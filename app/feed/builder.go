// Package feed renders the changelog artifacts of a tracked file: the durable
// markdown document, the HTML page, the JSON Feed and the RSS feed.
package feed

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lysyi3m/list-comb/app/tracker"
)

type Site struct {
	BaseURL string
	Title   string
	Version string
}

type feedLinks struct {
	home string
	feed string
	rss  string
}

// Builder renders every artifact of a file from its tracked entries. It only reads
// the entries it is given.
type Builder struct {
	site       Site
	aggregator *Aggregator
	generator  *Generator
}

func NewBuilder(site Site) *Builder {
	site.BaseURL = strings.TrimSuffix(site.BaseURL, "/")
	return &Builder{
		site:       site,
		aggregator: NewAggregator(),
		generator:  NewGenerator(site.Version),
	}
}

func (b *Builder) Run(page Page, entries []tracker.TrackedEntry, now time.Time) (*Artifacts, error) {
	now = now.UTC()
	title := fmt.Sprintf("Recent %s updates", page.Name)
	links := b.links(page)

	buckets := b.aggregator.Run(entries, now)

	htmlDoc, err := b.renderHTML(page, title, links, buckets)
	if err != nil {
		return nil, err
	}

	jsonFeed := b.jsonFeed(page, title, links, entries, now)

	data, err := json.MarshalIndent(jsonFeed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode feed: %w", err)
	}

	rss, err := b.generator.Run(jsonFeed, links.rss)
	if err != nil {
		return nil, fmt.Errorf("failed to generate rss: %w", err)
	}

	return &Artifacts{
		Markdown: b.renderMarkdown(page, title, entries, now),
		HTML:     htmlDoc,
		JSONFeed: data,
		RSS:      rss,
	}, nil
}

// jsonFeed builds the syndication view. Entries updated today (UTC) are left out
// until the day is over.
func (b *Builder) jsonFeed(page Page, title string, links feedLinks, entries []tracker.TrackedEntry, now time.Time) JSONFeed {
	todayStart := startOfDay(now)

	var settled []tracker.TrackedEntry
	for _, e := range entries {
		if e.UpdatedAt.Before(todayStart) {
			settled = append(settled, e)
		}
	}

	buckets := b.aggregator.Run(settled, now)
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].DatePublished.After(buckets[j].DatePublished)
	})

	items := make([]JSONFeedItem, 0, len(buckets))
	for i := range buckets {
		bucket := &buckets[i]
		items = append(items, JSONFeedItem{
			ID:            links.home + bucket.Path,
			URL:           links.home + "#" + bucket.Anchor(),
			Title:         fmt.Sprintf("%s updates on %s", page.Name, bucket.Name),
			Summary:       bucket.Summary(),
			DatePublished: bucket.DatePublished.Format(time.RFC3339),
			DateModified:  bucket.DateModified.Format(time.RFC3339),
			ContentText:   bucket.MarkdownBody(),
			ContentHTML:   bucket.HTMLBody(),
		})
	}

	return JSONFeed{
		Version:     JSONFeedVersion,
		Title:       title,
		Description: page.Description,
		HomePageURL: links.home,
		FeedURL:     links.feed,
		Items:       items,
	}
}

func (b *Builder) links(page Page) feedLinks {
	home := b.site.BaseURL + "/" + strings.Trim(page.Folder, "/") + "/"
	return feedLinks{
		home: home,
		feed: home + "feed.json",
		rss:  home + "rss.xml",
	}
}
