package feed

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Title       string
	SEOTitle    string
	Description string
	FeedURL     string
	RSSURL      string
	SiteTitle   string
	Version     string
	Related     []Nav
	Buckets     []pageBucket
}

type pageBucket struct {
	Name   string
	Anchor string
	Body   template.HTML
}

func (b *Builder) renderHTML(page Page, title string, links feedLinks, buckets []Bucket) (string, error) {
	data := pageData{
		Title:       title,
		SEOTitle:    fmt.Sprintf("Recent %s (%s) updates - %s", page.Name, page.SourceID, b.site.Title),
		Description: page.Description,
		FeedURL:     links.feed,
		RSSURL:      links.rss,
		SiteTitle:   b.site.Title,
		Version:     b.site.Version,
		Related:     page.Related,
		Buckets:     make([]pageBucket, 0, len(buckets)),
	}

	for i := range buckets {
		data.Buckets = append(data.Buckets, pageBucket{
			Name:   buckets[i].Name,
			Anchor: buckets[i].Anchor(),
			Body:   template.HTML(buckets[i].HTMLBody()),
		})
	}

	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "index.html", data); err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}

	return buf.String(), nil
}
