package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"
)

// Generator writes RSS 2.0 documents from JSON Feed documents.
type Generator struct {
	version string
}

func NewGenerator(version string) *Generator {
	return &Generator{version: version}
}

// Run renders jsonFeed as RSS. Items carry the HTML content only, content_text is
// dropped. selfLink is the public URL of the RSS document.
func (g *Generator) Run(jsonFeed JSONFeed, selfLink string) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", jsonFeed.Title, 4)
	g.writeElement(&buf, "link", jsonFeed.HomePageURL, 4)
	description := jsonFeed.Description
	if description == "" {
		description = jsonFeed.Title
	}
	g.writeElement(&buf, "description", description, 4)

	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	items := stripContentText(jsonFeed.Items)

	if len(items) > 0 {
		if modified, err := time.Parse(time.RFC3339, items[0].DateModified); err == nil {
			g.writeElement(&buf, "lastBuildDate", modified.Format(time.RFC1123Z), 4)
		}
	}

	g.writeElement(&buf, "generator", fmt.Sprintf("List-Comb/%s", g.version), 4)
	g.writeElement(&buf, "language", "en", 4)

	for _, item := range items {
		if err := g.writeItem(&buf, item); err != nil {
			return "", err
		}
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func stripContentText(items []JSONFeedItem) []JSONFeedItem {
	stripped := make([]JSONFeedItem, len(items))
	for i, item := range items {
		item.ContentText = ""
		stripped[i] = item
	}
	return stripped
}

func (g *Generator) writeItem(buf *bytes.Buffer, item JSONFeedItem) error {
	published, err := time.Parse(time.RFC3339, item.DatePublished)
	if err != nil {
		return fmt.Errorf("failed to parse date_published of %s: %w", item.ID, err)
	}

	buf.WriteString("    <item>\n")

	if item.ID != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(item.ID)))
		xml.EscapeText(buf, []byte(item.ID))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", item.Title, 6)
	g.writeElement(buf, "link", item.URL, 6)
	g.writeElement(buf, "description", item.Summary, 6)

	if item.ContentHTML != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(strings.ReplaceAll(item.ContentHTML, "]]>", "]]]]><![CDATA[>"))
		buf.WriteString("]]></content:encoded>\n")
	}

	g.writeElement(buf, "pubDate", published.Format(time.RFC1123Z), 6)

	buf.WriteString("    </item>\n")

	return nil
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
