// Package markdown wraps the goldmark engine used to parse tracked lists and to
// render entry bodies into HTML.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// New builds the goldmark engine shared by the list parser and the renderer.
// GFM is enabled so bare URLs in list items are parsed as links.
func New() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

// Renderer turns entry markdown into HTML fragments. It is stateless and safe
// for concurrent use.
type Renderer struct {
	engine goldmark.Markdown
}

func NewRenderer() *Renderer {
	return &Renderer{engine: New()}
}

func (r *Renderer) Run(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
