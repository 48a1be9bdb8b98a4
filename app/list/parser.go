package list

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/lysyi3m/list-comb/app/markdown"
	"github.com/lysyi3m/list-comb/app/source"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Deepest heading level used as category when the document itself is shallower.
const defaultMinHeadingLevel = 3

type Parser struct {
	engine   goldmark.Markdown
	filterer *source.Filterer
	enricher Enricher
	workers  int
}

func NewParser(enricher Enricher, workers int) *Parser {
	if workers < 1 {
		workers = 1
	}
	return &Parser{
		engine:   markdown.New(),
		filterer: source.NewFilterer(),
		enricher: enricher,
		workers:  workers,
	}
}

// Run extracts the categorized entries of a list document. Malformed structure never
// fails the parse; regions that do not fit the heading/list layout are left out.
func (p *Parser) Run(ctx context.Context, content []byte, opts Options) *Document {
	meta, body, lineOffset := markdown.SplitFrontMatter(content)

	doc := &Document{
		Title:       meta.Title,
		Description: meta.Description,
	}

	root := p.engine.Parser().Parse(text.NewReader(body))

	region := contentRegion(root, opts.MaxHeadingLevel)
	if len(region) == 0 {
		return doc
	}

	minLevel := opts.MinHeadingLevel
	if minLevel == 0 {
		minLevel = deepestHeading(region, opts.MaxHeadingLevel)
	}

	candidates := p.collect(region, body, lineOffset, opts, minLevel)
	if len(candidates) == 0 {
		return doc
	}

	if opts.Enrich && p.enricher != nil {
		candidates = p.enrich(ctx, candidates)
	}

	doc.Entries = candidates
	return doc
}

func (p *Parser) collect(region []ast.Node, body []byte, lineOffset int, opts Options, minLevel int) []Entry {
	var entries []Entry

	stack := newCategoryStack(opts.MaxHeadingLevel)
	identifiers := newIdentifierSet()

	for _, node := range region {
		switch n := node.(type) {
		case *ast.Heading:
			if n.Level >= opts.MaxHeadingLevel && n.Level <= minLevel {
				stack.Push(n.Level, plainText(n, body))
			}

		case *ast.List:
			if isTableOfContents(countLinks(n, body)) {
				continue
			}

			category := stack.String()

			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				span, ok := itemSpan(item, body)
				if !ok {
					continue
				}

				itemText := plainText(item, body)
				if excluded, reason := p.filterer.Run(category, itemText, opts.Filters); excluded {
					slog.Debug("Entry filtered", "category", category, "line", span.line+lineOffset, "reason", reason)
					continue
				}

				formatted := formatItem(body, span)
				entry := Entry{
					Identifier: identifiers.Add(identifierFor(item, body, itemText)),
					Markdown:   formatted,
					Source:     formatted,
					Line:       span.line + lineOffset,
				}
				if opts.ParseCategory {
					entry.Category = category
				}

				entries = append(entries, entry)
			}
		}
	}

	return entries
}

// contentRegion returns the top-level nodes from the first heading at the given level
// onwards. Everything in front of it is intro text and never yields entries.
func contentRegion(root ast.Node, maxHeadingLevel int) []ast.Node {
	var region []ast.Node
	started := false

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if !started {
			if h, ok := n.(*ast.Heading); ok && h.Level == maxHeadingLevel {
				started = true
			} else {
				continue
			}
		}
		region = append(region, n)
	}

	return region
}

func deepestHeading(region []ast.Node, maxHeadingLevel int) int {
	deepest := defaultMinHeadingLevel
	for _, n := range region {
		if h, ok := n.(*ast.Heading); ok && h.Level > deepest {
			deepest = h.Level
		}
	}
	if deepest < maxHeadingLevel {
		deepest = maxHeadingLevel
	}
	return deepest
}

// plainText concatenates the inline text below a node.
func plainText(node ast.Node, source []byte) string {
	var buf bytes.Buffer

	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.AutoLink:
			buf.Write(t.Label(source))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		default:
			if n.Type() == ast.TypeBlock && n != node && buf.Len() > 0 {
				buf.WriteByte(' ')
			}
		}

		return ast.WalkContinue, nil
	})

	return collapseSpace(buf.String())
}
