package list

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yuin/goldmark/ast"
	"golang.org/x/text/unicode/norm"
)

// identifierFor keys an item by its first external link, falling back to its text.
func identifierFor(item ast.Node, source []byte, itemText string) string {
	var dest string

	_ = ast.Walk(item, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if d, ok := linkDestination(n, source); ok && d != "" && !strings.HasPrefix(d, "#") {
			dest = d
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	if dest != "" {
		return normalizeURL(dest)
	}
	return norm.NFC.String(itemText)
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(raw, "/")
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""

	return u.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// identifierSet disambiguates repeated identifiers within one document. The first
// occurrence keeps its identifier, later ones get a "#n" suffix.
type identifierSet struct {
	seen map[string]int
}

func newIdentifierSet() *identifierSet {
	return &identifierSet{seen: make(map[string]int)}
}

func (s *identifierSet) Add(id string) string {
	s.seen[id]++
	if n := s.seen[id]; n > 1 {
		return fmt.Sprintf("%s#%d", id, n)
	}
	return id
}
