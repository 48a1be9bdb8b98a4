package list

import (
	"strings"

	"github.com/yuin/goldmark/ast"
)

// Lists with more in-document anchors than this are navigational unless they
// carry at least minExternalLinks external links.
const (
	maxInternalLinks = 10
	minExternalLinks = 2
)

type linkCounts struct {
	internal int
	external int
}

func countLinks(node ast.Node, source []byte) linkCounts {
	var counts linkCounts
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		dest, ok := linkDestination(n, source)
		if !ok {
			return ast.WalkContinue, nil
		}
		if strings.HasPrefix(dest, "#") {
			counts.internal++
		} else {
			counts.external++
		}
		return ast.WalkContinue, nil
	})
	return counts
}

// isTableOfContents reports whether a list only navigates the document itself.
func isTableOfContents(counts linkCounts) bool {
	return counts.external == 0 ||
		(counts.internal > maxInternalLinks && counts.external < minExternalLinks)
}

func linkDestination(n ast.Node, source []byte) (string, bool) {
	switch link := n.(type) {
	case *ast.Link:
		return string(link.Destination), true
	case *ast.AutoLink:
		return string(link.URL(source)), true
	default:
		return "", false
	}
}
