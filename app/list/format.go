package list

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
)

var listMarker = regexp.MustCompile(`^([-*+]|\d{1,9}[.)])[ \t]*`)

// span is the byte range of whole source lines covered by a list item.
type span struct {
	start   int // Offset of the first line
	end     int // Offset just past the last line, excluding its line break
	content int // Column the item content starts at
	line    int // 1-based line number of start
}

// itemSpan locates the lines of a list item. Items without any content are reported
// as not found.
func itemSpan(item ast.Node, source []byte) (span, bool) {
	first, last := -1, -1
	lastFenced := false

	_ = ast.Walk(item, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Type() != ast.TypeBlock {
			return ast.WalkContinue, nil
		}
		lines := n.Lines()
		if lines == nil || lines.Len() == 0 {
			if _, ok := n.(*ast.FencedCodeBlock); ok && first >= 0 {
				lastFenced = true
			}
			return ast.WalkContinue, nil
		}
		start, stop := lines.At(0).Start, lines.At(lines.Len()-1).Stop
		if first < 0 || start < first {
			first = start
		}
		if stop > last {
			last = stop
			_, lastFenced = n.(*ast.FencedCodeBlock)
		}
		return ast.WalkContinue, nil
	})

	if first < 0 {
		return span{}, false
	}

	start := bytes.LastIndexByte(source[:first], '\n') + 1

	end := last
	if end > start && source[end-1] == '\n' {
		end--
	}
	end = lineEnd(source, end)

	if lastFenced {
		// The closing fence is not part of the code block lines.
		next := end + 1
		if next < len(source) {
			fence := strings.TrimSpace(string(source[next:lineEnd(source, next)]))
			if strings.HasPrefix(fence, "```") || strings.HasPrefix(fence, "~~~") {
				end = lineEnd(source, next)
			}
		}
	}

	return span{
		start:   start,
		end:     end,
		content: first - start,
		line:    bytes.Count(source[:start], []byte("\n")) + 1,
	}, true
}

func lineEnd(source []byte, from int) int {
	if from >= len(source) {
		return len(source)
	}
	if i := bytes.IndexByte(source[from:], '\n'); i >= 0 {
		return from + i
	}
	return len(source)
}

// formatItem rewrites a list item as a top-level "- " bullet. Continuation lines are
// moved from the item's content column to a two space indent.
func formatItem(source []byte, s span) string {
	lines := strings.Split(strings.ReplaceAll(string(source[s.start:s.end]), "\r\n", "\n"), "\n")

	head := strings.TrimLeft(lines[0], " \t")
	head = listMarker.ReplaceAllString(head, "")

	out := make([]string, 0, len(lines))
	out = append(out, "- "+strings.TrimRight(head, " \t"))

	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, "  "+dedent(line, s.content))
	}

	for len(out) > 1 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}

	return strings.Join(out, "\n")
}

func dedent(line string, width int) string {
	i := 0
	for i < width && i < len(line) && line[i] == ' ' {
		i++
	}
	return strings.TrimRight(line[i:], " \t")
}
