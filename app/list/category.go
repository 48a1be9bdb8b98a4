package list

import (
	"strings"
)

// categoryStack tracks the heading path of the current position in a document.
// Index 0 holds the heading at the shallowest tracked level.
type categoryStack struct {
	base   int
	levels []string
}

func newCategoryStack(maxHeadingLevel int) *categoryStack {
	return &categoryStack{base: maxHeadingLevel}
}

// Push records a heading at the given depth. The heading replaces whatever was
// recorded at its depth and drops every deeper heading.
func (s *categoryStack) Push(depth int, title string) {
	idx := depth - s.base
	if idx < 0 {
		return
	}
	if idx > len(s.levels) {
		idx = len(s.levels)
	}
	s.levels = append(s.levels[:idx], title)
}

func (s *categoryStack) String() string {
	category := strings.TrimSpace(strings.Join(s.levels, " / "))
	category = strings.ReplaceAll(category, "\r\n", "")
	category = strings.ReplaceAll(category, "\n", "")
	return category
}
