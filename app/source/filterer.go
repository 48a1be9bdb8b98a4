package source

import (
	"fmt"
	"strings"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run reports whether an entry with the given category and text is excluded by filters,
// together with a human readable reason.
func (f *Filterer) Run(category, text string, filters []Filter) (bool, string) {
	for _, filter := range filters {
		value := f.getFieldValue(category, text, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude, filter.Match) {
				return true, fmt.Sprintf("Excluded by %s filter: matches '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include, filter.Match) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not match any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern, match string) bool {
	value = strings.ToLower(value)
	pattern = strings.ToLower(pattern)

	switch match {
	case "prefix":
		return strings.HasPrefix(value, pattern)
	case "exact":
		return value == pattern
	default:
		return strings.Contains(value, pattern)
	}
}

func (f *Filterer) getFieldValue(category, text, field string) string {
	switch field {
	case "category":
		return category
	case "text":
		return text
	default:
		return ""
	}
}
