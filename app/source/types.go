package source

import (
	"path"
	"sort"
)

// Config types

type Config struct {
	Site    Site               `yaml:"site" toml:"site"`
	Sources map[string]*Source `yaml:"sources" toml:"sources"`
}

type Site struct {
	Title       string `yaml:"title" toml:"title"`
	Description string `yaml:"description" toml:"description"`
}

type Source struct {
	ID          string           `yaml:"-" toml:"-"` // Derived from the map key
	Name        string           `yaml:"name" toml:"name"`
	Description string           `yaml:"description" toml:"description"`
	URL         string           `yaml:"url" toml:"url"`         // Human facing repository URL
	RawURL      string           `yaml:"raw_url" toml:"raw_url"` // Base URL raw file content is fetched from
	Dir         string           `yaml:"dir" toml:"dir"`         // Local checkout, takes precedence over RawURL
	Skip        bool             `yaml:"skip" toml:"skip"`
	Enrich      bool             `yaml:"enrich" toml:"enrich"`
	Filters     []Filter         `yaml:"filters" toml:"filters"`
	Files       map[string]*File `yaml:"files" toml:"files"`
}

type File struct {
	Path    string       `yaml:"-" toml:"-"` // Derived from the map key
	Name    string       `yaml:"name" toml:"name"`
	Index   bool         `yaml:"index" toml:"index"`
	Options ParseOptions `yaml:"options" toml:"options"`
	Filters []Filter     `yaml:"filters" toml:"filters"`
}

type ParseOptions struct {
	MaxHeadingLevel int   `yaml:"max_heading_level" toml:"max_heading_level"`
	MinHeadingLevel int   `yaml:"min_heading_level" toml:"min_heading_level"` // 0 means deepest heading found
	IsParseCategory *bool `yaml:"is_parse_category" toml:"is_parse_category"`
}

// Filter is a declarative exclusion rule evaluated against a parsed entry.
type Filter struct {
	Field    string   `yaml:"field" toml:"field"` // category or text
	Match    string   `yaml:"match" toml:"match"` // contains (default), prefix or exact
	Includes []string `yaml:"includes" toml:"includes"`
	Excludes []string `yaml:"excludes" toml:"excludes"`
}

// ParseCategory reports whether headings are turned into entry categories.
func (o ParseOptions) ParseCategory() bool {
	return o.IsParseCategory == nil || *o.IsParseCategory
}

// SourceIDs returns the configured source identifiers in sorted order.
func (c *Config) SourceIDs() []string {
	ids := make([]string, 0, len(c.Sources))
	for id := range c.Sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FilePaths returns the tracked file paths of a source in sorted order.
func (s *Source) FilePaths() []string {
	paths := make([]string, 0, len(s.Files))
	for p := range s.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// FiltersFor merges the source-wide rules with the rules of one file.
func (s *Source) FiltersFor(filePath string) []Filter {
	filters := make([]Filter, 0, len(s.Filters))
	filters = append(filters, s.Filters...)
	if file, ok := s.Files[filePath]; ok {
		filters = append(filters, file.Filters...)
	}
	return filters
}

// OutputFolder is the folder, relative to the output roots, that a file's artifacts go to.
// Index files live directly under the source folder.
func (s *Source) OutputFolder(filePath string) string {
	if file, ok := s.Files[filePath]; ok && file.Index {
		return s.ID
	}
	ext := path.Ext(filePath)
	return path.Join(s.ID, filePath[:len(filePath)-len(ext)])
}
