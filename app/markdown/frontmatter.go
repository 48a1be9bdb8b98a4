package markdown

import (
	"bytes"

	"github.com/adrg/frontmatter"
)

// FrontMatter holds the document level metadata a tracked list may declare.
type FrontMatter struct {
	Title       string `yaml:"title" toml:"title"`
	Description string `yaml:"description" toml:"description"`
}

// SplitFrontMatter separates optional YAML/TOML front matter from the markdown body.
// The returned line offset is the number of lines consumed by the front matter, so
// positions computed on the body can be mapped back onto the original document.
// Documents with malformed front matter are returned unchanged.
func SplitFrontMatter(source []byte) (FrontMatter, []byte, int) {
	var meta FrontMatter

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil || !bytes.HasSuffix(source, body) {
		return FrontMatter{}, source, 0
	}

	consumed := source[:len(source)-len(body)]
	return meta, body, bytes.Count(consumed, []byte("\n"))
}
