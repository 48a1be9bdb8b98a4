package feed

import (
	"fmt"
	"os"

	"github.com/mmcdole/gofeed"
)

// Reader loads previously written feeds, JSON Feed or RSS.
type Reader struct {
	gofeedParser *gofeed.Parser
}

func NewReader() *Reader {
	return &Reader{
		gofeedParser: gofeed.NewParser(),
	}
}

func (r *Reader) Run(path string) (*gofeed.Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed: %w", err)
	}
	defer f.Close()

	parsed, err := r.gofeedParser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	return parsed, nil
}
