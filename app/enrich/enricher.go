// Package enrich holds the collaborators that decorate parsed entries with
// external metadata.
package enrich

import (
	"context"

	"github.com/lysyi3m/list-comb/app/list"
)

// Noop leaves entries untouched.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Enrich(_ context.Context, entry list.Entry) (list.Entry, error) {
	return entry, nil
}

var (
	_ list.Enricher = (*Noop)(nil)
	_ list.Enricher = (*GitHubStars)(nil)
)
