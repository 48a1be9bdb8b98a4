package list

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// enrich passes every candidate through the enricher with at most p.workers calls in
// flight. Results keep the candidate order; a failed call keeps the candidate as is.
func (p *Parser) enrich(ctx context.Context, candidates []Entry) []Entry {
	results := make([]Entry, len(candidates))

	var g errgroup.Group
	g.SetLimit(p.workers)

	for i, candidate := range candidates {
		g.Go(func() error {
			results[i] = candidate

			enriched, err := p.enricher.Enrich(ctx, candidate)
			if err != nil {
				slog.Warn("Failed to enrich entry", "identifier", candidate.Identifier, "line", candidate.Line, "error", err)
				return nil
			}

			results[i].Markdown = enriched.Markdown
			return nil
		})
	}

	_ = g.Wait()

	return results
}
