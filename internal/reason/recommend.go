// Package reason runs deduction rules over a market-relation graph.
//
// The only rule implemented is one-hop deduction: a market is relevant to the
// source iff it shares at least one direct edge with it. Multi-hop chaining
// ("related to a market related to X") is a deliberate extension point, not
// current behavior.
package reason

import (
	"fmt"
	"sort"

	"github.com/alanyoungcy/polyanalyst/internal/domain"
	"github.com/alanyoungcy/polyanalyst/internal/graph"
)

// Weights scores each relation type. They come from configuration, not from
// constants buried in the scoring loop.
type Weights struct {
	SameCategory float64
	SharedTag    float64
}

// DefaultWeights returns the stock scoring weights: a shared category counts
// double a shared tag.
func DefaultWeights() Weights {
	return Weights{SameCategory: 1.0, SharedTag: 0.5}
}

func (w Weights) edge(e graph.Edge) float64 {
	switch e.Type {
	case graph.EdgeSameCategory:
		return w.SameCategory
	case graph.EdgeSharedTag:
		return w.SharedTag
	}
	return 0
}

// Recommendation is one related market with its relevance score and the
// edges that produced it.
type Recommendation struct {
	Market    domain.Market
	Score     float64
	Relations []graph.Edge
}

// Recommend returns the markets directly related to sourceSlug, scored by
// the weighted count of their edges to it, best first. The source itself is
// never part of the result. Ties are broken by volume descending, then slug
// ascending, so the ordering is fully deterministic.
//
// limit > 0 truncates the result; limit <= 0 returns every related market.
// It returns domain.ErrNotFound when sourceSlug has no node in the graph.
func Recommend(g *graph.Graph, sourceSlug string, limit int, w Weights) ([]Recommendation, error) {
	if !g.Has(sourceSlug) {
		return nil, fmt.Errorf("reason: market %q: %w", sourceSlug, domain.ErrNotFound)
	}

	neighbors := g.Neighbors(sourceSlug)
	recs := make([]Recommendation, 0, len(neighbors))
	for slug, edges := range neighbors {
		if slug == sourceSlug {
			continue
		}
		m, ok := g.Node(slug)
		if !ok {
			continue
		}

		var score float64
		for _, e := range edges {
			score += w.edge(e)
		}
		if score <= 0 {
			continue
		}

		recs = append(recs, Recommendation{Market: m, Score: score, Relations: edges})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		if recs[i].Market.Volume != recs[j].Market.Volume {
			return recs[i].Market.Volume > recs[j].Market.Volume
		}
		return recs[i].Market.Slug < recs[j].Market.Slug
	})

	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}

	return recs, nil
}
