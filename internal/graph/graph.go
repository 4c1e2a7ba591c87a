// Package graph materializes an in-memory relationship graph from a batch of
// market records. Nodes are markets keyed by slug; edges are undirected and
// typed by the shared attribute that created them.
//
// A graph is built fresh from one snapshot, consumed by one recommendation
// query, and discarded. It is read-only after Build, so it needs no locking.
package graph

import (
	"strings"

	"github.com/alanyoungcy/polyanalyst/internal/domain"
)

// EdgeType describes why two markets are related.
type EdgeType string

const (
	EdgeSameCategory EdgeType = "same_category"
	EdgeSharedTag    EdgeType = "shared_tag"
)

// Edge is one relation between two markets. Value carries the matched
// attribute as evidence: the common category or the common tag.
type Edge struct {
	Type  EdgeType
	Value string
}

// Graph is an undirected market-relation graph.
type Graph struct {
	nodes map[string]domain.Market
	adj   map[string]map[string][]Edge
}

// Build constructs a graph from a snapshot of markets. It is pure and
// order-independent: permuting the input yields an isomorphic graph.
//
// Edge rule, applied to every unordered pair of distinct markets: one
// same_category edge iff both categories are equal (case-insensitive) and
// non-empty, plus one shared_tag edge per tag present in both tag sets.
// Shared tags are never merged into a single edge; each contributes its own
// evidence.
//
// Cost is quadratic in len(markets). Callers scope the fetch (for example to
// the source market's category) before building; feeding an unbounded
// snapshot in here is the caller's bug.
func Build(markets []domain.Market) *Graph {
	g := &Graph{
		nodes: make(map[string]domain.Market, len(markets)),
		adj:   make(map[string]map[string][]Edge),
	}

	// One node per distinct slug; a duplicate record in the snapshot
	// collapses onto the first occurrence.
	slugs := make([]string, 0, len(markets))
	for _, m := range markets {
		if m.Slug == "" {
			continue
		}
		if _, ok := g.nodes[m.Slug]; ok {
			continue
		}
		g.nodes[m.Slug] = m
		slugs = append(slugs, m.Slug)
	}

	for i := 0; i < len(slugs); i++ {
		for j := i + 1; j < len(slugs); j++ {
			a, b := g.nodes[slugs[i]], g.nodes[slugs[j]]
			for _, e := range relate(a, b) {
				g.addEdge(a.Slug, b.Slug, e)
			}
		}
	}

	return g
}

// relate computes the edge set between one pair of markets.
func relate(a, b domain.Market) []Edge {
	var edges []Edge

	ca, cb := normalize(a.Category), normalize(b.Category)
	if ca != "" && ca == cb {
		edges = append(edges, Edge{Type: EdgeSameCategory, Value: ca})
	}

	seen := make(map[string]bool, len(a.Tags))
	for _, t := range a.Tags {
		if nt := normalize(t); nt != "" {
			seen[nt] = true
		}
	}
	for _, t := range b.Tags {
		nt := normalize(t)
		if seen[nt] {
			edges = append(edges, Edge{Type: EdgeSharedTag, Value: nt})
			seen[nt] = false // one edge per common tag
		}
	}

	return edges
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (g *Graph) addEdge(a, b string, e Edge) {
	if g.adj[a] == nil {
		g.adj[a] = make(map[string][]Edge)
	}
	if g.adj[b] == nil {
		g.adj[b] = make(map[string][]Edge)
	}
	g.adj[a][b] = append(g.adj[a][b], e)
	g.adj[b][a] = append(g.adj[b][a], e)
}

// Has reports whether a market with the given slug is in the graph.
func (g *Graph) Has(slug string) bool {
	_, ok := g.nodes[slug]
	return ok
}

// Node returns the market behind a slug.
func (g *Graph) Node(slug string) (domain.Market, bool) {
	m, ok := g.nodes[slug]
	return m, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Neighbors returns every market directly related to slug, with the full
// edge set for each. The returned map is shared with the graph; callers must
// treat it as read-only.
func (g *Graph) Neighbors(slug string) map[string][]Edge {
	return g.adj[slug]
}

// EdgesBetween returns the edges connecting two markets, nil when unrelated.
func (g *Graph) EdgesBetween(a, b string) []Edge {
	return g.adj[a][b]
}
