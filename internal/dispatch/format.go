package dispatch

import (
	"fmt"
	"strings"

	"github.com/alanyoungcy/polyanalyst/internal/analysis"
	"github.com/alanyoungcy/polyanalyst/internal/domain"
	"github.com/alanyoungcy/polyanalyst/internal/graph"
	"github.com/alanyoungcy/polyanalyst/internal/reason"
)

func formatMarkets(markets []domain.Market) string {
	if len(markets) == 0 {
		return "I couldn't find any markets matching your query."
	}

	var b strings.Builder
	b.WriteString("Here are the markets I found:\n")
	for i, m := range markets {
		question := m.Question
		if question == "" {
			question = m.Slug
		}
		fmt.Fprintf(&b, "%d. %s (Volume: $%s, Liq: $%s)\n",
			i+1, question,
			analysis.FormatDollars(m.Volume),
			analysis.FormatDollars(m.Liquidity))
	}
	return b.String()
}

func formatStats(overall domain.MarketStats, categories []domain.CategoryStats) string {
	var b strings.Builder
	b.WriteString("Here are the latest market stats:\n")
	fmt.Fprintf(&b, "Markets: %d (%d active)\n", overall.TotalMarkets, overall.ActiveMarkets)
	fmt.Fprintf(&b, "Total volume: $%s | Total liquidity: $%s\n",
		analysis.FormatDollars(overall.TotalVolume),
		analysis.FormatDollars(overall.TotalLiquidity))

	if len(categories) > 0 {
		b.WriteString("By category:\n")
		for _, c := range categories {
			fmt.Fprintf(&b, "- %s: %d markets, $%s volume\n",
				c.Category, c.Markets, analysis.FormatDollars(c.Volume))
		}
	}
	return b.String()
}

func formatRecommendations(source domain.Market, recs []reason.Recommendation) string {
	if len(recs) == 0 {
		return fmt.Sprintf("I couldn't find any good recommendations for %q.", source.Slug)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on category and shared tags, markets related to %q:\n", source.Slug)
	for i, r := range recs {
		fmt.Fprintf(&b, "%d. %s (score %.1f, %s)\n",
			i+1, r.Market.Slug, r.Score, describeRelations(r.Relations))
	}
	return b.String()
}

// describeRelations renders the evidence behind one recommendation, e.g.
// "same category 'politics', 2 shared tags".
func describeRelations(edges []graph.Edge) string {
	var category string
	var tags int
	for _, e := range edges {
		switch e.Type {
		case graph.EdgeSameCategory:
			category = e.Value
		case graph.EdgeSharedTag:
			tags++
		}
	}

	var parts []string
	if category != "" {
		parts = append(parts, fmt.Sprintf("same category %q", category))
	}
	switch tags {
	case 0:
	case 1:
		parts = append(parts, "1 shared tag")
	default:
		parts = append(parts, fmt.Sprintf("%d shared tags", tags))
	}
	if len(parts) == 0 {
		return "related"
	}
	return strings.Join(parts, ", ")
}

func askForSlug(verb string) string {
	return fmt.Sprintf("Tell me which market to %s — paste its slug, the "+
		"hyphenated name from the market's URL.", verb)
}

func helpMessage(raw string) string {
	var b strings.Builder
	if strings.TrimSpace(raw) != "" {
		fmt.Fprintf(&b, "I didn't understand %q. ", strings.TrimSpace(raw))
	}
	b.WriteString("Here's what I can do:\n")
	b.WriteString("- \"market stats\" — overall and per-category aggregates\n")
	b.WriteString("- \"show me the top 5 crypto markets by volume\" — filtered market lists\n")
	b.WriteString("- \"analyze <market-slug>\" — a breakdown of one market\n")
	b.WriteString("- \"recommendations for <market-slug>\" — related markets\n")
	return b.String()
}
