// Package parser converts free-form user text into a structured
// domain.Command. Parsing is total: any input, including garbage, yields a
// command with a valid intent, never an error.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/alanyoungcy/polyanalyst/internal/domain"
)

// signature is one entry of the intent table. Matching is case-insensitive
// substring/phrase matching; extract fills intent-specific parameters.
type signature struct {
	name    string
	match   func(text string) bool
	intent  domain.Intent
	extract func(text string, cmd *domain.Command)
}

// signatures is evaluated top to bottom and the first match wins, so more
// specific phrases must sit above general ones. The order is a declared
// contract, pinned by tests: stats phrases shadow the word "markets", and
// recommend/analyze shadow the generic filter vocabulary.
var signatures = []signature{
	{
		name:   "stats",
		match:  func(t string) bool { return containsAny(t, "stats", "statistics", "overview") },
		intent: domain.IntentStats,
	},
	{
		name: "recommend",
		match: func(t string) bool {
			return containsAny(t, "recommend", "similar to", "related to")
		},
		intent:  domain.IntentRecommend,
		extract: extractSlug,
	},
	{
		name: "analyze",
		match: func(t string) bool {
			return containsAny(t, "analyze", "analysis", "tell me about", "what about", "look at") &&
				reSlug.MatchString(t)
		},
		intent:  domain.IntentAnalyzeMarket,
		extract: extractSlug,
	},
	{
		name: "filter",
		match: func(t string) bool {
			return containsAny(t, "market", "show", "find", "list", "top ")
		},
		intent:  domain.IntentFilterMarkets,
		extract: extractFilter,
	},
}

// Parse converts raw user text into a structured command. Unrecognized input
// yields IntentUnknown with the original text preserved in Raw so the
// dispatcher can echo it back in its fallback message.
func Parse(text string) domain.Command {
	cmd := domain.Command{Intent: domain.IntentUnknown, Raw: text}

	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return cmd
	}

	for _, sig := range signatures {
		if sig.match(t) {
			cmd.Intent = sig.intent
			if sig.extract != nil {
				sig.extract(t, &cmd)
			}
			return cmd
		}
	}

	return cmd
}

var (
	reAmount       = regexp.MustCompile(`^\$?(\d+(?:\.\d+)?)([km])?$`)
	reSlug         = regexp.MustCompile(`[a-z0-9]+(?:-[a-z0-9]+)+`)
	reCategoryPrep = regexp.MustCompile(`(?:in|for|about)\s+([a-z][a-z0-9-]*)\s+markets?`)
	reCategoryBare = regexp.MustCompile(`([a-z][a-z0-9-]*)\s+markets?`)
	reSortBy       = regexp.MustCompile(`(?:sorted|ordered|sort)\s+by\s+([a-z]+)`)
	reByMetric     = regexp.MustCompile(`\bby\s+(volume|liquidity)\b`)
	reTopLimit     = regexp.MustCompile(`(?:top|first|best)\s+(\d+)\b`)
	reVerbLimit    = regexp.MustCompile(`(?:show me|show|get|find|list|give me)\s+(\d+)\b`)
)

// metricBounds matches "volume over 50k", "liquidity < 2m" and the like.
var metricBounds = []struct {
	re  *regexp.Regexp
	set func(cmd *domain.Command, v float64)
}{
	{regexp.MustCompile(`volume\s+(?:over|above|greater than|>)\s+(\S+)`),
		func(c *domain.Command, v float64) { c.MinVolume = &v }},
	{regexp.MustCompile(`volume\s+(?:under|below|less than|<)\s+(\S+)`),
		func(c *domain.Command, v float64) { c.MaxVolume = &v }},
	{regexp.MustCompile(`liquidity\s+(?:over|above|greater than|>)\s+(\S+)`),
		func(c *domain.Command, v float64) { c.MinLiquidity = &v }},
	{regexp.MustCompile(`liquidity\s+(?:under|below|less than|<)\s+(\S+)`),
		func(c *domain.Command, v float64) { c.MaxLiquidity = &v }},
}

// categoryStopwords are words that precede "markets" without naming a
// category: "all markets", "the top markets", and so on.
var categoryStopwords = map[string]bool{
	"the": true, "all": true, "any": true, "some": true, "few": true,
	"active": true, "closed": true, "open": true, "top": true, "best": true,
	"first": true, "more": true, "these": true, "those": true, "many": true,
	"of": true, "me": true, "prediction": true, "which": true, "what": true,
}

// ParseAmount parses a numeric token with an optional k/m unit suffix:
// "50k" is 50000, "2.5m" is 2500000, bare numbers pass through. Malformed
// tokens report ok=false so the caller drops the constraint instead of
// guessing; degrading to "no constraint" is the contract.
func ParseAmount(token string) (float64, bool) {
	m := reAmount.FindStringSubmatch(strings.ToLower(strings.TrimSpace(token)))
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	switch m[2] {
	case "k":
		v *= 1e3
	case "m":
		v *= 1e6
	}
	return v, true
}

// extractFilter pulls category, active flag, numeric bounds, sort, and limit
// out of a filter query. Every extraction is best-effort: a malformed token
// leaves its parameter unset rather than failing the parse.
func extractFilter(t string, cmd *domain.Command) {
	// Category: prefer the prepositional form ("in crypto markets"), fall
	// back to the bare form ("top 5 crypto markets").
	if m := reCategoryPrep.FindStringSubmatch(t); m != nil {
		cmd.Category = m[1]
	} else {
		for _, m := range reCategoryBare.FindAllStringSubmatch(t, -1) {
			if !categoryStopwords[m[1]] {
				cmd.Category = m[1]
				break
			}
		}
	}

	if strings.Contains(t, "active") {
		v := true
		cmd.Active = &v
	} else if strings.Contains(t, "closed") {
		v := false
		cmd.Active = &v
	}

	for _, b := range metricBounds {
		if m := b.re.FindStringSubmatch(t); m != nil {
			if v, ok := ParseAmount(strings.TrimRight(m[1], ".,!?")); ok {
				b.set(cmd, v)
			}
		}
	}

	if m := reSortBy.FindStringSubmatch(t); m != nil {
		switch m[1] {
		case "volume":
			cmd.SortBy = domain.SortByVolume
		case "liquidity":
			cmd.SortBy = domain.SortByLiquidity
		}
	}
	if cmd.SortBy == "" {
		if m := reByMetric.FindStringSubmatch(t); m != nil {
			cmd.SortBy = domain.SortField(m[1])
		}
	}

	if containsAny(t, "lowest", "ascending", "least") {
		cmd.SortOrder = "asc"
	}

	if m := reTopLimit.FindStringSubmatch(t); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			cmd.Limit = n
		}
	} else if m := reVerbLimit.FindStringSubmatch(t); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			cmd.Limit = n
		}
	}
}

// intentPhrases are stripped before slug extraction so a phrase can never be
// mistaken for part of a market slug.
var intentPhrases = []string{
	"recommendations for", "recommendation for", "recommend",
	"similar to", "related to",
	"analyze", "analysis of", "tell me about", "what about", "look at",
}

// extractSlug takes the longest hyphenated token sequence remaining after
// intent keywords are stripped. Market slugs are the only hyphenated runs a
// query normally contains, and the market name is the longest one.
func extractSlug(t string, cmd *domain.Command) {
	for _, p := range intentPhrases {
		t = strings.ReplaceAll(t, p, " ")
	}

	var best string
	for _, tok := range reSlug.FindAllString(t, -1) {
		if len(tok) > len(best) {
			best = tok
		}
	}
	cmd.Slug = best
}

func containsAny(t string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}
