package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyanalyst/internal/domain"
)

func TestParse_TotalOverArbitraryInput(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"asdf qwerty",
		"?????",
		"show me everything about nothing-in-particular right now!!!",
		"市場の統計",
		"top markets markets markets",
		"\n\t\r",
		"volume over abc in markets",
	}

	for _, in := range inputs {
		cmd := Parse(in)
		assert.True(t, cmd.Intent.Valid(), "input %q produced invalid intent %q", in, cmd.Intent)
		assert.Equal(t, in, cmd.Raw)
	}
}

func TestParse_UnknownPreservesRawText(t *testing.T) {
	cmd := Parse("please order me a pizza")
	assert.Equal(t, domain.IntentUnknown, cmd.Intent)
	assert.Equal(t, "please order me a pizza", cmd.Raw)
}

func TestParse_ScenarioA(t *testing.T) {
	cmd := Parse("show me the top 5 crypto markets by volume")

	require.Equal(t, domain.IntentFilterMarkets, cmd.Intent)
	assert.Equal(t, "crypto", cmd.Category)
	assert.Equal(t, domain.SortByVolume, cmd.SortBy)
	assert.Equal(t, 5, cmd.Limit)
}

func TestParse_IntentTableOrder(t *testing.T) {
	// Specific phrases shadow general ones by declaration order: "market
	// stats" mentions markets but is a stats query, and "recommendations
	// for" wins over the filter vocabulary.
	cases := []struct {
		text string
		want domain.Intent
	}{
		{"market stats", domain.IntentStats},
		{"show me market statistics", domain.IntentStats},
		{"give me an overview", domain.IntentStats},
		{"recommendations for will-x-happen", domain.IntentRecommend},
		{"find markets similar to will-x-happen", domain.IntentRecommend},
		{"analyze will-x-happen", domain.IntentAnalyzeMarket},
		{"tell me about will-x-happen", domain.IntentAnalyzeMarket},
		{"show me crypto markets", domain.IntentFilterMarkets},
		{"top 10 markets", domain.IntentFilterMarkets},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Parse(tc.text).Intent, "text %q", tc.text)
	}
}

func TestParse_FilterBounds(t *testing.T) {
	cmd := Parse("active markets with volume over 50k and liquidity under 2.5m")

	require.Equal(t, domain.IntentFilterMarkets, cmd.Intent)
	require.NotNil(t, cmd.Active)
	assert.True(t, *cmd.Active)
	require.NotNil(t, cmd.MinVolume)
	assert.Equal(t, 50000.0, *cmd.MinVolume)
	require.NotNil(t, cmd.MaxLiquidity)
	assert.Equal(t, 2500000.0, *cmd.MaxLiquidity)
}

func TestParse_MalformedBoundDropped(t *testing.T) {
	cmd := Parse("markets with volume over abc")

	require.Equal(t, domain.IntentFilterMarkets, cmd.Intent)
	assert.Nil(t, cmd.MinVolume, "malformed token must leave the constraint unset, not zero")
}

func TestParse_SortAndOrder(t *testing.T) {
	cmd := Parse("markets sorted by liquidity, lowest first")
	assert.Equal(t, domain.SortByLiquidity, cmd.SortBy)
	assert.Equal(t, "asc", cmd.SortOrder)

	cmd = Parse("closed markets ordered by volume")
	assert.Equal(t, domain.SortByVolume, cmd.SortBy)
	require.NotNil(t, cmd.Active)
	assert.False(t, *cmd.Active)
}

func TestParse_SlugExtraction(t *testing.T) {
	cmd := Parse("recommendations for will-donald-trump-win-the-2024-election")
	require.Equal(t, domain.IntentRecommend, cmd.Intent)
	assert.Equal(t, "will-donald-trump-win-the-2024-election", cmd.Slug)

	// Longest hyphenated run wins when several are present.
	cmd = Parse("analyze will-btc-hit-100k-by-2026 not up-down")
	require.Equal(t, domain.IntentAnalyzeMarket, cmd.Intent)
	assert.Equal(t, "will-btc-hit-100k-by-2026", cmd.Slug)
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		token string
		want  float64
		ok    bool
	}{
		{"50k", 50000, true},
		{"2.5m", 2500000, true},
		{"1000", 1000, true},
		{"$10k", 10000, true},
		{"0", 0, true},
		{"abc", 0, false},
		{"50kk", 0, false},
		{"", 0, false},
		{"k", 0, false},
	}

	for _, tc := range cases {
		got, ok := ParseAmount(tc.token)
		assert.Equal(t, tc.ok, ok, "token %q", tc.token)
		if tc.ok {
			assert.Equal(t, tc.want, got, "token %q", tc.token)
		}
	}
}

func TestParse_CategoryPrepositionForm(t *testing.T) {
	cmd := Parse("find markets in politics markets") // prepositional form wins
	assert.Equal(t, "politics", cmd.Category)

	cmd = Parse("show me active markets about sports markets")
	assert.Equal(t, "sports", cmd.Category)

	cmd = Parse("show me all markets")
	assert.Empty(t, cmd.Category, "stopwords never become a category")
}
