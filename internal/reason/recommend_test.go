package reason

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyanalyst/internal/domain"
	"github.com/alanyoungcy/polyanalyst/internal/graph"
)

func market(slug, category string, volume float64, tags ...string) domain.Market {
	return domain.Market{Slug: slug, Category: category, Volume: volume, Tags: tags}
}

func TestRecommend_SourceMissing(t *testing.T) {
	g := graph.Build([]domain.Market{market("a", "politics", 0)})

	_, err := Recommend(g, "nope", 5, DefaultWeights())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecommend_ExcludesSourceAndRespectsLimit(t *testing.T) {
	markets := []domain.Market{
		market("source", "politics", 100, "election"),
		market("r1", "politics", 90, "election"),
		market("r2", "politics", 80),
		market("r3", "politics", 70, "election"),
		market("r4", "politics", 60),
	}
	g := graph.Build(markets)

	recs, err := Recommend(g, "source", 2, DefaultWeights())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.NotEqual(t, "source", r.Market.Slug)
	}
}

func TestRecommend_ScoreOrderingAndEvidence(t *testing.T) {
	// r1 shares category + 2 tags (score 2.0), r2 shares category + 1 tag
	// (1.5), r3 shares category only (1.0).
	markets := []domain.Market{
		market("source", "politics", 100, "election", "us"),
		market("r3", "politics", 999),
		market("r1", "politics", 10, "election", "us"),
		market("r2", "politics", 50, "election"),
	}
	g := graph.Build(markets)

	recs, err := Recommend(g, "source", 10, DefaultWeights())
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "r1", recs[0].Market.Slug)
	assert.Equal(t, 2.0, recs[0].Score)
	assert.Len(t, recs[0].Relations, 3)

	assert.Equal(t, "r2", recs[1].Market.Slug)
	assert.Equal(t, 1.5, recs[1].Score)

	assert.Equal(t, "r3", recs[2].Market.Slug)
	assert.Equal(t, 1.0, recs[2].Score)
}

func TestRecommend_TieBreakVolumeThenSlug(t *testing.T) {
	markets := []domain.Market{
		market("source", "crypto", 0, "btc"),
		market("b-market", "crypto", 500),
		market("a-market", "crypto", 500),
		market("big", "crypto", 900),
	}
	g := graph.Build(markets)

	recs, err := Recommend(g, "source", 10, DefaultWeights())
	require.NoError(t, err)
	require.Len(t, recs, 3)

	// Equal scores: volume descending, then slug ascending.
	assert.Equal(t, "big", recs[0].Market.Slug)
	assert.Equal(t, "a-market", recs[1].Market.Slug)
	assert.Equal(t, "b-market", recs[2].Market.Slug)
}

func TestRecommend_UnrelatedMarketExcluded(t *testing.T) {
	markets := []domain.Market{
		market("source", "politics", 100, "election"),
		market("related", "politics", 50),
		market("loner", "weather", 9999, "rain"),
	}
	g := graph.Build(markets)

	recs, err := Recommend(g, "source", 10, DefaultWeights())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "related", recs[0].Market.Slug)
}

func TestRecommend_ConfiguredWeights(t *testing.T) {
	markets := []domain.Market{
		market("source", "politics", 0, "election"),
		market("tagged", "weather", 0, "election"),
		market("samecat", "politics", 0),
	}
	g := graph.Build(markets)

	// Make a shared tag worth more than a shared category.
	w := Weights{SameCategory: 0.1, SharedTag: 5.0}
	recs, err := Recommend(g, "source", 10, w)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "tagged", recs[0].Market.Slug)
	assert.Equal(t, 5.0, recs[0].Score)
	assert.Equal(t, "samecat", recs[1].Market.Slug)
}

func TestRecommend_NoLimitReturnsAll(t *testing.T) {
	markets := []domain.Market{
		market("source", "politics", 0),
		market("a", "politics", 1),
		market("b", "politics", 2),
	}
	g := graph.Build(markets)

	recs, err := Recommend(g, "source", 0, DefaultWeights())
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}
