package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyanalyst/internal/domain"
	"github.com/alanyoungcy/polyanalyst/internal/parser"
)

// fakeRetriever implements domain.MarketRetriever with pluggable behavior.
type fakeRetriever struct {
	mu      sync.Mutex
	queries []domain.MarketFilter

	queryFn    func(domain.MarketFilter) ([]domain.Market, error)
	bySlugFn   func(string) (domain.Market, error)
	statsFn    func() (domain.MarketStats, error)
	catStatsFn func() ([]domain.CategoryStats, error)
}

func (f *fakeRetriever) QueryMarkets(_ context.Context, filter domain.MarketFilter) ([]domain.Market, error) {
	f.mu.Lock()
	f.queries = append(f.queries, filter)
	f.mu.Unlock()
	if f.queryFn == nil {
		return nil, nil
	}
	return f.queryFn(filter)
}

func (f *fakeRetriever) MarketBySlug(_ context.Context, slug string) (domain.Market, error) {
	if f.bySlugFn == nil {
		return domain.Market{}, fmt.Errorf("fake: %w", domain.ErrNotFound)
	}
	return f.bySlugFn(slug)
}

func (f *fakeRetriever) MarketStats(context.Context) (domain.MarketStats, error) {
	if f.statsFn == nil {
		return domain.MarketStats{}, nil
	}
	return f.statsFn()
}

func (f *fakeRetriever) CategoryStats(context.Context) ([]domain.CategoryStats, error) {
	if f.catStatsFn == nil {
		return nil, nil
	}
	return f.catStatsFn()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDispatcher(r domain.MarketRetriever) *Dispatcher {
	return New(r, nil, nil, Config{}, testLogger())
}

func politicsMarket(slug string, volume float64, tags ...string) domain.Market {
	return domain.Market{Slug: slug, Question: slug, Category: "politics",
		Volume: volume, Tags: tags, Active: true}
}

func TestDispatch_ScenarioB_RecommendFlow(t *testing.T) {
	source := politicsMarket("will-donald-trump-win-the-2024-election", 1000, "election")
	snapshot := []domain.Market{
		source,
		politicsMarket("will-biden-drop-out", 900, "election"),
		politicsMarket("will-gop-take-senate", 800, "election"),
		politicsMarket("will-turnout-break-record", 700),
		{Slug: "will-it-rain-tomorrow", Category: "weather", Tags: []string{"rain"}},
	}

	r := &fakeRetriever{
		bySlugFn: func(slug string) (domain.Market, error) {
			require.Equal(t, source.Slug, slug)
			return source, nil
		},
		queryFn: func(f domain.MarketFilter) ([]domain.Market, error) {
			// The snapshot fetch must be scoped to the source's category.
			assert.Equal(t, "politics", f.Category)
			assert.Positive(t, f.Limit)
			return snapshot, nil
		},
	}
	d := newTestDispatcher(r)

	out := d.Dispatch(context.Background(),
		parser.Parse("recommendations for will-donald-trump-win-the-2024-election"))

	assert.NotContains(t, out, "will-it-rain-tomorrow", "unrelated market must be excluded")
	assert.NotContains(t, out, "1. will-donald-trump-win-the-2024-election", "source must be excluded")
	// Relevance order: two markets with category+tag above category-only.
	assert.Contains(t, out, "1. will-biden-drop-out")
	assert.Contains(t, out, "2. will-gop-take-senate")
	assert.Contains(t, out, "3. will-turnout-break-record")
}

func TestDispatch_ScenarioC_RetrievalFailure(t *testing.T) {
	r := &fakeRetriever{
		queryFn: func(domain.MarketFilter) ([]domain.Market, error) {
			return nil, fmt.Errorf("retrieval: query markets: %w: context deadline exceeded", domain.ErrRetrieval)
		},
	}
	d := newTestDispatcher(r)

	out := d.Dispatch(context.Background(), parser.Parse("show me crypto markets"))

	assert.Contains(t, out, "unavailable")
	assert.NotContains(t, out, "deadline", "transport detail must not leak to the user")
}

func TestDispatch_FilterDefaults(t *testing.T) {
	r := &fakeRetriever{}
	d := New(r, nil, nil, Config{DefaultLimit: 10, MaxLimit: 50}, testLogger())

	d.Dispatch(context.Background(), domain.Command{Intent: domain.IntentFilterMarkets})

	require.Len(t, r.queries, 1)
	assert.Equal(t, 10, r.queries[0].Limit)
	assert.Equal(t, domain.SortByVolume, r.queries[0].SortBy)

	// Oversized requests are clamped.
	d.Dispatch(context.Background(), domain.Command{Intent: domain.IntentFilterMarkets, Limit: 9999})
	require.Len(t, r.queries, 2)
	assert.Equal(t, 50, r.queries[1].Limit)
}

func TestDispatch_NotFoundMessage(t *testing.T) {
	d := newTestDispatcher(&fakeRetriever{})

	out := d.Dispatch(context.Background(), parser.Parse("analyze no-such-market"))
	assert.Contains(t, out, "couldn't find that market")
}

func TestDispatch_UnknownNeverFails(t *testing.T) {
	d := newTestDispatcher(&fakeRetriever{})

	out := d.Dispatch(context.Background(), parser.Parse("please order me a pizza"))
	assert.Contains(t, out, "didn't understand")
	assert.Contains(t, out, "pizza")
	assert.Contains(t, out, "market stats")
}

func TestDispatch_Stats(t *testing.T) {
	r := &fakeRetriever{
		statsFn: func() (domain.MarketStats, error) {
			return domain.MarketStats{TotalMarkets: 12, ActiveMarkets: 7,
				TotalVolume: 3400000, TotalLiquidity: 120000}, nil
		},
		catStatsFn: func() ([]domain.CategoryStats, error) {
			return []domain.CategoryStats{
				{Category: "politics", Markets: 8, Volume: 3000000},
				{Category: "crypto", Markets: 4, Volume: 400000},
			}, nil
		},
	}
	d := newTestDispatcher(r)

	out := d.Dispatch(context.Background(), parser.Parse("market stats"))

	assert.Contains(t, out, "12 (7 active)")
	assert.Contains(t, out, "3,400,000")
	assert.Contains(t, out, "politics: 8 markets")
	assert.Contains(t, out, "crypto: 4 markets")
}

func TestDispatch_StatsPartialFailure(t *testing.T) {
	r := &fakeRetriever{
		catStatsFn: func() ([]domain.CategoryStats, error) {
			return nil, fmt.Errorf("%w: HTTP 502", domain.ErrRetrieval)
		},
	}
	d := newTestDispatcher(r)

	out := d.Dispatch(context.Background(), parser.Parse("market stats"))
	assert.Contains(t, out, "unavailable")
}

func TestDispatch_AnalyzeNarrative(t *testing.T) {
	m := domain.Market{
		Slug:          "will-btc-hit-100k",
		Question:      "Will BTC hit $100k?",
		Category:      "crypto",
		Tags:          []string{"btc"},
		Volume:        2000000,
		Liquidity:     150000,
		Active:        true,
		OutcomePrices: []string{"0.4", "0.6"},
	}
	r := &fakeRetriever{
		bySlugFn: func(slug string) (domain.Market, error) { return m, nil },
	}
	d := newTestDispatcher(r)

	out := d.Dispatch(context.Background(), parser.Parse("analyze will-btc-hit-100k"))

	assert.Contains(t, out, "Will BTC hit $100k?")
	assert.Contains(t, out, "Category: crypto")
	assert.Contains(t, out, "Status: active")
	assert.Contains(t, out, "0.4 / 0.6")
	assert.Contains(t, out, "2,000,000")
}

func TestDispatch_RecommendWithoutSlugAsksForOne(t *testing.T) {
	d := newTestDispatcher(&fakeRetriever{})

	out := d.Dispatch(context.Background(), domain.Command{Intent: domain.IntentRecommend})
	assert.Contains(t, out, "slug")
}

func TestHandleText_EndToEnd(t *testing.T) {
	r := &fakeRetriever{
		queryFn: func(f domain.MarketFilter) ([]domain.Market, error) {
			assert.Equal(t, "crypto", f.Category)
			assert.Equal(t, 5, f.Limit)
			return []domain.Market{
				{Slug: "m1", Question: "Q1", Volume: 100, Liquidity: 10},
			}, nil
		},
	}
	d := newTestDispatcher(r)

	out := d.HandleText(context.Background(), "session-1", "show me the top 5 crypto markets by volume")
	assert.Contains(t, out, "1. Q1")
}
