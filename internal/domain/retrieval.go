package domain

import "context"

// MarketRetriever is the boundary to the external data-retrieval API. All
// methods are idempotent reads; implementations issue exactly one outbound
// request per call with no caching and no retries.
type MarketRetriever interface {
	// QueryMarkets returns the markets matching the filter.
	QueryMarkets(ctx context.Context, filter MarketFilter) ([]Market, error)

	// MarketBySlug returns the market with the given slug, or an error
	// wrapping ErrNotFound when no such market exists.
	MarketBySlug(ctx context.Context, slug string) (Market, error)

	// MarketStats returns aggregate statistics for the whole universe.
	MarketStats(ctx context.Context) (MarketStats, error)

	// CategoryStats returns per-category aggregates.
	CategoryStats(ctx context.Context) ([]CategoryStats, error)
}
