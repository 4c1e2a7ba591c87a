package domain

// MarketStats is the aggregate statistics object returned by the retrieval
// API for the whole market universe.
type MarketStats struct {
	TotalMarkets   int
	ActiveMarkets  int
	TotalVolume    float64
	TotalLiquidity float64
}

// CategoryStats holds per-category aggregates.
type CategoryStats struct {
	Category  string
	Markets   int
	Volume    float64
	Liquidity float64
}
