package domain

// Market is one prediction-market record as returned by the retrieval API.
// It is a read-only snapshot: the core reasons over it but never mutates or
// persists it.
type Market struct {
	Slug      string
	Question  string
	Category  string
	Tags      []string
	Volume    float64
	Liquidity float64
	Active    bool

	// OutcomePrices and EndDate are opaque to the core; they are carried
	// through to formatted responses untouched.
	OutcomePrices []string
	EndDate       string
}

// HasTag reports whether the market carries the given tag.
func (m Market) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SortField is a market attribute the retrieval API can sort by.
type SortField string

const (
	SortByVolume    SortField = "volume"
	SortByLiquidity SortField = "liquidity"
)

// MarketFilter is the filter specification sent to the retrieval API's
// market-listing endpoint. Nil pointer fields mean "no constraint".
type MarketFilter struct {
	Category     string
	Active       *bool
	MinVolume    *float64
	MaxVolume    *float64
	MinLiquidity *float64
	MaxLiquidity *float64
	SortBy       SortField
	SortOrder    string // "asc" or "desc"; empty means the API default (desc)
	Limit        int
}
