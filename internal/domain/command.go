package domain

// Intent is the closed set of recognized user-query purposes.
type Intent string

const (
	IntentStats         Intent = "stats"
	IntentFilterMarkets Intent = "filter_markets"
	IntentAnalyzeMarket Intent = "analyze_market"
	IntentRecommend     Intent = "recommend"
	IntentUnknown       Intent = "unknown"
)

// Valid reports whether the intent is a member of the closed enum.
func (i Intent) Valid() bool {
	switch i {
	case IntentStats, IntentFilterMarkets, IntentAnalyzeMarket,
		IntentRecommend, IntentUnknown:
		return true
	}
	return false
}

// Command is the structured form of one user query. The parser produces it,
// the dispatcher consumes it exactly once, then it is discarded.
//
// Raw always holds the original query text so the fallback path can echo it
// back to the user.
type Command struct {
	Intent Intent
	Raw    string

	// Filter parameters (filter_markets, and scoping for stats).
	Category     string
	Active       *bool
	MinVolume    *float64
	MaxVolume    *float64
	MinLiquidity *float64
	MaxLiquidity *float64
	SortBy       SortField
	SortOrder    string
	Limit        int // 0 means unset; the dispatcher applies the default

	// Target market (analyze_market, recommend).
	Slug string
}
