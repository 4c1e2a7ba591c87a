package retrieval

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/alanyoungcy/polyanalyst/internal/domain"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so responses
// work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// flexFloat unmarshals from JSON number or numeric string. Anything else
// decodes as zero rather than failing the whole payload.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = flexFloat(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// apiTag unmarshals from either a plain string or a {"name": ...} object;
// the backend has used both shapes across versions.
type apiTag string

func (t *apiTag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = apiTag(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*t = apiTag(obj.Name)
	return nil
}

// apiPricing is the nested pricing block on a market record.
type apiPricing struct {
	Volume    flexFloat `json:"volume"`
	Liquidity flexFloat `json:"liquidity"`
}

// apiMarket is a market record as returned by the retrieval API.
type apiMarket struct {
	Slug          string     `json:"slug"`
	Question      string     `json:"question"`
	Category      string     `json:"category"`
	Tags          []apiTag   `json:"tags"`
	Pricing       apiPricing `json:"pricing"`
	Volume        flexFloat  `json:"volume"`    // top-level fallback
	Liquidity     flexFloat  `json:"liquidity"` // top-level fallback
	Active        flexBool   `json:"active"`
	OutcomePrices []string   `json:"outcomePrices"`
	EndDate       string     `json:"endDate"`
}

func (m *apiMarket) toDomain() domain.Market {
	volume := float64(m.Pricing.Volume)
	if volume == 0 {
		volume = float64(m.Volume)
	}
	liquidity := float64(m.Pricing.Liquidity)
	if liquidity == 0 {
		liquidity = float64(m.Liquidity)
	}

	tags := make([]string, 0, len(m.Tags))
	for _, t := range m.Tags {
		if t != "" {
			tags = append(tags, string(t))
		}
	}

	return domain.Market{
		Slug:          m.Slug,
		Question:      m.Question,
		Category:      m.Category,
		Tags:          tags,
		Volume:        volume,
		Liquidity:     liquidity,
		Active:        bool(m.Active),
		OutcomePrices: m.OutcomePrices,
		EndDate:       m.EndDate,
	}
}

// apiMarketStats mirrors the /stats/market response.
type apiMarketStats struct {
	TotalMarkets   int       `json:"totalMarkets"`
	ActiveMarkets  int       `json:"activeMarkets"`
	TotalVolume    flexFloat `json:"totalVolume"`
	TotalLiquidity flexFloat `json:"totalLiquidity"`
}

func (s *apiMarketStats) toDomain() domain.MarketStats {
	return domain.MarketStats{
		TotalMarkets:   s.TotalMarkets,
		ActiveMarkets:  s.ActiveMarkets,
		TotalVolume:    float64(s.TotalVolume),
		TotalLiquidity: float64(s.TotalLiquidity),
	}
}

// apiCategoryStats mirrors one element of the /stats/category response.
type apiCategoryStats struct {
	Category  string    `json:"category"`
	Markets   int       `json:"markets"`
	Volume    flexFloat `json:"volume"`
	Liquidity flexFloat `json:"liquidity"`
}

func (s *apiCategoryStats) toDomain() domain.CategoryStats {
	return domain.CategoryStats{
		Category:  s.Category,
		Markets:   s.Markets,
		Volume:    float64(s.Volume),
		Liquidity: float64(s.Liquidity),
	}
}
