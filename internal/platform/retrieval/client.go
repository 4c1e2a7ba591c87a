// Package retrieval implements domain.MarketRetriever against the backend
// market-data API. Each method issues exactly one outbound request; there is
// no caching and no retrying here; the backend owns those concerns.
//
// Every transport-level failure (dial error, timeout, non-success status,
// malformed payload) is normalized to domain.ErrRetrieval with a readable
// cause, so callers never see transport-specific error shapes.
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alanyoungcy/polyanalyst/internal/domain"
)

// Client is the REST client for the market-data retrieval API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a retrieval Client.
//
// baseURL is the API root, e.g. "http://127.0.0.1:5000". timeout bounds each
// request; an expired deadline surfaces as domain.ErrRetrieval.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// QueryMarkets returns the markets matching the filter.
func (c *Client) QueryMarkets(ctx context.Context, filter domain.MarketFilter) ([]domain.Market, error) {
	path := "/markets/?" + encodeFilter(filter).Encode()

	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("retrieval: query markets: %w", err)
	}

	var apiMarkets []apiMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return nil, fmt.Errorf("retrieval: decode markets: %w: %v", domain.ErrRetrieval, err)
	}

	markets := make([]domain.Market, 0, len(apiMarkets))
	for i := range apiMarkets {
		markets = append(markets, apiMarkets[i].toDomain())
	}
	return markets, nil
}

// MarketBySlug returns a single market looked up by its URL slug. It wraps
// domain.ErrNotFound when the backend has no record for the slug.
func (c *Client) MarketBySlug(ctx context.Context, slug string) (domain.Market, error) {
	params := url.Values{}
	params.Set("slug", slug)

	body, err := c.doGet(ctx, "/markets/?"+params.Encode())
	if err != nil {
		return domain.Market{}, fmt.Errorf("retrieval: get market by slug %s: %w", slug, err)
	}

	var apiMarkets []apiMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return domain.Market{}, fmt.Errorf("retrieval: decode market: %w: %v", domain.ErrRetrieval, err)
	}

	if len(apiMarkets) == 0 {
		return domain.Market{}, fmt.Errorf("retrieval: %w: slug=%s", domain.ErrNotFound, slug)
	}
	return apiMarkets[0].toDomain(), nil
}

// MarketStats returns aggregate statistics for the whole market universe.
func (c *Client) MarketStats(ctx context.Context) (domain.MarketStats, error) {
	body, err := c.doGet(ctx, "/stats/market")
	if err != nil {
		return domain.MarketStats{}, fmt.Errorf("retrieval: get market stats: %w", err)
	}

	var stats apiMarketStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return domain.MarketStats{}, fmt.Errorf("retrieval: decode market stats: %w: %v", domain.ErrRetrieval, err)
	}
	return stats.toDomain(), nil
}

// CategoryStats returns per-category aggregates.
func (c *Client) CategoryStats(ctx context.Context) ([]domain.CategoryStats, error) {
	body, err := c.doGet(ctx, "/stats/category")
	if err != nil {
		return nil, fmt.Errorf("retrieval: get category stats: %w", err)
	}

	var apiStats []apiCategoryStats
	if err := json.Unmarshal(body, &apiStats); err != nil {
		return nil, fmt.Errorf("retrieval: decode category stats: %w: %v", domain.ErrRetrieval, err)
	}

	stats := make([]domain.CategoryStats, 0, len(apiStats))
	for i := range apiStats {
		stats = append(stats, apiStats[i].toDomain())
	}
	return stats, nil
}

// encodeFilter translates the internal filter names to the backend's query
// contract. Sort fields are namespaced under "pricing." on the wire.
func encodeFilter(f domain.MarketFilter) url.Values {
	params := url.Values{}

	if f.Category != "" {
		params.Set("category", f.Category)
	}
	if f.Active != nil {
		params.Set("active", strconv.FormatBool(*f.Active))
	}
	if f.MinVolume != nil {
		params.Set("volume_gt", formatAmount(*f.MinVolume))
	}
	if f.MaxVolume != nil {
		params.Set("volume_lt", formatAmount(*f.MaxVolume))
	}
	if f.MinLiquidity != nil {
		params.Set("liquidity_gt", formatAmount(*f.MinLiquidity))
	}
	if f.MaxLiquidity != nil {
		params.Set("liquidity_lt", formatAmount(*f.MaxLiquidity))
	}
	if f.SortBy != "" {
		params.Set("sortBy", "pricing."+string(f.SortBy))
	}
	if f.SortOrder != "" {
		params.Set("sortOrder", f.SortOrder)
	}
	if f.Limit > 0 {
		params.Set("limit", strconv.Itoa(f.Limit))
	}

	return params
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// doGet sends one GET request to the retrieval API.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrRetrieval, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrieval, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrRetrieval, err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to domain errors. 404 keeps its
// not-found meaning; everything else is a retrieval failure.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	if statusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, string(body))
	}
	return fmt.Errorf("%w: HTTP %d: %s", domain.ErrRetrieval, statusCode, string(body))
}
