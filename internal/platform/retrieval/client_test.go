package retrieval

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyanalyst/internal/domain"
)

func TestQueryMarkets_FilterTranslation(t *testing.T) {
	var gotQuery map[string]string
	var gotAPIKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("X-API-Key")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", time.Second)

	active := true
	minVol := 50000.0
	_, err := c.QueryMarkets(context.Background(), domain.MarketFilter{
		Category:  "crypto",
		Active:    &active,
		MinVolume: &minVol,
		SortBy:    domain.SortByVolume,
		SortOrder: "asc",
		Limit:     5,
	})
	require.NoError(t, err)

	assert.Equal(t, "secret", gotAPIKey)
	assert.Equal(t, map[string]string{
		"category":  "crypto",
		"active":    "true",
		"volume_gt": "50000",
		"sortBy":    "pricing.volume",
		"sortOrder": "asc",
		"limit":     "5",
	}, gotQuery)
}

func TestQueryMarkets_DecodesFlexiblePayload(t *testing.T) {
	// The backend has sent tags as objects, numbers as strings, and the
	// active flag as a string across versions; all must decode.
	const payload = `[{
		"slug": "will-btc-hit-100k",
		"question": "Will BTC hit $100k?",
		"category": "crypto",
		"tags": [{"name": "btc"}, "bitcoin"],
		"pricing": {"volume": "1500000", "liquidity": 20000},
		"active": "true",
		"outcomePrices": ["0.4", "0.6"]
	}]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	markets, err := New(srv.URL, "", time.Second).QueryMarkets(context.Background(), domain.MarketFilter{})
	require.NoError(t, err)
	require.Len(t, markets, 1)

	m := markets[0]
	assert.Equal(t, "will-btc-hit-100k", m.Slug)
	assert.Equal(t, []string{"btc", "bitcoin"}, m.Tags)
	assert.Equal(t, 1500000.0, m.Volume)
	assert.Equal(t, 20000.0, m.Liquidity)
	assert.True(t, m.Active)
	assert.Equal(t, []string{"0.4", "0.6"}, m.OutcomePrices)
}

func TestMarketBySlug_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Second).MarketBySlug(context.Background(), "no-such-market")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrRetrieval)
}

func TestErrorNormalization(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := New(srv.URL, "", time.Second).MarketStats(context.Background())
		assert.ErrorIs(t, err, domain.ErrRetrieval)
	})

	t.Run("malformed payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`))
		}))
		defer srv.Close()

		_, err := New(srv.URL, "", time.Second).CategoryStats(context.Background())
		assert.ErrorIs(t, err, domain.ErrRetrieval)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		_, err := New(srv.URL, "", 20*time.Millisecond).QueryMarkets(context.Background(), domain.MarketFilter{})
		assert.ErrorIs(t, err, domain.ErrRetrieval)
	})

	t.Run("unreachable host", func(t *testing.T) {
		_, err := New("http://127.0.0.1:1", "", 100*time.Millisecond).MarketStats(context.Background())
		assert.ErrorIs(t, err, domain.ErrRetrieval)
	})
}

func TestMarketStats_Decode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats/market", r.URL.Path)
		w.Write([]byte(`{"totalMarkets": 120, "activeMarkets": 75, "totalVolume": "9000000", "totalLiquidity": 450000}`))
	}))
	defer srv.Close()

	stats, err := New(srv.URL, "", time.Second).MarketStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, stats.TotalMarkets)
	assert.Equal(t, 75, stats.ActiveMarkets)
	assert.Equal(t, 9000000.0, stats.TotalVolume)
	assert.Equal(t, 450000.0, stats.TotalLiquidity)
}
