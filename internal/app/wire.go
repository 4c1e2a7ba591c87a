package app

import (
	"context"
	"log/slog"

	"github.com/alanyoungcy/polyanalyst/internal/analysis"
	"github.com/alanyoungcy/polyanalyst/internal/config"
	"github.com/alanyoungcy/polyanalyst/internal/dispatch"
	"github.com/alanyoungcy/polyanalyst/internal/domain"
	"github.com/alanyoungcy/polyanalyst/internal/platform/retrieval"
	"github.com/alanyoungcy/polyanalyst/internal/reason"
	"github.com/alanyoungcy/polyanalyst/internal/session"
	"github.com/alanyoungcy/polyanalyst/internal/store/postgres"
)

// Dependencies bundles everything the transports need to answer queries. It
// is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Retriever  domain.MarketRetriever
	Sessions   domain.SessionStore // nil when Redis is unavailable
	QueryLog   domain.QueryLogStore
	Dispatcher *dispatch.Dispatcher
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown.
//
// Redis and Postgres are optional collaborators: an unreachable Redis only
// costs session history, and Postgres is skipped unless configured. The
// retrieval endpoint is the one dependency the analyst cannot live without,
// but it is lazily dialed. A dead backend shows up per-request as a
// "data unavailable" answer, not as a startup failure.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	retriever := retrieval.New(cfg.Retrieval.BaseURL, cfg.Retrieval.APIKey, cfg.Retrieval.Timeout())

	var sessions domain.SessionStore
	if cfg.Redis.Addr != "" {
		store, err := session.NewStore(ctx, cfg.Redis, cfg.Session)
		if err != nil {
			logger.Warn("session store unavailable, continuing without history",
				slog.String("addr", cfg.Redis.Addr),
				slog.String("error", err.Error()),
			)
		} else {
			sessions = store
			closers = append(closers, func() { _ = store.Close() })
		}
	}

	var queryLog domain.QueryLogStore
	if cfg.Postgres.Enabled() {
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, client.Close)
		queryLog = postgres.NewQueryLogStore(client.Pool())
	}

	var commentator analysis.Commentator
	if cfg.LLM.APIKey != "" {
		commentator = analysis.NewLLMCommentator(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
	}

	dispatcher := dispatch.New(retriever, commentator, queryLog, dispatch.Config{
		DefaultLimit: cfg.Query.DefaultLimit,
		MaxLimit:     cfg.Query.MaxLimit,
		DefaultSort:  domain.SortField(cfg.Query.DefaultSort),
		ScopeLimit:   cfg.Reasoning.ScopeLimit,
		Weights: reason.Weights{
			SameCategory: cfg.Reasoning.SameCategoryWeight,
			SharedTag:    cfg.Reasoning.SharedTagWeight,
		},
	}, logger)

	return &Dependencies{
		Retriever:  retriever,
		Sessions:   sessions,
		QueryLog:   queryLog,
		Dispatcher: dispatcher,
	}, cleanup, nil
}
