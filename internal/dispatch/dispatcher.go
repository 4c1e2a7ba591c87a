// Package dispatch routes structured commands to retrieval tools or the
// reasoning engine and renders the outcome as user-facing text.
//
// Dispatch is the single chokepoint for per-request failures: every error
// from the layers below is converted to a specific natural-language message
// here, so the transport layer always has something to send back.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polyanalyst/internal/analysis"
	"github.com/alanyoungcy/polyanalyst/internal/domain"
	"github.com/alanyoungcy/polyanalyst/internal/graph"
	"github.com/alanyoungcy/polyanalyst/internal/parser"
	"github.com/alanyoungcy/polyanalyst/internal/reason"
)

// Config holds the dispatcher's tuning surface.
type Config struct {
	// DefaultLimit applies when the user did not ask for a count; MaxLimit
	// caps whatever they asked for.
	DefaultLimit int
	MaxLimit     int
	DefaultSort  domain.SortField

	// ScopeLimit bounds the snapshot fetched before graph construction.
	ScopeLimit int

	Weights reason.Weights
}

// Dispatcher routes commands. Commentator and Audit are optional; a nil
// value disables that collaborator without changing any answer the core
// gives.
type Dispatcher struct {
	retriever   domain.MarketRetriever
	commentator analysis.Commentator
	audit       domain.QueryLogStore
	cfg         Config
	logger      *slog.Logger
}

// New creates a Dispatcher.
func New(retriever domain.MarketRetriever, commentator analysis.Commentator,
	audit domain.QueryLogStore, cfg Config, logger *slog.Logger) *Dispatcher {

	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}
	if cfg.DefaultSort == "" {
		cfg.DefaultSort = domain.SortByVolume
	}
	if cfg.ScopeLimit <= 0 {
		cfg.ScopeLimit = 100
	}
	if cfg.Weights == (reason.Weights{}) {
		cfg.Weights = reason.DefaultWeights()
	}

	return &Dispatcher{
		retriever:   retriever,
		commentator: commentator,
		audit:       audit,
		cfg:         cfg,
		logger:      logger.With(slog.String("component", "dispatcher")),
	}
}

// HandleText is the text-in/text-out function the conversational transports
// call: parse, dispatch, audit. One inbound text, one outbound text, always.
func (d *Dispatcher) HandleText(ctx context.Context, sessionID, text string) string {
	start := time.Now()
	cmd := parser.Parse(text)

	response, outcome := d.dispatch(ctx, cmd)

	d.logger.InfoContext(ctx, "handled query",
		slog.String("session", sessionID),
		slog.String("intent", string(cmd.Intent)),
		slog.String("outcome", outcome),
		slog.Duration("duration", time.Since(start)),
	)

	if d.audit != nil {
		rec := domain.QueryRecord{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Intent:    cmd.Intent,
			Query:     text,
			Outcome:   outcome,
			Duration:  time.Since(start),
			CreatedAt: time.Now().UTC(),
		}
		if err := d.audit.Record(ctx, rec); err != nil {
			d.logger.WarnContext(ctx, "audit record failed",
				slog.String("error", err.Error()),
			)
		}
	}

	return response
}

// Dispatch executes one structured command and returns the formatted
// response. It never returns an error: failures become messages.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd domain.Command) string {
	response, _ := d.dispatch(ctx, cmd)
	return response
}

func (d *Dispatcher) dispatch(ctx context.Context, cmd domain.Command) (response, outcome string) {
	var err error

	switch cmd.Intent {
	case domain.IntentStats:
		response, err = d.handleStats(ctx)
	case domain.IntentFilterMarkets:
		response, err = d.handleFilter(ctx, cmd)
	case domain.IntentAnalyzeMarket:
		response, err = d.handleAnalyze(ctx, cmd)
	case domain.IntentRecommend:
		response, err = d.handleRecommend(ctx, cmd)
	default:
		return helpMessage(cmd.Raw), "unknown"
	}

	if err != nil {
		d.logger.WarnContext(ctx, "command failed",
			slog.String("intent", string(cmd.Intent)),
			slog.String("error", err.Error()),
		)
		return convertError(err)
	}
	return response, "ok"
}

// handleStats fetches the overall and per-category aggregates. The two reads
// are independent, so they go out concurrently.
func (d *Dispatcher) handleStats(ctx context.Context) (string, error) {
	var (
		overall    domain.MarketStats
		categories []domain.CategoryStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		overall, err = d.retriever.MarketStats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = d.retriever.CategoryStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	return formatStats(overall, categories), nil
}

func (d *Dispatcher) handleFilter(ctx context.Context, cmd domain.Command) (string, error) {
	filter := domain.MarketFilter{
		Category:     cmd.Category,
		Active:       cmd.Active,
		MinVolume:    cmd.MinVolume,
		MaxVolume:    cmd.MaxVolume,
		MinLiquidity: cmd.MinLiquidity,
		MaxLiquidity: cmd.MaxLiquidity,
		SortBy:       cmd.SortBy,
		SortOrder:    cmd.SortOrder,
		Limit:        cmd.Limit,
	}
	if filter.SortBy == "" {
		filter.SortBy = d.cfg.DefaultSort
	}
	if filter.Limit <= 0 {
		filter.Limit = d.cfg.DefaultLimit
	} else if filter.Limit > d.cfg.MaxLimit {
		filter.Limit = d.cfg.MaxLimit
	}

	markets, err := d.retriever.QueryMarkets(ctx, filter)
	if err != nil {
		return "", err
	}
	return formatMarkets(markets), nil
}

func (d *Dispatcher) handleAnalyze(ctx context.Context, cmd domain.Command) (string, error) {
	if cmd.Slug == "" {
		return askForSlug("analyze"), nil
	}

	m, err := d.retriever.MarketBySlug(ctx, cmd.Slug)
	if err != nil {
		return "", err
	}

	response := analysis.Summarize(m)

	// Commentary is best-effort color from an external model. Any failure
	// is logged and the field-derived narrative stands on its own.
	if d.commentator != nil {
		if comment, err := d.commentator.Comment(ctx, m); err != nil {
			d.logger.WarnContext(ctx, "commentary failed",
				slog.String("slug", m.Slug),
				slog.String("error", err.Error()),
			)
		} else if comment != "" {
			response += "\n\nAnalyst note: " + comment
		}
	}

	return response, nil
}

// handleRecommend deduces related markets: resolve the source, fetch a
// snapshot scoped to its category, build the relation graph, run one-hop
// scoring. The graph lives only for this call.
func (d *Dispatcher) handleRecommend(ctx context.Context, cmd domain.Command) (string, error) {
	if cmd.Slug == "" {
		return askForSlug("recommend around"), nil
	}

	source, err := d.retriever.MarketBySlug(ctx, cmd.Slug)
	if err != nil {
		return "", err
	}

	// Scope the fetch to the source's category. Graph construction is
	// quadratic, so the snapshot must be bounded before it, not after.
	snapshot, err := d.retriever.QueryMarkets(ctx, domain.MarketFilter{
		Category: source.Category,
		Limit:    d.cfg.ScopeLimit,
	})
	if err != nil {
		return "", err
	}

	if !containsSlug(snapshot, source.Slug) {
		snapshot = append(snapshot, source)
	}

	limit := cmd.Limit
	if limit <= 0 {
		limit = d.cfg.DefaultLimit
	} else if limit > d.cfg.MaxLimit {
		limit = d.cfg.MaxLimit
	}

	recs, err := reason.Recommend(graph.Build(snapshot), source.Slug, limit, d.cfg.Weights)
	if err != nil {
		return "", err
	}

	return formatRecommendations(source, recs), nil
}

func containsSlug(markets []domain.Market, slug string) bool {
	for _, m := range markets {
		if m.Slug == slug {
			return true
		}
	}
	return false
}

// convertError maps a per-request failure to its one user-facing message.
func convertError(err error) (response, outcome string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "I couldn't find that market. Double-check the slug — it looks like " +
			"\"will-something-happen-by-2026\" in the market's URL.", "not_found"
	case errors.Is(err, domain.ErrRetrieval):
		return "Market data is unavailable right now; the data service didn't answer. " +
			"Please try again in a moment.", "retrieval_failure"
	default:
		return "Something went wrong handling that request. Please try again.", "error"
	}
}
