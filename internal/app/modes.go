package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polyanalyst/internal/server"
	"github.com/alanyoungcy/polyanalyst/internal/server/handler"
	"github.com/alanyoungcy/polyanalyst/internal/server/ws"
	"github.com/alanyoungcy/polyanalyst/internal/transport/telegram"
)

// ServeMode runs the HTTP + WebSocket gateway.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	handle := deps.Dispatcher.HandleText

	srv := server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
		},
		server.Handlers{
			Health: handler.NewHealthHandler(),
			Chat:   handler.NewChatHandler(handle, deps.Sessions, a.logger),
		},
		ws.NewGateway(handle, deps.Sessions, a.logger),
		a.logger,
	)

	return srv.Run(ctx)
}

// TelegramMode runs the Telegram chat transport.
func (a *App) TelegramMode(ctx context.Context, deps *Dependencies) error {
	bot := telegram.New(
		a.cfg.Telegram.Token,
		a.cfg.Telegram.PollTimeoutSeconds,
		deps.Dispatcher.HandleText,
		deps.Sessions,
		a.logger,
	)
	return bot.Run(ctx)
}

// FullMode runs both transports; the first one to fail stops the other.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.ServeMode(gctx, deps) })
	g.Go(func() error { return a.TelegramMode(gctx, deps) })
	return g.Wait()
}
