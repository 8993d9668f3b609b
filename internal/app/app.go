package app

import (
	carthandler "cartstore/internal/handlers/cart"
	"cartstore/internal/routes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type App struct {
	log    *slog.Logger
	server *http.Server
}

func New(log *slog.Logger, port int, service carthandler.CartService) *App {
	mux := http.NewServeMux()
	routes.New(carthandler.New(log, service)).Register(mux)

	return &App{
		log: log,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Run() error {
	const op = "app.Run"

	a.log.Info("Starting HTTP server", slog.String("addr", a.server.Addr))

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *App) Stop(ctx context.Context) error {
	const op = "app.Stop"

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
