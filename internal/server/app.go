// Package server initializes and runs the sync server: it connects the
// Postgres store, wires the HTTP API around it, and handles graceful
// shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dvoronkov/petvault/internal/client/remote"
	"github.com/dvoronkov/petvault/internal/logging"
	"github.com/dvoronkov/petvault/internal/server/config"
	"github.com/dvoronkov/petvault/internal/server/httpapi"
)

type App struct {
	config *config.Config
	logger logging.Logger
	api    *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	store, err := remote.NewPostgresStore(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	api := httpapi.NewServer(c.EndpointAddr, store, c.AuthToken, logger)
	return &App{config: c, logger: logger, api: api}, nil
}

func (app *App) Run(ctx context.Context) {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	app.logger.Info(ctx, "starting sync server", "addr", app.config.EndpointAddr)

	if err := app.api.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
	}
}
