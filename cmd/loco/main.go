// ABOUTME: Entry point for the loco CLI
// ABOUTME: Wires config, session, gateway, poller, and notifications together

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/loco-dev/loco-client/internal/config"
	"github.com/loco-dev/loco-client/internal/gateway"
	"github.com/loco-dev/loco-client/internal/notify"
	"github.com/loco-dev/loco-client/internal/poller"
	"github.com/loco-dev/loco-client/internal/session"
)

// Version is set by goreleaser at build time.
var version = "dev"

// app bundles the wired client components for the commands.
type app struct {
	cfg     *config.Config
	store   *session.Store
	client  *gateway.Client
	polls   *poller.Manager
	channel *notify.Channel
	logger  *slog.Logger
}

func newApp() (*app, error) {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Logging)
	store := session.NewStore(logger)

	client, err := gateway.New(gateway.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Session: store,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	polls := poller.NewManager(client, cfg.Polling.Interval, cfg.Polling.MaxAttempts, nil, logger)

	channel := notify.NewChannel(notify.Options{
		BaseURL:  cfg.API.BaseURL,
		HTTP:     client.HTTPClient(),
		Session:  store,
		Debounce: cfg.Notifications.Debounce,
		Logger:   logger,
	})

	return &app{
		cfg:     cfg,
		store:   store,
		client:  client,
		polls:   polls,
		channel: channel,
		logger:  logger,
	}, nil
}

// newLogger builds the slog handler from the logging config.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
