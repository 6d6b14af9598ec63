package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/snapmatch/client-engine/internal/core/ports"
	"github.com/snapmatch/client-engine/internal/core/service"
	"github.com/snapmatch/client-engine/internal/infrastructure/api"
	"github.com/snapmatch/client-engine/internal/infrastructure/config"
	"github.com/snapmatch/client-engine/internal/infrastructure/store"
	"github.com/snapmatch/client-engine/pkg/logger"
)

const sessionRedisKey = "snapmatch:session"

var rootCmd = &cobra.Command{
	Use:           "snapmatch",
	Short:         "SnapMatch client: sessions, role-gated views, and match-job watching",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// engine bundles the wired client-side components every command needs.
type engine struct {
	cfg       *config.Config
	client    *api.Client
	sessions  *service.SessionStore
	refresher *service.Refresher
	guard     *service.Guard
}

// newEngine loads configuration and wires the session repository (redis
// when configured, the local file otherwise), API client, store, refresher,
// and guard.
func newEngine(ctx context.Context) (*engine, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	repo, err := sessionRepo(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.APIBaseURL, logger.Component("api"))
	sessions := service.NewSessionStore(repo, logger.Component("session"))
	refresher := service.NewRefresher(client, sessions, logger.Component("refresher"))
	guard := service.NewGuard(refresher, logger.Component("guard"))

	return &engine{
		cfg:       cfg,
		client:    client,
		sessions:  sessions,
		refresher: refresher,
		guard:     guard,
	}, nil
}

func sessionRepo(ctx context.Context, cfg *config.Config) (ports.SessionRepository, error) {
	if cfg.Redis.Addr == "" {
		return store.NewFile(cfg.SessionFile), nil
	}
	client, err := store.ConnectRedis(ctx, store.RedisConfig{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return nil, fmt.Errorf("kiosk session store: %w", err)
	}
	return store.NewRedis(client, sessionRedisKey), nil
}

// pollerOptions translates config into poller tuning.
func (e *engine) pollerOptions() service.PollerOptions {
	return service.PollerOptions{
		PollInterval:  e.cfg.Poll.Interval,
		RetryInterval: e.cfg.Poll.RetryInterval,
		MaxRetries:    e.cfg.Poll.MaxRetries,
		Sessions:      e.sessions,
	}
}
