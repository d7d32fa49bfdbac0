package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/tasktalk/tasktalk/internal/agent"
	"github.com/tasktalk/tasktalk/internal/config"
	"github.com/tasktalk/tasktalk/internal/gateway"
	"github.com/tasktalk/tasktalk/internal/history"
	"github.com/tasktalk/tasktalk/internal/provider"
	"github.com/tasktalk/tasktalk/internal/task"
	"github.com/tasktalk/tasktalk/internal/tools"
)

// runtime bundles the wired components behind a CLI command.
type runtime struct {
	cfg     *config.Config
	tasks   *task.Store
	history *history.SQLiteStore
	loop    *agent.Loop
	logger  *slog.Logger
}

// newRuntime loads config and wires stores, provider, gateway, and loop.
// Callers must Close it.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg)

	if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	tasksStore, err := task.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open task store: %w", err)
	}

	histStore, err := history.Open(cfg.DatabasePath())
	if err != nil {
		tasksStore.Close()
		return nil, fmt.Errorf("open history store: %w", err)
	}

	prov, err := provider.Resolve(cfg)
	if err != nil {
		tasksStore.Close()
		histStore.Close()
		return nil, err
	}

	_, model := provider.ParseModelString(cfg.Model.Name)
	gw := gateway.New(prov, model, cfg.Model.MaxTokens, cfg.Model.Temperature, logger)

	registry := tools.NewRegistry()
	tools.RegisterTaskTools(registry, tasksStore)

	loop, err := agent.NewLoop(ctx, gw, registry, histStore, cfg.Model.HistoryWindow, logger)
	if err != nil {
		tasksStore.Close()
		histStore.Close()
		return nil, err
	}

	return &runtime{
		cfg:     cfg,
		tasks:   tasksStore,
		history: histStore,
		loop:    loop,
		logger:  logger,
	}, nil
}

// newStores loads config and opens only the stores, for commands that do
// not talk to the model.
func newStores() (*config.Config, *task.Store, *history.SQLiteStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	tasksStore, err := task.Open(cfg.DatabasePath())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open task store: %w", err)
	}
	histStore, err := history.Open(cfg.DatabasePath())
	if err != nil {
		tasksStore.Close()
		return nil, nil, nil, fmt.Errorf("open history store: %w", err)
	}
	return cfg, tasksStore, histStore, nil
}

func (rt *runtime) Close() {
	rt.tasks.Close()
	rt.history.Close()
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("TASKTALK_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
