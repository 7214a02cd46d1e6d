package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/udisondev/monarena/internal/config"
	"github.com/udisondev/monarena/internal/db"
	"github.com/udisondev/monarena/internal/game/content"
	"github.com/udisondev/monarena/internal/game/engine"
	"github.com/udisondev/monarena/internal/model"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadArena(config.Path())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("arena simulator starting",
		"battles", cfg.Simulation.Battles,
		"concurrency", cfg.Simulation.Concurrency,
		"ruleset", cfg.Battle.Ruleset,
		"format", cfg.Battle.Format,
		"seed", cfg.Simulation.Seed)

	roster, err := content.LoadRoster(cfg.RosterPath)
	if err != nil {
		return fmt.Errorf("loading roster: %w", err)
	}
	slog.Info("roster loaded", "mons", len(roster.Mons))

	opts := []engine.Option{engine.WithLogger(slog.Default())}
	if cfg.Persist {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")
		opts = append(opts, engine.WithRecorder(database.Battles()))
	}

	e := engine.New(engineConfig(cfg.Battle), opts...)
	sim := &simulator{
		engine: e,
		roster: roster,
		cfg:    cfg,
		format: parseFormat(cfg.Battle.Format),
	}

	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	slog.Info("simulation complete",
		"battles", stats.Battles,
		"wins0", stats.Wins[0],
		"wins1", stats.Wins[1],
		"draws", stats.Draws,
		"unfinished", stats.Unfinished,
		"turns", stats.Turns)
	return nil
}

func engineConfig(b config.BattleConfig) engine.Config {
	return engine.Config{
		TurnTimeout:     b.TurnTimeout,
		CritNumerator:   b.CritNumerator,
		CritDenominator: b.CritDenominator,
	}
}

func parseFormat(s string) model.Format {
	if s == "doubles" {
		return model.Doubles
	}
	return model.Singles
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
