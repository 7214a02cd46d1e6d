package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/udisondev/monarena/internal/config"
	"github.com/udisondev/monarena/internal/db"
	_ "github.com/udisondev/monarena/internal/game/content"
	"github.com/udisondev/monarena/internal/game/engine"
	"github.com/udisondev/monarena/internal/game/replay"
	"github.com/udisondev/monarena/internal/model"
)

var errDiverged = errors.New("replays diverged from journal")

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

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// run verifies the battles named on the command line (hex ids), or the most
// recent finished battles when none are given.
func run(ctx context.Context, args []string) error {
	cfg, err := config.LoadArena(config.Path())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	repo := database.Battles()
	ids, err := battleIDs(ctx, repo, args, cfg.Replay.Limit)
	if err != nil {
		return err
	}
	slog.Info("verifying battles", "count", len(ids), "workers", cfg.Replay.Workers)

	engineCfg := engine.DefaultConfig()
	engineCfg.CritNumerator = cfg.Battle.CritNumerator
	engineCfg.CritDenominator = cfg.Battle.CritDenominator
	v := replay.NewVerifier(engineCfg, cfg.Replay.Workers, slog.Default())

	results, err := v.VerifyAll(ctx, repo, ids)
	if err != nil {
		return fmt.Errorf("verifying: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			slog.Error("battle diverged", "battle", r.ID.String(), "turns", r.Turns, "err", r.Err)
			continue
		}
		slog.Info("battle verified", "battle", r.ID.String(), "turns", r.Turns)
	}
	slog.Info("verification complete", "battles", len(results), "failed", failed)

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errDiverged, failed, len(results))
	}
	return nil
}

func battleIDs(ctx context.Context, repo *db.BattleRepository, args []string, limit int) ([]model.BattleID, error) {
	if len(args) == 0 {
		ids, err := repo.ListFinished(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("listing finished battles: %w", err)
		}
		return ids, nil
	}

	ids := make([]model.BattleID, 0, len(args))
	for _, a := range args {
		id, err := model.ParseBattleID(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
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
