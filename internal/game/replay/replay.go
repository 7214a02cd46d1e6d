// Package replay re-executes journaled battles and checks that every turn
// reproduces the recorded randomness and state digest.
package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/monarena/internal/game/engine"
	"github.com/udisondev/monarena/internal/model"
)

var (
	ErrTurnGap         = errors.New("journal turn numbers are not contiguous")
	ErrRNGMismatch     = errors.New("turn randomness differs from journal")
	ErrDigestMismatch  = errors.New("state digest differs from journal")
	ErrRoundMismatch   = errors.New("round counter differs from journal")
	ErrOutcomeMismatch = errors.New("battle outcome differs from journal")
)

// Loader reads a battle's journal.
type Loader interface {
	Load(ctx context.Context, id model.BattleID) (*model.History, error)
}

// Result is the outcome of verifying one battle.
type Result struct {
	ID    model.BattleID
	Turns int
	Err   error
}

// Verifier replays battles on private engines.
type Verifier struct {
	cfg     engine.Config
	workers int
	log     *slog.Logger
}

// NewVerifier creates a verifier that runs up to workers replays at once.
// cfg must match the configuration the battles were played with.
func NewVerifier(cfg engine.Config, workers int, log *slog.Logger) *Verifier {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Verifier{cfg: cfg, workers: workers, log: log}
}

// capture collects the records a replaying engine emits.
type capture struct {
	turns []model.TurnRecord
	end   *model.EndRecord
}

func (c *capture) RecordStart(context.Context, model.StartRecord) error { return nil }

func (c *capture) RecordTurn(_ context.Context, rec model.TurnRecord) error {
	c.turns = append(c.turns, rec)
	return nil
}

func (c *capture) RecordEnd(_ context.Context, rec model.EndRecord) error {
	c.end = &rec
	return nil
}

// Verify replays h and returns the first divergence.
func (v *Verifier) Verify(ctx context.Context, h *model.History) error {
	now := h.Start.StartedAt
	rec := &capture{}
	e := engine.New(v.cfg,
		engine.WithRecorder(rec),
		engine.WithClock(func() time.Time { return now }),
		engine.WithLogger(v.log),
	)

	id := h.Start.ID
	if err := e.Start(ctx, h.Start); err != nil {
		return fmt.Errorf("starting replay: %w", err)
	}

	for i, want := range h.Turns {
		if err := ctx.Err(); err != nil {
			return err
		}
		if want.Turn != uint64(i) {
			return fmt.Errorf("%w: entry %d is turn %d", ErrTurnGap, i, want.Turn)
		}
		now = want.ExecutedAt

		for p, d := range want.Decisions {
			if d == nil {
				continue
			}
			if err := e.SubmitDecision(ctx, id, p, *d); err != nil {
				return fmt.Errorf("turn %d player %d: %w", want.Turn, p, err)
			}
		}
		if err := e.Execute(ctx, id); err != nil {
			return fmt.Errorf("turn %d: %w", want.Turn, err)
		}

		got := rec.turns[len(rec.turns)-1]
		switch {
		case got.RNG != want.RNG:
			return fmt.Errorf("%w: turn %d", ErrRNGMismatch, want.Turn)
		case got.Round != want.Round:
			return fmt.Errorf("%w: turn %d has round %d, journal %d", ErrRoundMismatch, want.Turn, got.Round, want.Round)
		case got.Digest != want.Digest:
			return fmt.Errorf("%w: turn %d", ErrDigestMismatch, want.Turn)
		}
	}

	return checkOutcome(h, rec.end)
}

// checkOutcome compares how the replay ended with the journal. Forfeits and
// terminations come from outside the turn loop, so for them the replay must
// merely still be running.
func checkOutcome(h *model.History, got *model.EndRecord) error {
	want := h.End
	switch {
	case want == nil && got == nil:
		return nil
	case want == nil:
		return fmt.Errorf("%w: replay ended (%s), journal did not", ErrOutcomeMismatch, got.Reason)
	case want.Reason == model.EndKnockout:
		if got == nil {
			return fmt.Errorf("%w: journal ended by knockout, replay did not", ErrOutcomeMismatch)
		}
		if got.Winner != want.Winner || got.Turn != want.Turn {
			return fmt.Errorf("%w: winner %d at turn %d, journal %d at turn %d",
				ErrOutcomeMismatch, got.Winner, got.Turn, want.Winner, want.Turn)
		}
		return nil
	case got != nil:
		return fmt.Errorf("%w: replay ended by %s, journal by %s", ErrOutcomeMismatch, got.Reason, want.Reason)
	default:
		return nil
	}
}

// VerifyAll loads and verifies battles concurrently. A failure of one
// battle is reported in its Result; only cancellation stops the run.
func (v *Verifier) VerifyAll(ctx context.Context, load Loader, ids []model.BattleID) ([]Result, error) {
	results := make([]Result, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)
	for i, id := range ids {
		g.Go(func() error {
			res := Result{ID: id}
			h, err := load.Load(gctx, id)
			if err == nil {
				res.Turns = len(h.Turns)
				err = v.Verify(gctx, h)
			}
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			res.Err = err
			results[i] = res

			if err != nil {
				v.log.Warn("replay diverged", "battle", id.String(), "error", err)
			} else {
				v.log.Debug("replay verified", "battle", id.String(), "turns", res.Turns)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
