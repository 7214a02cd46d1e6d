package engine

import (
	"context"
	"time"

	"github.com/udisondev/monarena/internal/model"
)

// Owing returns the player the battle is waiting on, or -1 when every
// acting player has decided. The order follows the commit-reveal schedule:
// on single-player turns the switching player; otherwise the committer
// until it commits, then the revealer until it reveals, then the committer
// again until it reveals.
func Owing(b *model.Battle) (player int, since time.Time) {
	since = b.TurnStartedAt
	if b.IsComplete() {
		return -1, since
	}
	if b.ForcedSwitch != model.NoForcedSwitch {
		if b.Pending[b.ForcedSwitch] == nil {
			return b.ForcedSwitch, since
		}
		return -1, since
	}

	c := b.Committer()
	r := 1 - c
	switch {
	case !b.Decisions[c].HasLiveCommit(b.Turn) && b.Pending[c] == nil:
		return c, since
	case b.Pending[r] == nil:
		return r, latest(since, b.Decisions[c].LastActionAt)
	case b.Pending[c] == nil:
		return c, latest(since, b.Decisions[r].LastActionAt)
	}
	return -1, since
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

// ForfeitOnTimeout checks the turn deadline at call time. If the player the
// battle is waiting on has been idle longer than the configured timeout,
// the other player wins and ForfeitOnTimeout returns true.
func (e *Engine) ForfeitOnTimeout(ctx context.Context, id model.BattleID) (bool, error) {
	forfeited := false
	err := e.withBattle(id, func(ent *battleEntry) error {
		b := ent.b
		if b.IsComplete() {
			return ErrBattleOver
		}
		if e.cfg.TurnTimeout <= 0 {
			return nil
		}

		owing, since := Owing(b)
		if owing < 0 {
			return nil
		}
		idle := e.clock().Sub(since)
		if idle < e.cfg.TurnTimeout {
			return nil
		}

		ent.log.Info("player forfeits on timeout", "player", owing, "turn", b.Turn, "idle", idle)
		if err := e.finish(ctx, ent, 1-owing, model.EndTimeout); err != nil {
			return err
		}
		forfeited = true
		return nil
	})
	return forfeited, err
}
