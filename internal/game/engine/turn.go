package engine

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/udisondev/monarena/internal/crypto"
	"github.com/udisondev/monarena/internal/game/effect"
	"github.com/udisondev/monarena/internal/game/move"
	"github.com/udisondev/monarena/internal/model"
)

// roundEndRoll derives the rng handed to round-start and round-end hooks.
const roundEndRoll = 1 << 16

// execute applies the current turn atomically: the battle is cloned first
// and restored if any pluggable logic fails or the turn can't be recorded.
func (e *Engine) execute(ctx context.Context, ent *battleEntry) error {
	b := ent.b
	if b.IsComplete() {
		return ErrBattleOver
	}
	// The last turn ended the game but its end record failed.
	if winner, over := gameOver(b); over {
		return e.finish(ctx, ent, winner, model.EndKnockout)
	}
	if !ready(b) {
		return ErrDecisionsPending
	}

	backup := b.Clone()
	rec, err := e.runTurn(ent)
	if err != nil {
		ent.b = backup
		ent.log.Warn("turn aborted", "turn", backup.Turn, "error", err)
		return fmt.Errorf("%w: %w", ErrTurnAborted, err)
	}
	if err := e.recorder.RecordTurn(ctx, rec); err != nil {
		ent.b = backup
		return fmt.Errorf("%w: %w", ErrRecord, err)
	}

	if winner, over := gameOver(ent.b); over {
		return e.finish(ctx, ent, winner, model.EndKnockout)
	}
	return nil
}

// runTurn executes the pending decisions and advances the turn counters.
func (e *Engine) runTurn(ent *battleEntry) (model.TurnRecord, error) {
	b := ent.b
	b.Status = model.StatusExecuting

	rng := ent.rules.Randomness.Draw(b)
	h := newHost(b, ent.resolver, ent.log.With("turn", b.Turn))
	defer h.close()

	twoPlayer := b.ForcedSwitch == model.NoForcedSwitch
	lead := b.Turn == 0
	hooks := twoPlayer && !lead

	actions := orderActions(b, h)

	if hooks {
		h.rng = crypto.Derive(rng, roundEndRoll)
		if err := runRoundHooks(h, b, effect.StepRoundStart, actions); err != nil {
			return model.TurnRecord{}, err
		}
	}

	for i, act := range actions {
		h.rng = crypto.Derive(rng, uint64(i))
		if err := runAction(h, b, act); err != nil {
			return model.TurnRecord{}, fmt.Errorf("p%d slot %d: %w", act.Player, act.Slot, err)
		}
	}

	if hooks {
		h.rng = crypto.Derive(rng, roundEndRoll+1)
		if err := runRoundHooks(h, b, effect.StepRoundEnd, actions); err != nil {
			return model.TurnRecord{}, err
		}
	}

	rec := model.TurnRecord{
		BattleID:   b.ID,
		Turn:       b.Turn,
		Round:      b.Round,
		RNG:        rng,
		ExecutedAt: e.clock(),
	}
	for p := range 2 {
		rec.Decisions[p] = b.Pending[p].Clone()
		b.Pending[p] = nil
	}

	b.Turn++
	if twoPlayer {
		b.Round++
	}
	b.ForcedSwitch = nextForcedSwitch(b)
	b.TurnStartedAt = rec.ExecutedAt
	b.Status = model.StatusAwaiting
	rec.Digest = Digest(b)

	ent.log.Debug("turn executed",
		"turn", rec.Turn,
		"round", rec.Round,
		"actions", len(actions),
		"forcedSwitch", b.ForcedSwitch)
	return rec, nil
}

// scheduled is one action with its sort keys.
type scheduled struct {
	effect.Action
	forced   bool
	priority int
	speed    uint32
}

// orderActions sorts the turn's actions: forced switches first, then higher
// priority, then higher effective speed, then lower player, then lower slot.
// The last two keys are unique per action, so the order is total.
func orderActions(b *model.Battle, h *host) []scheduled {
	list := make([]scheduled, 0, 2*b.Slots())
	for p := range 2 {
		d := b.Pending[p]
		if d == nil {
			continue
		}
		for slot, m := range d.Moves {
			mon := b.ActiveMon(p, slot)
			s := scheduled{
				Action:   effect.Action{Player: p, Slot: slot, Mon: mon, Move: m},
				priority: move.DefaultPriority,
			}
			if mon >= 0 {
				s.speed = h.Stat(p, mon, model.StatSpeed)
			}
			switch {
			case m.IsSwitch():
				s.priority = move.SwitchPriority
				s.forced = mon < 0 || b.MonState(p, mon).KnockedOut
			case m.IsNoOp() || mon < 0:
			default:
				if mv, err := move.Lookup(b.Mon(p, mon).Moves[m.MoveIndex]); err == nil {
					s.priority = mv.Priority()
				}
			}
			list = append(list, s)
		}
	}

	slices.SortStableFunc(list, func(x, y scheduled) int {
		if x.forced != y.forced {
			if x.forced {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(y.priority, x.priority); c != 0 {
			return c
		}
		if c := cmp.Compare(y.speed, x.speed); c != 0 {
			return c
		}
		if c := cmp.Compare(x.Player, y.Player); c != 0 {
			return c
		}
		return cmp.Compare(x.Slot, y.Slot)
	})

	return list
}

func runAction(h *host, b *model.Battle, s scheduled) error {
	act := s.Action
	mon := b.ActiveMon(act.Player, act.Slot)
	down := mon < 0 || b.MonState(act.Player, mon).KnockedOut

	if act.Move.IsSwitch() {
		// A voluntary switch is lost if the mon fainted earlier this turn;
		// its replacement comes with the next turn.
		if down && !s.forced {
			return nil
		}
		target := int(act.Move.ExtraData)
		if !b.ValidMon(act.Player, target) || b.IsActive(act.Player, target) || b.MonState(act.Player, target).KnockedOut {
			h.log.Debug("switch target unavailable", "player", act.Player, "slot", act.Slot, "mon", target)
			return nil
		}
		return h.SwitchActiveMon(act.Player, act.Slot, target)
	}

	if down || mon != act.Mon {
		return nil
	}
	state := b.MonState(act.Player, mon)
	if state.SkipTurn {
		state.SkipTurn = false
		h.log.Debug("turn skipped", "player", act.Player, "mon", mon)
		return nil
	}

	var mv move.Move
	if !act.Move.IsNoOp() {
		var err error
		if mv, err = move.Lookup(b.Mon(act.Player, mon).Moves[act.Move.MoveIndex]); err != nil {
			return err
		}
		if cost := mv.StaminaCost(); cost > 0 {
			if int64(h.Stat(act.Player, mon, model.StatStamina)) < int64(cost) {
				h.log.Debug("not enough stamina", "player", act.Player, "mon", mon, "move", mv.Name())
				return nil
			}
			if err := h.UpdateMonState(act.Player, mon, model.StatStamina, -cost); err != nil {
				return err
			}
		}
	}

	args := effect.Args{Action: &act}
	if err := runMonAndField(h, act.Player, mon, effect.StepBeforeMove, args); err != nil {
		return err
	}

	if mv != nil && !b.MonState(act.Player, mon).KnockedOut {
		if err := mv.Execute(h, act, h.rng); err != nil {
			return fmt.Errorf("%s: %w", mv.Name(), err)
		}
	}

	return runMonAndField(h, act.Player, mon, effect.StepAfterMove, args)
}

func runMonAndField(h *host, player, mon int, step effect.Step, args effect.Args) error {
	if err := h.pipe.Run(h, model.MonTarget(player, mon), step, h.rng, args); err != nil {
		return err
	}
	return h.pipe.Run(h, model.FieldTarget(player), step, h.rng, args)
}

// runRoundHooks dispatches a round step in its fixed order: player 0's
// field, player 1's field, then every healthy active mon in this turn's
// action order, then any active mon that did not act.
func runRoundHooks(h *host, b *model.Battle, step effect.Step, actions []scheduled) error {
	for p := range 2 {
		if err := h.pipe.Run(h, model.FieldTarget(p), step, h.rng, effect.Args{}); err != nil {
			return err
		}
	}

	seen := make(map[model.Target]bool, 2*b.Slots())
	visit := func(player, slot int) error {
		mon := b.ActiveMon(player, slot)
		if mon < 0 || b.MonState(player, mon).KnockedOut {
			return nil
		}
		t := model.MonTarget(player, mon)
		if seen[t] {
			return nil
		}
		seen[t] = true
		return h.pipe.Run(h, t, step, h.rng, effect.Args{})
	}

	for _, act := range actions {
		if err := visit(act.Player, act.Slot); err != nil {
			return err
		}
	}
	for p := range 2 {
		for slot := range b.Slots() {
			if err := visit(p, slot); err != nil {
				return err
			}
		}
	}
	return nil
}

// gameOver reports the winner once a side has no healthy mon left.
// A simultaneous wipe is a draw.
func gameOver(b *model.Battle) (int, bool) {
	left0, left1 := b.Remaining(0), b.Remaining(1)
	switch {
	case left0 == 0 && left1 == 0:
		return model.Draw, true
	case left0 == 0:
		return 1, true
	case left1 == 0:
		return 0, true
	default:
		return model.NoWinner, false
	}
}

// nextForcedSwitch decides who acts next turn. In singles a lone player
// with a fainted active mon gets a single-player switch turn; if both need
// to switch the next turn is a normal one where only switches are legal for
// them. Doubles replacements always ride along with the next normal turn.
func nextForcedSwitch(b *model.Battle) int {
	if b.Format != model.Singles {
		return model.NoForcedSwitch
	}
	var needs [2]bool
	for p := range 2 {
		mon := b.ActiveMon(p, 0)
		needs[p] = mon >= 0 && b.MonState(p, mon).KnockedOut && hasBench(b, p, -1)
	}
	switch {
	case needs[0] && !needs[1]:
		return 0
	case needs[1] && !needs[0]:
		return 1
	default:
		return model.NoForcedSwitch
	}
}
