package commit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/monarena/internal/game/engine"
	"github.com/udisondev/monarena/internal/model"
)

// Manager runs the commit-reveal protocol on top of an engine. Every call
// holds the battle's lock for its whole duration, and every rejection
// happens before anything is written.
type Manager struct {
	engine *engine.Engine
	log    *slog.Logger
}

// NewManager creates a manager for battles held by e.
func NewManager(e *engine.Engine, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{engine: e, log: log}
}

// Commit stores hash as the caller's commitment for the current turn.
func (m *Manager) Commit(ctx context.Context, id model.BattleID, caller string, hash [32]byte) error {
	return m.engine.Do(ctx, id, func(tx *engine.Tx) error {
		b := tx.Battle()
		if b.IsComplete() {
			return ErrBattleOver
		}
		p, ok := b.PlayerIndex(caller)
		if !ok {
			return ErrNotParticipant
		}
		if b.ForcedSwitch != model.NoForcedSwitch {
			return ErrNoCommitNeeded
		}
		if hash == ([32]byte{}) {
			return ErrZeroHash
		}
		if p != b.Committer() {
			return ErrNotCommitter
		}
		if b.Decisions[p].HasLiveCommit(b.Turn) {
			return ErrAlreadyCommitted
		}

		d := &b.Decisions[p]
		d.MoveHash = hash
		d.CommitTurn = b.Turn
		d.HasCommit = true
		d.LastActionAt = tx.Now()
		m.log.Debug("commitment stored", "battle", id.String(), "turn", b.Turn, "player", p)
		return nil
	})
}

// Reveal submits a singles move. The committer must pass the preimage of
// its commitment; the other player's move is taken as is.
//
// With autoExecute the turn runs as soon as every acting player has
// revealed. If that execution fails the reveal stands and the error wraps
// ErrExecuteFailed; the turn is retried with Engine.Execute.
func (m *Manager) Reveal(ctx context.Context, id model.BattleID, caller string, moveIndex uint8, extraData uint64, salt [32]byte, autoExecute bool) error {
	d := model.Decision{
		Moves: []model.SlotMove{{MoveIndex: moveIndex, ExtraData: extraData}},
		Salt:  salt,
	}
	return m.reveal(ctx, id, caller, d, autoExecute)
}

// RevealDoubles submits both slot moves of a doubles turn.
func (m *Manager) RevealDoubles(ctx context.Context, id model.BattleID, caller string, moves [2]model.SlotMove, salt [32]byte, autoExecute bool) error {
	if moves[0].IsSwitch() && moves[1].IsSwitch() && moves[0].ExtraData == moves[1].ExtraData {
		return ErrSameSwitchTarget
	}
	d := model.Decision{Moves: moves[:], Salt: salt}
	return m.reveal(ctx, id, caller, d, autoExecute)
}

func (m *Manager) reveal(ctx context.Context, id model.BattleID, caller string, d model.Decision, autoExecute bool) error {
	return m.engine.Do(ctx, id, func(tx *engine.Tx) error {
		b := tx.Battle()
		if b.IsComplete() {
			return ErrBattleOver
		}
		p, ok := b.PlayerIndex(caller)
		if !ok {
			return ErrNotParticipant
		}
		if len(d.Moves) != b.Slots() {
			return ErrWrongFormat
		}
		if b.Decisions[p].RevealedFor(b.Turn) || b.Pending[p] != nil {
			return ErrAlreadyRevealed
		}
		if err := checkSchedule(b, p, d); err != nil {
			return err
		}

		if err := tx.Submit(p, d); err != nil {
			return err
		}
		dec := &b.Decisions[p]
		dec.RevealCount++
		dec.LastRevealTurn = b.Turn
		m.log.Debug("move revealed", "battle", id.String(), "turn", b.Turn, "player", p)

		if autoExecute && tx.Ready() {
			if err := tx.Execute(); err != nil {
				return fmt.Errorf("%w: %w", ErrExecuteFailed, err)
			}
		}
		return nil
	})
}

// checkSchedule enforces who may reveal when.
func checkSchedule(b *model.Battle, p int, d model.Decision) error {
	if b.ForcedSwitch != model.NoForcedSwitch {
		if p != b.ForcedSwitch {
			return ErrNotYourTurn
		}
		return nil
	}

	c := b.Committer()
	if p != c {
		if !b.Decisions[c].HasLiveCommit(b.Turn) {
			return ErrRevealBeforeOtherCommit
		}
		return nil
	}

	if !b.Decisions[p].HasLiveCommit(b.Turn) {
		return ErrNotCommitted
	}
	if b.Pending[1-p] == nil {
		return ErrRevealOutOfOrder
	}
	if hashDecision(d) != b.Decisions[p].MoveHash {
		return ErrWrongPreimage
	}
	return nil
}
