package commit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/monarena/internal/game/commit"
	"github.com/udisondev/monarena/internal/game/content"
	"github.com/udisondev/monarena/internal/game/effect"
	"github.com/udisondev/monarena/internal/game/engine"
	"github.com/udisondev/monarena/internal/model"
	"github.com/udisondev/monarena/internal/testutil"
)

var (
	alice = testutil.Fixtures.Players[0]
	bob   = testutil.Fixtures.Players[1]
	salts = testutil.Fixtures.Salts
)

func newManager(t *testing.T, format model.Format, firstCommitter int) (*commit.Manager, *engine.Engine, model.BattleID) {
	t.Helper()
	e := engine.New(engine.DefaultConfig())
	rec := testutil.StartRecord(t.Name(), format, testutil.Teams(3))
	rec.FirstCommitter = firstCommitter
	require.NoError(t, e.Start(context.Background(), rec))
	return commit.NewManager(e, nil), e, rec.ID
}

// playSingles runs one full commit-reveal round: the committer commits,
// the other player reveals, then the committer opens its commitment.
func playSingles(t *testing.T, m *commit.Manager, id model.BattleID, committer string, moves map[string]model.SlotMove) {
	t.Helper()
	ctx := context.Background()
	revealer := alice
	if committer == alice {
		revealer = bob
	}
	cs, rs := saltOf(committer), saltOf(revealer)

	cm := moves[committer]
	require.NoError(t, m.Commit(ctx, id, committer, commit.Hash(cm.MoveIndex, cm.ExtraData, cs)))
	rm := moves[revealer]
	require.NoError(t, m.Reveal(ctx, id, revealer, rm.MoveIndex, rm.ExtraData, rs, true))
	require.NoError(t, m.Reveal(ctx, id, committer, cm.MoveIndex, cm.ExtraData, cs, true))
}

func saltOf(player string) [32]byte {
	if player == alice {
		return salts[0]
	}
	return salts[1]
}

func snapshot(t *testing.T, e *engine.Engine, id model.BattleID) *model.Battle {
	t.Helper()
	b, err := e.Snapshot(id)
	require.NoError(t, err)
	return b
}

func TestHash(t *testing.T) {
	salt := [32]byte{7}
	h := commit.Hash(3, 1, salt)
	assert.Equal(t, h, commit.Hash(3, 1, salt))
	assert.NotEqual(t, h, commit.Hash(4, 1, salt))
	assert.NotEqual(t, h, commit.Hash(3, 2, salt))

	flipped := salt
	flipped[31] ^= 0x80
	assert.NotEqual(t, h, commit.Hash(3, 1, flipped))

	d := commit.HashDoubles([2]model.SlotMove{{MoveIndex: 1}, {MoveIndex: 2}}, salt)
	assert.NotEqual(t, d, commit.HashDoubles([2]model.SlotMove{{MoveIndex: 2}, {MoveIndex: 1}}, salt),
		"slot order is part of the commitment")
}

func TestCommitterAlternates(t *testing.T) {
	for _, first := range []int{0, 1} {
		t.Run(testutil.Fixtures.Players[first], func(t *testing.T) {
			m, e, id := newManager(t, model.Singles, first)
			ctx := context.Background()

			for round := range 4 {
				b := snapshot(t, e, id)
				want := first
				if round%2 == 1 {
					want = 1 - first
				}
				require.Equal(t, want, b.Committer(), "round %d", round)

				other := testutil.Fixtures.Players[1-want]
				err := m.Commit(ctx, id, other, commit.Hash(model.NoOpMoveIndex, 0, salts[1-want]))
				require.ErrorIs(t, err, commit.ErrNotCommitter)

				moves := map[string]model.SlotMove{alice: testutil.NoOp(), bob: testutil.NoOp()}
				if round == 0 {
					moves = map[string]model.SlotMove{alice: testutil.Switch(0), bob: testutil.Switch(0)}
				}
				playSingles(t, m, id, testutil.Fixtures.Players[want], moves)
			}
			assert.Equal(t, uint64(4), snapshot(t, e, id).Round)
		})
	}
}

func TestReveal_WrongPreimage(t *testing.T) {
	m, e, id := newManager(t, model.Singles, 0)
	ctx := context.Background()

	require.NoError(t, m.Commit(ctx, id, alice, commit.Hash(model.SwitchMoveIndex, 0, salts[0])))
	require.NoError(t, m.Reveal(ctx, id, bob, model.SwitchMoveIndex, 0, salts[1], true))

	wrongSalt := salts[0]
	wrongSalt[0] ^= 1
	tests := []struct {
		name  string
		move  uint8
		extra uint64
		salt  [32]byte
	}{
		{"move", model.NoOpMoveIndex, 0, salts[0]},
		{"extra", model.SwitchMoveIndex, 1, salts[0]},
		{"salt", model.SwitchMoveIndex, 0, wrongSalt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Reveal(ctx, id, alice, tt.move, tt.extra, tt.salt, true)
			require.ErrorIs(t, err, commit.ErrWrongPreimage)
			assert.Equal(t, "wrong_preimage", commit.Code(err))
		})
	}

	b := snapshot(t, e, id)
	assert.Nil(t, b.Pending[0], "rejected reveals leave nothing behind")
	assert.Equal(t, uint64(0), b.Turn)

	require.NoError(t, m.Reveal(ctx, id, alice, model.SwitchMoveIndex, 0, salts[0], true))
	assert.Equal(t, uint64(1), snapshot(t, e, id).Turn)
}

func TestSchedule(t *testing.T) {
	m, e, id := newManager(t, model.Singles, 0)
	ctx := context.Background()
	lead := commit.Hash(model.SwitchMoveIndex, 0, salts[0])

	err := m.Reveal(ctx, id, bob, model.SwitchMoveIndex, 0, salts[1], true)
	require.ErrorIs(t, err, commit.ErrRevealBeforeOtherCommit)

	err = m.Reveal(ctx, id, alice, model.SwitchMoveIndex, 0, salts[0], true)
	require.ErrorIs(t, err, commit.ErrNotCommitted)

	require.ErrorIs(t, m.Commit(ctx, id, alice, [32]byte{}), commit.ErrZeroHash)
	require.ErrorIs(t, m.Commit(ctx, id, "0xeve", lead), commit.ErrNotParticipant)
	require.NoError(t, m.Commit(ctx, id, alice, lead))
	require.ErrorIs(t, m.Commit(ctx, id, alice, lead), commit.ErrAlreadyCommitted)

	err = m.Reveal(ctx, id, alice, model.SwitchMoveIndex, 0, salts[0], true)
	require.ErrorIs(t, err, commit.ErrRevealOutOfOrder)

	require.NoError(t, m.Reveal(ctx, id, bob, model.SwitchMoveIndex, 0, salts[1], true))
	err = m.Reveal(ctx, id, bob, model.SwitchMoveIndex, 1, salts[1], true)
	require.ErrorIs(t, err, commit.ErrAlreadyRevealed)

	err = m.RevealDoubles(ctx, id, alice, [2]model.SlotMove{testutil.Switch(0), testutil.Switch(1)}, salts[0], true)
	require.ErrorIs(t, err, commit.ErrWrongFormat)

	require.NoError(t, m.Reveal(ctx, id, alice, model.SwitchMoveIndex, 0, salts[0], true))
	b := snapshot(t, e, id)
	assert.Equal(t, uint64(1), b.Turn)
	assert.Equal(t, uint64(1), b.Decisions[0].RevealCount)
	assert.Equal(t, uint64(0), b.Decisions[0].LastRevealTurn)
}

func TestReveal_IllegalMove(t *testing.T) {
	m, _, id := newManager(t, model.Singles, 0)
	ctx := context.Background()

	// Tackle is illegal on the lead turn: the slot is empty.
	require.NoError(t, m.Commit(ctx, id, alice, commit.Hash(0, 0, salts[0])))
	err := m.Reveal(ctx, id, bob, 0, 0, salts[1], true)
	require.ErrorIs(t, err, commit.ErrInvalidMove)
	assert.Equal(t, "invalid_move", commit.Code(err))
}

func TestRevealWithoutAutoExecute(t *testing.T) {
	m, e, id := newManager(t, model.Singles, 0)
	ctx := context.Background()

	require.NoError(t, m.Commit(ctx, id, alice, commit.Hash(model.SwitchMoveIndex, 0, salts[0])))
	require.NoError(t, m.Reveal(ctx, id, bob, model.SwitchMoveIndex, 0, salts[1], false))
	require.NoError(t, m.Reveal(ctx, id, alice, model.SwitchMoveIndex, 0, salts[0], false))

	b := snapshot(t, e, id)
	assert.Equal(t, uint64(0), b.Turn)
	assert.NotNil(t, b.Pending[0])
	assert.NotNil(t, b.Pending[1])

	require.NoError(t, e.Execute(ctx, id))
	assert.Equal(t, uint64(1), snapshot(t, e, id).Turn)
}

func TestForcedSwitchNeedsNoCommit(t *testing.T) {
	m, e, id := newManager(t, model.Singles, 0)
	ctx := context.Background()
	playSingles(t, m, id, alice, map[string]model.SlotMove{alice: testutil.Switch(0), bob: testutil.Switch(0)})

	// Leave bob's lead at 1 HP with Frostbite, so the round end knocks it
	// out and the next turn is his single-player switch.
	require.NoError(t, e.Apply(ctx, id, func(h effect.Host) error {
		if err := h.DealDamage(1, 0, int32(h.Mon(1, 0).Stats.HP)-1); err != nil {
			return err
		}
		return h.AddEffect(model.MonTarget(1, 0), content.Frostbite, nil)
	}))
	playSingles(t, m, id, bob, map[string]model.SlotMove{alice: testutil.NoOp(), bob: testutil.NoOp()})

	b := snapshot(t, e, id)
	require.Equal(t, 1, b.ForcedSwitch)
	round := b.Round

	err := m.Commit(ctx, id, bob, commit.Hash(model.SwitchMoveIndex, 1, salts[1]))
	require.ErrorIs(t, err, commit.ErrNoCommitNeeded)
	err = m.Reveal(ctx, id, alice, model.NoOpMoveIndex, 0, salts[0], true)
	require.ErrorIs(t, err, commit.ErrNotYourTurn)

	require.NoError(t, m.Reveal(ctx, id, bob, model.SwitchMoveIndex, 1, salts[1], true))
	b = snapshot(t, e, id)
	assert.Equal(t, round, b.Round)
	assert.Equal(t, model.NoForcedSwitch, b.ForcedSwitch)
	assert.Equal(t, 1, b.ActiveMon(1, 0))
}

func TestRevealDoubles(t *testing.T) {
	m, e, id := newManager(t, model.Doubles, 1)
	ctx := context.Background()
	leads := [2]model.SlotMove{testutil.Switch(0), testutil.Switch(1)}

	err := m.RevealDoubles(ctx, id, alice, [2]model.SlotMove{testutil.Switch(2), testutil.Switch(2)}, salts[0], true)
	require.ErrorIs(t, err, commit.ErrSameSwitchTarget)

	require.NoError(t, m.Commit(ctx, id, bob, commit.HashDoubles(leads, salts[1])))
	require.NoError(t, m.RevealDoubles(ctx, id, alice, leads, salts[0], true))

	// Swapping the slots changes the preimage.
	swapped := [2]model.SlotMove{leads[1], leads[0]}
	err = m.RevealDoubles(ctx, id, bob, swapped, salts[1], true)
	require.ErrorIs(t, err, commit.ErrWrongPreimage)

	require.NoError(t, m.RevealDoubles(ctx, id, bob, leads, salts[1], true))
	b := snapshot(t, e, id)
	assert.Equal(t, []int{0, 1}, b.Active[0])
	assert.Equal(t, []int{0, 1}, b.Active[1])
	assert.Equal(t, 0, b.Committer(), "second round flips the committer")
}

func TestBattleOver(t *testing.T) {
	m, e, id := newManager(t, model.Singles, 0)
	ctx := context.Background()
	require.NoError(t, e.Terminate(ctx, id, ""))

	err := m.Commit(ctx, id, alice, commit.Hash(model.SwitchMoveIndex, 0, salts[0]))
	require.ErrorIs(t, err, commit.ErrBattleOver)
	err = m.Reveal(ctx, id, bob, model.SwitchMoveIndex, 0, salts[1], true)
	require.ErrorIs(t, err, commit.ErrBattleOver)
	assert.Equal(t, "battle_over", commit.Code(err))
}

// flakyRecorder fails turn records while armed.
type flakyRecorder struct {
	fail bool
}

func (r *flakyRecorder) RecordStart(context.Context, model.StartRecord) error { return nil }
func (r *flakyRecorder) RecordEnd(context.Context, model.EndRecord) error     { return nil }

func (r *flakyRecorder) RecordTurn(context.Context, model.TurnRecord) error {
	if r.fail {
		return errors.New("journal unavailable")
	}
	return nil
}

func TestReveal_ExecuteFailureKeepsReveal(t *testing.T) {
	rec := &flakyRecorder{fail: true}
	e := engine.New(engine.DefaultConfig(), engine.WithRecorder(rec))
	start := testutil.StartRecord(t.Name(), model.Singles, testutil.Teams(3))
	require.NoError(t, e.Start(context.Background(), start))
	m, id := commit.NewManager(e, nil), start.ID
	ctx := context.Background()

	require.NoError(t, m.Commit(ctx, id, alice, commit.Hash(model.SwitchMoveIndex, 0, salts[0])))
	require.NoError(t, m.Reveal(ctx, id, bob, model.SwitchMoveIndex, 0, salts[1], true))
	err := m.Reveal(ctx, id, alice, model.SwitchMoveIndex, 0, salts[0], true)
	require.ErrorIs(t, err, commit.ErrExecuteFailed)
	assert.ErrorIs(t, err, engine.ErrRecord)
	assert.Equal(t, "execute_failed", commit.Code(err))

	b := snapshot(t, e, id)
	assert.Equal(t, uint64(0), b.Turn)
	assert.NotNil(t, b.Pending[0], "reveal stands")
	assert.ErrorIs(t, m.Reveal(ctx, id, alice, model.SwitchMoveIndex, 0, salts[0], true), commit.ErrAlreadyRevealed)

	rec.fail = false
	require.NoError(t, e.Execute(ctx, id))
	assert.Equal(t, uint64(1), snapshot(t, e, id).Turn)
}

func TestCode(t *testing.T) {
	assert.Equal(t, "already_revealed", commit.Code(commit.ErrAlreadyRevealed))
	assert.Equal(t, "battle_not_found", commit.Code(engine.ErrBattleNotFound))
	assert.Equal(t, "internal", commit.Code(errors.New("disk on fire")))
}
