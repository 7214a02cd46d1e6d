package statboost_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/monarena/internal/game/content"
	"github.com/udisondev/monarena/internal/game/effect"
	"github.com/udisondev/monarena/internal/game/engine"
	"github.com/udisondev/monarena/internal/game/statboost"
	"github.com/udisondev/monarena/internal/model"
	"github.com/udisondev/monarena/internal/testutil"
)

var baseStats = model.MonStats{
	HP: 100, Stamina: 5, Speed: 10, Attack: 15, Defense: 10, SpecialAttack: 20, SpecialDefense: 10,
}

// newBattle starts an exhibition battle of two plain mons per side, leads
// already in.
func newBattle(t *testing.T) (*engine.Engine, model.BattleID) {
	t.Helper()

	team := model.Team{Mons: []model.Mon{
		testutil.Mon("Alpha", baseStats, content.Tackle),
		testutil.Mon("Beta", baseStats, content.Tackle),
	}}
	rec := testutil.StartRecord(t.Name(), model.Singles, [2]model.Team{team, team})
	rec.Ruleset = content.Exhibition

	e := engine.New(engine.DefaultConfig())
	return e, testutil.StartBattle(t, e, rec)
}

func apply(t *testing.T, e *engine.Engine, id model.BattleID, fn func(h effect.Host) error) {
	t.Helper()
	require.NoError(t, e.Apply(context.Background(), id, fn))
}

func attack(pct uint32, op statboost.Op) statboost.Boost {
	return statboost.Boost{Stat: model.StatAttack, Percent: pct, Op: op}
}

func TestAdd_OrderAcrossSourcesMatters(t *testing.T) {
	tests := []struct {
		name  string
		first string
		want  int32
	}{
		// 15 * 110/100 = 16, then 16 * 50/100 = 8
		{"boost first", "boost", -7},
		// 15 * 50/100 = 7, then 7 * 110/100 = 7
		{"cut first", "cut", -8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, id := newBattle(t)
			apply(t, e, id, func(h effect.Host) error {
				add := map[string]func() error{
					"boost": func() error { return statboost.Add(h, 0, 0, "boost", 0, attack(10, statboost.Multiply)) },
					"cut":   func() error { return statboost.Add(h, 0, 0, "cut", 0, attack(50, statboost.Divide)) },
				}
				second := "cut"
				if tt.first == "cut" {
					second = "boost"
				}
				if err := add[tt.first](); err != nil {
					return err
				}
				return add[second]()
			})
			testutil.AssertDelta(t, e, id, 0, 0, model.StatAttack, tt.want)
		})
	}
}

func TestAdd_SameSourceIsAssociative(t *testing.T) {
	boosts := []statboost.Boost{
		attack(10, statboost.Multiply),
		{Stat: model.StatSpeed, Percent: 50, Op: statboost.Multiply},
		attack(20, statboost.Divide),
	}

	e1, id1 := newBattle(t)
	apply(t, e1, id1, func(h effect.Host) error {
		return statboost.Add(h, 0, 0, "move", 7, boosts...)
	})

	e2, id2 := newBattle(t)
	apply(t, e2, id2, func(h effect.Host) error {
		for _, b := range boosts {
			if err := statboost.Add(h, 0, 0, "move", 7, b); err != nil {
				return err
			}
		}
		return nil
	})

	s1, err := e1.MonState(id1, 0, 0)
	require.NoError(t, err)
	s2, err := e2.MonState(id2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, s1.Deltas, s2.Deltas)
	// 15 * 110/100 = 16, 16 * 80/100 = 12
	assert.Equal(t, int32(-3), s1.Delta(model.StatAttack))
	assert.Equal(t, int32(5), s1.Delta(model.StatSpeed))
}

func TestAdd_RepeatStacks(t *testing.T) {
	e, id := newBattle(t)
	var entries []statboost.Entry
	apply(t, e, id, func(h effect.Host) error {
		for range 2 {
			if err := statboost.Add(h, 0, 0, "move", 0, attack(100, statboost.Multiply)); err != nil {
				return err
			}
		}
		var err error
		entries, err = statboost.List(h, 0, 0)
		return err
	})

	require.Len(t, entries, 1)
	assert.Equal(t, uint32(2), entries[0].Stacks)
	assert.Equal(t, statboost.SourceKey(0, 0, "move", 0), entries[0].Source)
	// 15 -> 30 -> 60
	testutil.AssertDelta(t, e, id, 0, 0, model.StatAttack, 45)
}

func TestRecompute_Idempotent(t *testing.T) {
	e, id := newBattle(t)
	apply(t, e, id, func(h effect.Host) error {
		if err := statboost.Add(h, 0, 0, "move", 0, attack(50, statboost.Multiply)); err != nil {
			return err
		}
		if err := statboost.Recompute(h, 0, 0); err != nil {
			return err
		}
		return statboost.Recompute(h, 0, 0)
	})
	// 15 * 150/100 = 22
	testutil.AssertDelta(t, e, id, 0, 0, model.StatAttack, 7)
}

func TestRemove_KeepsOtherStatChanges(t *testing.T) {
	e, id := newBattle(t)
	apply(t, e, id, func(h effect.Host) error {
		if err := statboost.Add(h, 0, 0, "move", 0, attack(50, statboost.Multiply)); err != nil {
			return err
		}
		if err := h.UpdateMonState(0, 0, model.StatAttack, -2); err != nil {
			return err
		}
		return statboost.Remove(h, 0, 0, "move", 0)
	})
	testutil.AssertDelta(t, e, id, 0, 0, model.StatAttack, -2)

	b, err := e.Snapshot(id)
	require.NoError(t, err)
	for _, inst := range b.Effects.List(model.MonTarget(0, 0)) {
		assert.NotEqual(t, statboost.EffectName, inst.Name, "empty ledger is detached")
	}
}

func TestClear_DropsPermanent(t *testing.T) {
	e, id := newBattle(t)
	apply(t, e, id, func(h effect.Host) error {
		err := statboost.Add(h, 0, 0, "move", 0,
			attack(50, statboost.Multiply),
			statboost.Boost{Stat: model.StatDefense, Percent: 50, Op: statboost.Multiply, Permanent: true})
		if err != nil {
			return err
		}
		return statboost.Clear(h, 0, 0)
	})
	testutil.AssertDelta(t, e, id, 0, 0, model.StatAttack, 0)
	testutil.AssertDelta(t, e, id, 0, 0, model.StatDefense, 0)
}

func TestSwitchOut_ClearsTemporaryKeepsPermanent(t *testing.T) {
	e, id := newBattle(t)
	apply(t, e, id, func(h effect.Host) error {
		return statboost.Add(h, 0, 0, "move", 0,
			attack(50, statboost.Multiply),
			statboost.Boost{Stat: model.StatDefense, Percent: 50, Op: statboost.Multiply, Permanent: true})
	})
	testutil.AssertDelta(t, e, id, 0, 0, model.StatAttack, 7)
	testutil.AssertDelta(t, e, id, 0, 0, model.StatDefense, 5)

	testutil.PlayTurn(t, e, id, [2][]model.SlotMove{{testutil.Switch(1)}, {testutil.NoOp()}})
	testutil.AssertActive(t, e, id, 0, 0, 1)

	testutil.AssertDelta(t, e, id, 0, 0, model.StatAttack, 0)
	testutil.AssertDelta(t, e, id, 0, 0, model.StatDefense, 5)

	var entries []statboost.Entry
	apply(t, e, id, func(h effect.Host) error {
		var err error
		entries, err = statboost.List(h, 0, 0)
		return err
	})
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Boost.Permanent)
}

func TestSwitchOutAndBack_TemporaryBoostsGone(t *testing.T) {
	e, id := newBattle(t)
	apply(t, e, id, func(h effect.Host) error {
		err := statboost.Add(h, 0, 0, "guard", 0,
			statboost.Boost{Stat: model.StatDefense, Percent: 50, Op: statboost.Multiply, Permanent: true})
		if err != nil {
			return err
		}
		if err := statboost.Add(h, 0, 0, "rage", 0, attack(10, statboost.Multiply)); err != nil {
			return err
		}
		err = statboost.Add(h, 0, 0, "haste", 0,
			statboost.Boost{Stat: model.StatSpeed, Percent: 20, Op: statboost.Multiply})
		if err != nil {
			return err
		}
		return statboost.Add(h, 0, 0, "focus", 0,
			statboost.Boost{Stat: model.StatSpecialAttack, Percent: 30, Op: statboost.Multiply})
	})
	// 15 -> 16, 10 -> 12, 20 -> 26, 10 -> 15
	testutil.AssertDelta(t, e, id, 0, 0, model.StatAttack, 1)
	testutil.AssertDelta(t, e, id, 0, 0, model.StatSpeed, 2)
	testutil.AssertDelta(t, e, id, 0, 0, model.StatSpecialAttack, 6)
	testutil.AssertDelta(t, e, id, 0, 0, model.StatDefense, 5)

	testutil.PlayTurn(t, e, id, [2][]model.SlotMove{{testutil.Switch(1)}, {testutil.NoOp()}})
	testutil.PlayTurn(t, e, id, [2][]model.SlotMove{{testutil.Switch(0)}, {testutil.NoOp()}})
	testutil.AssertActive(t, e, id, 0, 0, 0)

	testutil.AssertDelta(t, e, id, 0, 0, model.StatAttack, 0)
	testutil.AssertDelta(t, e, id, 0, 0, model.StatSpeed, 0)
	testutil.AssertDelta(t, e, id, 0, 0, model.StatSpecialAttack, 0)
	testutil.AssertDelta(t, e, id, 0, 0, model.StatDefense, 5)
}

func TestFloor_AddThenRemoveRestoresStat(t *testing.T) {
	e, id := newBattle(t)
	apply(t, e, id, func(h effect.Host) error {
		if err := h.UpdateMonState(0, 0, model.StatAttack, -14); err != nil {
			return err
		}
		// 15 * 50/100 = 7 wants -8 but only 1 point is left above the floor.
		return statboost.Add(h, 0, 0, "cut", 0, attack(50, statboost.Divide))
	})
	testutil.AssertDelta(t, e, id, 0, 0, model.StatAttack, -15)

	apply(t, e, id, func(h effect.Host) error {
		if err := statboost.Recompute(h, 0, 0); err != nil {
			return err
		}
		return statboost.Remove(h, 0, 0, "cut", 0)
	})
	testutil.AssertDelta(t, e, id, 0, 0, model.StatAttack, -14)
}

func TestFloor_SwitchOutRestoresStat(t *testing.T) {
	e, id := newBattle(t)
	apply(t, e, id, func(h effect.Host) error {
		if err := h.UpdateMonState(0, 0, model.StatAttack, -14); err != nil {
			return err
		}
		return statboost.Add(h, 0, 0, "cut", 0, attack(50, statboost.Divide))
	})
	testutil.AssertDelta(t, e, id, 0, 0, model.StatAttack, -15)

	testutil.PlayTurn(t, e, id, [2][]model.SlotMove{{testutil.Switch(1)}, {testutil.NoOp()}})
	testutil.AssertDelta(t, e, id, 0, 0, model.StatAttack, -14)
}

func TestFloor_BoostUpFromZero(t *testing.T) {
	e, id := newBattle(t)
	apply(t, e, id, func(h effect.Host) error {
		if err := statboost.Add(h, 0, 0, "rage", 0, attack(100, statboost.Multiply)); err != nil {
			return err
		}
		// Drives Attack to the floor: 30 effective, -40 clamps at -30.
		if err := h.UpdateMonState(0, 0, model.StatAttack, -40); err != nil {
			return err
		}
		return statboost.Remove(h, 0, 0, "rage", 0)
	})
	testutil.AssertDelta(t, e, id, 0, 0, model.StatAttack, -15)
}

func TestAdd_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		boost statboost.Boost
		want  error
	}{
		{"hp", statboost.Boost{Stat: model.StatHP, Percent: 10}, statboost.ErrNotBoostable},
		{"zero", attack(0, statboost.Multiply), statboost.ErrInvalidPercent},
		{"divide past zero", attack(150, statboost.Divide), statboost.ErrInvalidPercent},
		{"huge", attack(statboost.MaxPercent+1, statboost.Multiply), statboost.ErrInvalidPercent},
		{"op", attack(10, statboost.Op(9)), statboost.ErrInvalidOp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, id := newBattle(t)
			err := e.Apply(context.Background(), id, func(h effect.Host) error {
				return statboost.Add(h, 0, 0, "move", 0, attack(50, statboost.Multiply), tt.boost)
			})
			require.ErrorIs(t, err, tt.want)
			testutil.AssertDelta(t, e, id, 0, 0, model.StatAttack, 0)
		})
	}
}

func TestAdd_CorruptLedger(t *testing.T) {
	e, id := newBattle(t)
	apply(t, e, id, func(h effect.Host) error {
		if err := statboost.Add(h, 0, 0, "move", 0, attack(50, statboost.Multiply)); err != nil {
			return err
		}
		for _, inst := range h.Effects(model.MonTarget(0, 0)) {
			if inst.Name == statboost.EffectName {
				return h.EditEffect(model.MonTarget(0, 0), inst.ID, []byte{0xff, 0xff, 0xff, 0x7f})
			}
		}
		return nil
	})

	err := e.Apply(context.Background(), id, func(h effect.Host) error {
		return statboost.Add(h, 0, 0, "move", 0, attack(10, statboost.Multiply))
	})
	require.ErrorIs(t, err, statboost.ErrCorruptLedger)
}

func TestSourceKey(t *testing.T) {
	base := statboost.SourceKey(0, 1, "Fortify", 0)
	assert.Equal(t, base, statboost.SourceKey(0, 1, "Fortify", 0))
	assert.NotEqual(t, base, statboost.SourceKey(1, 1, "Fortify", 0))
	assert.NotEqual(t, base, statboost.SourceKey(0, 2, "Fortify", 0))
	assert.NotEqual(t, base, statboost.SourceKey(0, 1, "Hasten", 0))
	assert.NotEqual(t, base, statboost.SourceKey(0, 1, "Fortify", 1))
}
