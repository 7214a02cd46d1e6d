package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/monarena/internal/model"
)

func plainAttack(power, atk, def uint32) Attack {
	return Attack{
		Power:       power,
		Accuracy:    100,
		AttackStat:  atk,
		DefenseStat: def,
		Type:        model.TypeNone,
	}
}

func TestResolve_BaseFormula(t *testing.T) {
	r := NewResolver(nil)

	tests := []struct {
		name   string
		attack Attack
		want   int32
	}{
		{name: "ratio 2", attack: plainAttack(40, 20, 10), want: 80},
		{name: "ratio below 1", attack: plainAttack(40, 10, 30), want: 13},
		{name: "zero defense floored", attack: plainAttack(10, 5, 0), want: 50},
		{name: "zero power", attack: plainAttack(0, 100, 1), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for rng := range uint64(20) {
				a := tt.attack
				a.RNG = rng
				out := r.Resolve(a)
				assert.False(t, out.Miss)
				assert.False(t, out.Crit)
				assert.Equal(t, tt.want, out.Damage, "rng=%d", rng)
			}
		})
	}
}

func TestResolve_Accuracy(t *testing.T) {
	r := NewResolver(nil)

	a := plainAttack(40, 20, 10)
	a.Accuracy = 0
	for rng := range uint64(50) {
		a.RNG = rng
		out := r.Resolve(a)
		require.True(t, out.Miss)
		require.Zero(t, out.Damage)
	}

	// rng%100 is the accuracy roll: 69 hits at 70%, 70 misses.
	a.Accuracy = 70
	a.RNG = 69
	assert.False(t, r.Resolve(a).Miss)
	a.RNG = 170
	assert.True(t, r.Resolve(a).Miss)
}

func TestResolve_TypeEffectiveness(t *testing.T) {
	r := NewResolver(nil)

	tests := []struct {
		name     string
		atkType  model.Type
		defTypes []model.Type
		want     int32
		wantEff  uint32
	}{
		{"neutral", model.TypeFire, []model.Type{model.TypeCyber}, 80, Neutral},
		{"super", model.TypeLiquid, []model.Type{model.TypeFire}, 160, SuperEffective},
		{"double super", model.TypeLiquid, []model.Type{model.TypeFire, model.TypeEarth}, 320, 400},
		{"resisted", model.TypeFire, []model.Type{model.TypeLiquid}, 40, NotEffective},
		{"super and resisted", model.TypeFire, []model.Type{model.TypeNature, model.TypeLiquid}, 80, Neutral},
		{"immune", model.TypeLightning, []model.Type{model.TypeEarth}, 0, Immune},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := plainAttack(40, 20, 10)
			a.Type = tt.atkType
			a.DefenderTypes = tt.defTypes
			out := r.Resolve(a)
			assert.Equal(t, tt.want, out.Damage)
			assert.Equal(t, tt.wantEff, out.Effectiveness)
		})
	}
}

func TestResolve_Crit(t *testing.T) {
	r := NewResolver(nil)

	a := plainAttack(40, 20, 10)
	a.CritRate = 100
	out := r.Resolve(a)
	assert.True(t, out.Crit)
	assert.Equal(t, int32(120), out.Damage)

	r = NewResolver(nil, WithCritMultiplier(2, 1))
	out = r.Resolve(a)
	assert.Equal(t, int32(160), out.Damage)
}

func TestResolve_VarianceBounded(t *testing.T) {
	r := NewResolver(nil)

	a := plainAttack(40, 20, 10)
	a.Volatility = 10

	seen := make(map[int32]bool)
	for rng := range uint64(500) {
		a.RNG = rng
		out := r.Resolve(a)
		require.GreaterOrEqual(t, out.Damage, int32(72), "rng=%d", rng)
		require.LessOrEqual(t, out.Damage, int32(88), "rng=%d", rng)
		seen[out.Damage] = true
	}
	assert.Greater(t, len(seen), 5, "variance should produce a spread of values")
}

func TestResolve_Deterministic(t *testing.T) {
	r := NewResolver(nil)

	a := plainAttack(55, 33, 21)
	a.Volatility = 15
	a.CritRate = 30
	a.Accuracy = 90
	a.Type = model.TypeIce
	a.DefenderTypes = []model.Type{model.TypeNature}

	for rng := range uint64(100) {
		a.RNG = rng * 7919
		assert.Equal(t, r.Resolve(a), r.Resolve(a))
	}
}

func TestSubRoll_Independent(t *testing.T) {
	rng := uint64(123456789)
	assert.Equal(t, rng, SubRoll(rng, RollAccuracy))
	assert.NotEqual(t, SubRoll(rng, RollCrit), SubRoll(rng, RollVariance))
	assert.NotEqual(t, SubRoll(rng, RollCrit), SubRoll(rng+1, RollCrit))
}

func TestChart_Defaults(t *testing.T) {
	c := DefaultTypeChart()
	assert.Equal(t, uint32(Neutral), c.Effectiveness(model.TypeNone, model.TypeFire))
	assert.Equal(t, uint32(Immune), c.Effectiveness(model.TypeEarth, model.TypeAir))
	assert.Equal(t, uint32(Neutral), c.Effectiveness(model.Type(200), model.TypeFire))
}
