// Package combat resolves a single damaging hit: accuracy, base damage from
// the attack/defense ratio, type effectiveness, critical hits and variance.
package combat

import (
	"math"

	"github.com/udisondev/monarena/internal/crypto"
	"github.com/udisondev/monarena/internal/model"
)

// Roll selects an independent sub-random value derived from an action's rng.
type Roll uint64

const (
	RollAccuracy Roll = iota // used directly: rng % 100
	RollCrit
	RollVariance
	RollEffect // secondary effect chance, consumed by move logic
)

// SubRoll returns the value for kind derived from rng.
// RollAccuracy returns rng itself; every other kind hashes (rng, kind) so
// rolls within one action do not correlate.
func SubRoll(rng uint64, kind Roll) uint64 {
	if kind == RollAccuracy {
		return rng
	}
	return crypto.Derive(rng, uint64(kind))
}

// Defaults used by moves that don't override them.
const (
	DefaultAccuracy   = 100
	DefaultCritRate   = 5
	DefaultVolatility = 10

	DefaultCritNumerator   = 3
	DefaultCritDenominator = 2
)

// Attack describes one hit.
type Attack struct {
	Power      uint32
	Accuracy   uint32 // percent, 100 never misses
	CritRate   uint32 // percent
	Volatility uint32 // ±percent applied last
	Type       model.Type

	AttackStat    uint32 // attacker's effective offensive stat
	DefenseStat   uint32 // defender's effective defensive stat
	DefenderTypes []model.Type

	RNG uint64
}

// Outcome is the result of Resolve.
type Outcome struct {
	Damage        int32
	Miss          bool
	Crit          bool
	Effectiveness uint32 // combined type multiplier, percent
}

// Resolver computes damage. It is stateless and safe to share.
type Resolver struct {
	chart   TypeChart
	critNum uint64
	critDen uint64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCritMultiplier sets the crit multiplier to num/den.
func WithCritMultiplier(num, den uint32) Option {
	return func(r *Resolver) {
		if num > 0 && den > 0 {
			r.critNum = uint64(num)
			r.critDen = uint64(den)
		}
	}
}

// NewResolver creates a resolver using chart for type effectiveness.
func NewResolver(chart TypeChart, opts ...Option) *Resolver {
	if chart == nil {
		chart = DefaultTypeChart()
	}
	r := &Resolver{
		chart:   chart,
		critNum: DefaultCritNumerator,
		critDen: DefaultCritDenominator,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TypeChart returns the chart the resolver uses.
func (r *Resolver) TypeChart() TypeChart {
	return r.chart
}

// StatsFor returns the offensive and defensive stats a move class uses.
func StatsFor(class model.MoveClass) (attack, defense model.Stat) {
	if class == model.ClassSpecial {
		return model.StatSpecialAttack, model.StatSpecialDefense
	}
	return model.StatAttack, model.StatDefense
}

// Resolve computes the outcome of a hit.
//
// Order: accuracy (a miss short-circuits with zero damage), base damage
// power*atk/def, type multiplier once per defender type, crit on a derived
// roll, bounded variance on a second derived roll.
func (r *Resolver) Resolve(a Attack) Outcome {
	accuracy := a.Accuracy
	if accuracy > 100 {
		accuracy = 100
	}
	if SubRoll(a.RNG, RollAccuracy)%100 >= uint64(accuracy) {
		return Outcome{Miss: true}
	}

	out := Outcome{Effectiveness: 100}
	if a.Power == 0 {
		return out
	}

	def := uint64(a.DefenseStat)
	if def == 0 {
		def = 1
	}
	damage := uint64(a.Power) * uint64(a.AttackStat) / def

	for _, t := range a.DefenderTypes {
		m := uint64(r.chart.Effectiveness(a.Type, t))
		damage = damage * m / 100
		out.Effectiveness = uint32(uint64(out.Effectiveness) * m / 100)
	}

	if SubRoll(a.RNG, RollCrit)%100 < uint64(a.CritRate) {
		out.Crit = true
		damage = damage * r.critNum / r.critDen
	}

	damage = applyVariance(damage, a.Volatility, SubRoll(a.RNG, RollVariance))

	if damage > math.MaxInt32 {
		damage = math.MaxInt32
	}
	out.Damage = int32(damage)
	return out
}

// applyVariance scales damage by a factor in [100-vol, 100+vol] percent.
func applyVariance(damage uint64, volatility uint32, roll uint64) uint64 {
	if volatility == 0 || damage == 0 {
		return damage
	}
	if volatility > 100 {
		volatility = 100
	}
	vol := uint64(volatility)
	factor := 100 - vol + roll%(2*vol+1)
	return damage * factor / 100
}
