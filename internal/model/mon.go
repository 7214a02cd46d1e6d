package model

import "math"

// Mon is a creature as registered on a team. Everything here is immutable
// for the lifetime of a battle; mutable state lives in MonState.
type Mon struct {
	Name    string   `json:"name" yaml:"name"`
	Stats   MonStats `json:"stats" yaml:"stats"`
	Type1   Type     `json:"type1" yaml:"type1"`
	Type2   Type     `json:"type2" yaml:"type2"`
	Moves   []string `json:"moves" yaml:"moves"`
	Ability string   `json:"ability,omitempty" yaml:"ability"`
}

// Types returns the mon's defending types, skipping TypeNone.
func (m Mon) Types() []Type {
	out := make([]Type, 0, 2)
	if m.Type1 != TypeNone {
		out = append(out, m.Type1)
	}
	if m.Type2 != TypeNone && m.Type2 != m.Type1 {
		out = append(out, m.Type2)
	}
	return out
}

// Team is a player's roster for one battle, in roster order.
type Team struct {
	Mons []Mon `json:"mons" yaml:"mons"`
}

// MonState holds per-mon mutable deltas against the base stats.
type MonState struct {
	Deltas     [NumStats]int32
	KnockedOut bool
	SkipTurn   bool
}

// Delta returns the signed delta for stat.
func (s *MonState) Delta(stat Stat) int32 {
	if int(stat) >= NumStats {
		return 0
	}
	return s.Deltas[stat]
}

// Effective returns base+delta, floored at zero.
func Effective(base uint32, delta int32) uint32 {
	v := int64(base) + int64(delta)
	if v < 0 {
		return 0
	}
	return uint32(v)
}

// ClampDelta bounds a new delta for stat given the mon's base value.
// HP and stamina can only go down from base (no overheal) and never below
// zero effective; boostable stats only have the zero floor.
func ClampDelta(stat Stat, base uint32, delta int32) int32 {
	floor := -int32(base)
	if delta < floor {
		delta = floor
	}
	if (stat == StatHP || stat == StatStamina) && delta > 0 {
		delta = 0
	}
	return delta
}

// AddDelta returns the delta that results from adding change to old,
// saturating on overflow and then clamped as ClampDelta does.
func AddDelta(stat Stat, base uint32, old, change int32) int32 {
	sum := min(max(int64(old)+int64(change), math.MinInt32), math.MaxInt32)
	return ClampDelta(stat, base, int32(sum))
}
