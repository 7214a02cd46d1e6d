// Package content is the reference kit the engine ships with: a handful of
// moves, two statuses, the stamina regen field effect, two abilities and the
// standard rulesets. Importing the package registers all of them.
package content

import (
	"github.com/udisondev/monarena/internal/game/combat"
	"github.com/udisondev/monarena/internal/game/effect"
	"github.com/udisondev/monarena/internal/game/engine"
	"github.com/udisondev/monarena/internal/game/move"
	"github.com/udisondev/monarena/internal/game/statboost"
	"github.com/udisondev/monarena/internal/model"
)

// Move names.
const (
	Tackle      = "Tackle"
	QuickStrike = "QuickStrike"
	Scorch      = "Scorch"
	Torrent     = "Torrent"
	FrostBreath = "FrostBreath"
	Jolt        = "Jolt"
	Fortify     = "Fortify"
	Bulwark     = "Bulwark"
	Hasten      = "Hasten"
)

// Ruleset names.
const (
	// Standard attaches StaminaRegen to both sides.
	Standard = "standard"
	// Exhibition has no field effects, so stamina never comes back.
	Exhibition = "exhibition"
)

func init() {
	effect.Register(frostbite{})
	effect.Register(zap{})
	effect.Register(staminaRegen{})
	effect.Register(afterglow{})

	move.Register(NewAttack(AttackSpec{
		Name: Tackle, Power: 40, Stamina: 1,
		Type: model.TypeWild, Class: model.ClassPhysical,
		CritRate: combat.DefaultCritRate, Volatility: combat.DefaultVolatility,
	}))
	move.Register(NewAttack(AttackSpec{
		Name: QuickStrike, Power: 25, Stamina: 1, Priority: move.DefaultPriority + 1,
		Type: model.TypeAir, Class: model.ClassPhysical,
		CritRate: combat.DefaultCritRate, Volatility: combat.DefaultVolatility,
	}))
	move.Register(NewAttack(AttackSpec{
		Name: Scorch, Power: 50, Stamina: 2, Accuracy: 90,
		Type: model.TypeFire, Class: model.ClassSpecial,
		CritRate: combat.DefaultCritRate, Volatility: combat.DefaultVolatility,
	}))
	move.Register(NewAttack(AttackSpec{
		Name: Torrent, Power: 50, Stamina: 2, Accuracy: 90,
		Type: model.TypeLiquid, Class: model.ClassSpecial,
		CritRate: combat.DefaultCritRate, Volatility: combat.DefaultVolatility,
	}))
	move.Register(NewAttack(AttackSpec{
		Name: FrostBreath, Stamina: 1,
		Type: model.TypeIce, Class: model.ClassSpecial,
		Status: Frostbite,
	}))
	move.Register(NewAttack(AttackSpec{
		Name: Jolt, Power: 20, Stamina: 2,
		Type: model.TypeLightning, Class: model.ClassSpecial,
		CritRate: combat.DefaultCritRate, Volatility: combat.DefaultVolatility,
		Status: Zap, StatusChance: 30,
	}))
	move.Register(NewSelfBoost(Fortify, 1,
		statboost.Boost{Stat: model.StatAttack, Percent: 50, Op: statboost.Multiply}))
	move.Register(NewSelfBoost(Bulwark, 2,
		statboost.Boost{Stat: model.StatDefense, Percent: 25, Op: statboost.Multiply, Permanent: true}))
	move.Register(NewSelfBoost(Hasten, 1,
		statboost.Boost{Stat: model.StatSpeed, Percent: 100, Op: statboost.Multiply}))

	move.RegisterAbility(menace{})
	move.RegisterAbility(radiance{})

	engine.RegisterRuleset(&engine.Ruleset{
		Name:         Standard,
		Validator:    engine.DefaultValidator{},
		Randomness:   engine.SaltOracle{},
		TypeChart:    combat.DefaultTypeChart(),
		FieldEffects: []string{StaminaRegen},
	})
	engine.RegisterRuleset(&engine.Ruleset{
		Name:       Exhibition,
		Validator:  engine.DefaultValidator{},
		Randomness: engine.SaltOracle{},
		TypeChart:  combat.DefaultTypeChart(),
	})
}
