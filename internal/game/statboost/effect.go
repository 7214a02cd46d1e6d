package statboost

import (
	"github.com/udisondev/monarena/internal/game/effect"
)

// EffectName is the registry name of the ledger-carrying effect.
const EffectName = "StatBoosts"

func init() {
	effect.Register(boostsEffect{})
}

// boostsEffect owns a mon's boost ledger. Its only behaviour is dropping
// temporary boosts when the mon leaves the field.
type boostsEffect struct {
	effect.Base
}

func (boostsEffect) Name() string { return EffectName }

func (boostsEffect) ShouldRunAtStep(step effect.Step) bool {
	return step == effect.StepOnMonSwitchOut
}

func (boostsEffect) OnMonSwitchOut(c effect.Call) (effect.Result, error) {
	l, err := decodeLedger(c.Data)
	if err != nil {
		return effect.Result{}, err
	}
	if l.drop(func(e entry) bool { return !e.Permanent }) == 0 {
		return effect.Keep(c.Data), nil
	}

	if err := c.Host.EditEffect(c.Target, c.ID, l.encode()); err != nil {
		return effect.Result{}, err
	}
	if err := settle(c.Host, c.Target.Player, c.Target.Mon); err != nil {
		return effect.Result{}, err
	}

	// Hooks fired while settling may have added boosts of their own.
	for _, inst := range c.Host.Effects(c.Target) {
		if inst.ID != c.ID {
			continue
		}
		cur, err := decodeLedger(inst.Data)
		if err != nil {
			return effect.Result{}, err
		}
		if len(cur.entries) == 0 {
			return effect.Drop(), nil
		}
		return effect.Keep(inst.Data), nil
	}
	return effect.Drop(), nil
}
