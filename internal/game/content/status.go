package content

import (
	"slices"

	"github.com/udisondev/monarena/internal/game/effect"
	"github.com/udisondev/monarena/internal/game/statboost"
	"github.com/udisondev/monarena/internal/model"
)

// Status effect names. A mon carries at most one status at a time.
const (
	Frostbite = "Frostbite"
	Zap       = "Zap"
)

var statuses = []string{Frostbite, Zap}

func hasStatus(h effect.Host, t model.Target) bool {
	for _, inst := range h.Effects(t) {
		if slices.Contains(statuses, inst.Name) {
			return true
		}
	}
	return false
}

// frostbite halves special attack for as long as it lasts and deals 1/16
// of max HP at every round end. It does not stack.
type frostbite struct {
	effect.Base
}

func (frostbite) Name() string { return Frostbite }

func (frostbite) ShouldRunAtStep(step effect.Step) bool {
	switch step {
	case effect.StepOnApply, effect.StepRoundEnd, effect.StepOnRemove:
		return true
	}
	return false
}

func (frostbite) ShouldApply(c effect.Call) bool {
	return !c.Target.IsField() && !hasStatus(c.Host, c.Target)
}

func (frostbite) OnApply(c effect.Call) (effect.Result, error) {
	err := statboost.Add(c.Host, c.Target.Player, c.Target.Mon, Frostbite, 0, statboost.Boost{
		Stat:      model.StatSpecialAttack,
		Percent:   50,
		Op:        statboost.Divide,
		Permanent: true,
	})
	if err != nil {
		return effect.Result{}, err
	}
	return effect.Keep(nil), nil
}

func (frostbite) OnRoundEnd(c effect.Call) (effect.Result, error) {
	hp := c.Host.Mon(c.Target.Player, c.Target.Mon).Stats.HP
	damage := max(int32(hp/16), 1)
	if err := c.Host.DealDamage(c.Target.Player, c.Target.Mon, damage); err != nil {
		return effect.Result{}, err
	}
	return effect.Keep(c.Data), nil
}

func (frostbite) OnRemove(c effect.Call) error {
	return statboost.Remove(c.Host, c.Target.Player, c.Target.Mon, Frostbite, 0)
}

// zap makes the mon lose its next action, then wears off at the end of the
// round in which that action was lost.
type zap struct {
	effect.Base
}

func (zap) Name() string { return Zap }

func (zap) ShouldRunAtStep(step effect.Step) bool {
	switch step {
	case effect.StepOnApply, effect.StepRoundEnd, effect.StepOnRemove:
		return true
	}
	return false
}

func (zap) ShouldApply(c effect.Call) bool {
	return !c.Target.IsField() && !hasStatus(c.Host, c.Target)
}

func (zap) OnApply(c effect.Call) (effect.Result, error) {
	if err := c.Host.SetSkipTurn(c.Target.Player, c.Target.Mon, true); err != nil {
		return effect.Result{}, err
	}
	return effect.Keep(nil), nil
}

func (zap) OnRoundEnd(c effect.Call) (effect.Result, error) {
	if c.Host.MonState(c.Target.Player, c.Target.Mon).SkipTurn {
		return effect.Keep(c.Data), nil
	}
	return effect.Drop(), nil
}

func (zap) OnRemove(c effect.Call) error {
	return c.Host.SetSkipTurn(c.Target.Player, c.Target.Mon, false)
}
