package content

import (
	"github.com/udisondev/monarena/internal/game/effect"
	"github.com/udisondev/monarena/internal/model"
)

// StaminaRegen is the standard field effect: every healthy active mon that
// spent stamina gets 1 back at round end, and resting gets 1 back
// immediately. Being a field effect it ticks before any mon status.
const StaminaRegen = "StaminaRegen"

type staminaRegen struct {
	effect.Base
}

func (staminaRegen) Name() string { return StaminaRegen }

func (staminaRegen) ShouldRunAtStep(step effect.Step) bool {
	return step == effect.StepRoundEnd || step == effect.StepAfterMove
}

func (staminaRegen) ShouldApply(c effect.Call) bool {
	return c.Target.IsField()
}

func (staminaRegen) OnRoundEnd(c effect.Call) (effect.Result, error) {
	player := c.Target.Player
	for slot := range c.Host.Format().Slots() {
		if err := regen(c.Host, player, c.Host.ActiveMon(player, slot)); err != nil {
			return effect.Result{}, err
		}
	}
	return effect.Keep(c.Data), nil
}

func (staminaRegen) OnAfterMove(c effect.Call, act effect.Action) (effect.Result, error) {
	if act.Move.IsNoOp() && act.Player == c.Target.Player {
		if err := regen(c.Host, act.Player, act.Mon); err != nil {
			return effect.Result{}, err
		}
	}
	return effect.Keep(c.Data), nil
}

func regen(h effect.Host, player, mon int) error {
	if mon < 0 {
		return nil
	}
	st := h.MonState(player, mon)
	if st.KnockedOut || st.Delta(model.StatStamina) >= 0 {
		return nil
	}
	return h.UpdateMonState(player, mon, model.StatStamina, 1)
}
