package content

import (
	"github.com/udisondev/monarena/internal/game/effect"
	"github.com/udisondev/monarena/internal/game/statboost"
	"github.com/udisondev/monarena/internal/model"
)

// Ability names.
const (
	Menace   = "Menace"
	Radiance = "Radiance"
)

// Afterglow heals 1 HP whenever its mon regains stamina.
const Afterglow = "Afterglow"

// menace lowers the attack of every opposing active mon by 10% when its
// owner enters the field. The drop is temporary.
type menace struct{}

func (menace) Name() string { return Menace }

func (menace) OnSwitchIn(h effect.Host, player, mon int) error {
	opp := 1 - player
	for slot := range h.Format().Slots() {
		target := h.ActiveMon(opp, slot)
		if target < 0 || h.MonState(opp, target).KnockedOut {
			continue
		}
		err := statboost.Add(h, opp, target, Menace, uint64(player), statboost.Boost{
			Stat:    model.StatAttack,
			Percent: 10,
			Op:      statboost.Divide,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// radiance attaches Afterglow to its mon.
type radiance struct{}

func (radiance) Name() string { return Radiance }

func (radiance) OnSwitchIn(h effect.Host, player, mon int) error {
	return h.AddEffect(model.MonTarget(player, mon), Afterglow, nil)
}

type afterglow struct {
	effect.Base
}

func (afterglow) Name() string { return Afterglow }

func (afterglow) ShouldRunAtStep(step effect.Step) bool {
	return step == effect.StepOnUpdateMonState
}

// ShouldApply keeps a single Afterglow per mon across switch-ins.
func (afterglow) ShouldApply(c effect.Call) bool {
	if c.Target.IsField() {
		return false
	}
	for _, inst := range c.Host.Effects(c.Target) {
		if inst.Name == Afterglow {
			return false
		}
	}
	return true
}

func (afterglow) OnUpdateMonState(c effect.Call, stat model.Stat, delta int32) (effect.Result, error) {
	if stat != model.StatStamina || delta <= 0 {
		return effect.Keep(c.Data), nil
	}
	st := c.Host.MonState(c.Target.Player, c.Target.Mon)
	if st.KnockedOut || st.Delta(model.StatHP) >= 0 {
		return effect.Keep(c.Data), nil
	}
	if err := c.Host.UpdateMonState(c.Target.Player, c.Target.Mon, model.StatHP, 1); err != nil {
		return effect.Result{}, err
	}
	return effect.Keep(c.Data), nil
}
