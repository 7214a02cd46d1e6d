package engine

import (
	"github.com/udisondev/monarena/internal/game/move"
	"github.com/udisondev/monarena/internal/model"
)

// DefaultValidator implements the standard legality rules:
//   - an empty or knocked-out slot must switch in a healthy bench mon, or
//     rest if none is left;
//   - a switch needs a healthy mon that is neither active nor claimed by
//     the player's other slot;
//   - a move needs a known move index, enough stamina and a valid target.
type DefaultValidator struct{}

func (DefaultValidator) IsLegal(b *model.Battle, player, slot int, m model.SlotMove, claimed int) bool {
	if player < 0 || player > 1 || slot < 0 || slot >= b.Slots() {
		return false
	}

	active := b.ActiveMon(player, slot)
	mustSwitch := active < 0 || b.MonState(player, active).KnockedOut
	switch {
	case m.IsSwitch():
		return canSwitchTo(b, player, m.ExtraData, claimed)
	case mustSwitch:
		return m.IsNoOp() && !hasBench(b, player, claimed)
	case m.IsNoOp():
		return true
	}

	mon := b.Mon(player, active)
	if int(m.MoveIndex) >= len(mon.Moves) {
		return false
	}
	mv, err := move.Lookup(mon.Moves[m.MoveIndex])
	if err != nil {
		return false
	}
	stamina := model.Effective(mon.Stats.Stamina, b.MonState(player, active).Delta(model.StatStamina))
	if mv.StaminaCost() > 0 && int64(stamina) < int64(mv.StaminaCost()) {
		return false
	}
	return mv.IsValidTarget(b, player, slot, m.ExtraData)
}

func canSwitchTo(b *model.Battle, player int, extra uint64, claimed int) bool {
	if extra >= uint64(len(b.States[player])) {
		return false
	}
	mon := int(extra)
	if mon == claimed || b.IsActive(player, mon) {
		return false
	}
	return !b.MonState(player, mon).KnockedOut
}

func hasBench(b *model.Battle, player, claimed int) bool {
	for mon := range b.States[player] {
		if canSwitchTo(b, player, uint64(mon), claimed) {
			return true
		}
	}
	return false
}
