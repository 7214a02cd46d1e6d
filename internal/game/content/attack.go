package content

import (
	"github.com/udisondev/monarena/internal/game/combat"
	"github.com/udisondev/monarena/internal/game/effect"
	"github.com/udisondev/monarena/internal/game/move"
	"github.com/udisondev/monarena/internal/model"
)

// AttackSpec configures a standard attack.
type AttackSpec struct {
	Name       string
	Power      uint32
	Stamina    int32
	Accuracy   uint32 // 0 means combat.DefaultAccuracy
	Priority   int    // 0 means move.DefaultPriority
	Type       model.Type
	Class      model.MoveClass
	CritRate   uint32
	Volatility uint32

	// Status is attached to the defender on a hit, with StatusChance
	// percent (0 means always).
	Status       string
	StatusChance uint32
}

// Attack hits one opposing mon through the damage resolver and may inflict
// a status.
type Attack struct {
	spec AttackSpec
}

// NewAttack creates an attack, filling zero fields with defaults.
func NewAttack(spec AttackSpec) *Attack {
	if spec.Accuracy == 0 {
		spec.Accuracy = combat.DefaultAccuracy
	}
	if spec.Priority == 0 {
		spec.Priority = move.DefaultPriority
	}
	return &Attack{spec: spec}
}

func (a *Attack) Name() string               { return a.spec.Name }
func (a *Attack) Priority() int              { return a.spec.Priority }
func (a *Attack) StaminaCost() int32         { return a.spec.Stamina }
func (a *Attack) Accuracy() uint32           { return a.spec.Accuracy }
func (a *Attack) MoveType() model.Type       { return a.spec.Type }
func (a *Attack) MoveClass() model.MoveClass { return a.spec.Class }

// IsValidTarget accepts opposing slot 0 or 1 in doubles; singles ignore
// the extra data.
func (a *Attack) IsValidTarget(b *model.Battle, _, _ int, extraData uint64) bool {
	return b.Format != model.Doubles || extraData < 2
}

func (a *Attack) Execute(h effect.Host, act effect.Action, rng uint64) error {
	opp := 1 - act.Player
	target := h.ActiveMon(opp, move.OpposingSlot(h.Format(), act.Move.ExtraData))
	if target < 0 || h.MonState(opp, target).KnockedOut {
		h.Logger().Debug("attack has no target", "move", a.spec.Name, "player", act.Player)
		return nil
	}

	atkStat, defStat := combat.StatsFor(a.spec.Class)
	out := h.Damage().Resolve(combat.Attack{
		Power:         a.spec.Power,
		Accuracy:      a.spec.Accuracy,
		CritRate:      a.spec.CritRate,
		Volatility:    a.spec.Volatility,
		Type:          a.spec.Type,
		AttackStat:    h.Stat(act.Player, act.Mon, atkStat),
		DefenseStat:   h.Stat(opp, target, defStat),
		DefenderTypes: h.Mon(opp, target).Types(),
		RNG:           rng,
	})
	if out.Miss {
		h.Logger().Debug("attack missed", "move", a.spec.Name, "player", act.Player)
		return nil
	}

	if out.Damage > 0 {
		if err := h.DealDamage(opp, target, out.Damage); err != nil {
			return err
		}
		h.Logger().Debug("attack hit",
			"move", a.spec.Name,
			"damage", out.Damage,
			"crit", out.Crit,
			"effectiveness", out.Effectiveness)
	}

	if a.spec.Status == "" || h.MonState(opp, target).KnockedOut {
		return nil
	}
	if c := a.spec.StatusChance; c > 0 && combat.SubRoll(rng, combat.RollEffect)%100 >= uint64(c) {
		return nil
	}
	return h.AddEffect(model.MonTarget(opp, target), a.spec.Status, nil)
}
