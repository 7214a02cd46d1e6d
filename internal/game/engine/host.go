package engine

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/monarena/internal/game/combat"
	"github.com/udisondev/monarena/internal/game/effect"
	"github.com/udisondev/monarena/internal/game/move"
	"github.com/udisondev/monarena/internal/model"
)

// host is the effect.Host handed to pluggable logic for one engine call.
// It is closed when the call returns; after that mutators fail with
// effect.ErrHostClosed and readers return zero values.
type host struct {
	b        *model.Battle
	pipe     *effect.Pipeline
	resolver *combat.Resolver
	log      *slog.Logger

	rng    uint64 // rng of the action being resolved
	depth  int
	closed bool
}

func newHost(b *model.Battle, resolver *combat.Resolver, log *slog.Logger) *host {
	return &host{
		b:        b,
		pipe:     effect.NewPipeline(&b.Effects, log),
		resolver: resolver,
		log:      log,
	}
}

func (h *host) close() { h.closed = true }

func (h *host) BattleID() model.BattleID {
	if h.closed {
		return model.BattleID{}
	}
	return h.b.ID
}

func (h *host) Turn() uint64 {
	if h.closed {
		return 0
	}
	return h.b.Turn
}

func (h *host) Format() model.Format {
	return h.b.Format
}

func (h *host) ActiveMon(player, slot int) int {
	if h.closed || player < 0 || player > 1 {
		return -1
	}
	return h.b.ActiveMon(player, slot)
}

func (h *host) Mon(player, mon int) model.Mon {
	if h.closed || !h.b.ValidMon(player, mon) {
		return model.Mon{}
	}
	return h.b.Mon(player, mon)
}

func (h *host) MonState(player, mon int) model.MonState {
	if h.closed || !h.b.ValidMon(player, mon) {
		return model.MonState{}
	}
	return *h.b.MonState(player, mon)
}

func (h *host) Stat(player, mon int, stat model.Stat) uint32 {
	if h.closed || !h.b.ValidMon(player, mon) {
		return 0
	}
	return model.Effective(h.b.Mon(player, mon).Stats.Get(stat), h.b.MonState(player, mon).Delta(stat))
}

func (h *host) checkMon(player, mon int) error {
	if h.closed {
		return effect.ErrHostClosed
	}
	if !h.b.ValidMon(player, mon) {
		return fmt.Errorf("%w: %s", effect.ErrInvalidTarget, model.MonTarget(player, mon))
	}
	return nil
}

// UpdateMonState changes a delta and notifies OnUpdateMonState listeners on
// the mon and then on its side's field.
func (h *host) UpdateMonState(player, mon int, stat model.Stat, delta int32) error {
	if err := h.checkMon(player, mon); err != nil {
		return err
	}
	if int(stat) >= model.NumStats {
		return fmt.Errorf("unknown stat %d", stat)
	}

	state := h.b.MonState(player, mon)
	base := h.b.Mon(player, mon).Stats.Get(stat)
	old := state.Deltas[stat]
	next := model.AddDelta(stat, base, old, delta)
	applied := next - old
	if applied == 0 {
		return nil
	}
	state.Deltas[stat] = next

	if stat == model.StatHP && !state.KnockedOut && model.Effective(base, next) == 0 {
		state.KnockedOut = true
		state.SkipTurn = false
		h.log.Debug("mon knocked out", "player", player, "mon", mon, "name", h.b.Mon(player, mon).Name)
	}

	h.depth++
	defer func() { h.depth-- }()
	if h.depth > effect.MaxHookDepth {
		return fmt.Errorf("%w: %s %s", effect.ErrHookDepth, model.MonTarget(player, mon), stat)
	}

	args := effect.Args{Stat: stat, Delta: applied}
	if err := h.pipe.Run(h, model.MonTarget(player, mon), effect.StepOnUpdateMonState, h.rng, args); err != nil {
		return err
	}
	return h.pipe.Run(h, model.FieldTarget(player), effect.StepOnUpdateMonState, h.rng, args)
}

func (h *host) DealDamage(player, mon int, damage int32) error {
	if err := h.checkMon(player, mon); err != nil {
		return err
	}
	if damage <= 0 {
		return nil
	}
	if err := h.UpdateMonState(player, mon, model.StatHP, -damage); err != nil {
		return err
	}
	return h.pipe.Run(h, model.MonTarget(player, mon), effect.StepAfterDamage, h.rng, effect.Args{Damage: damage})
}

func (h *host) SetSkipTurn(player, mon int, skip bool) error {
	if err := h.checkMon(player, mon); err != nil {
		return err
	}
	h.b.MonState(player, mon).SkipTurn = skip
	return nil
}

// SwitchActiveMon puts mon into slot: switch-out hooks for the leaving mon,
// switch-in hooks for the arriving one, then its ability.
func (h *host) SwitchActiveMon(player, slot, mon int) error {
	if err := h.checkMon(player, mon); err != nil {
		return err
	}
	if slot < 0 || slot >= h.b.Slots() {
		return fmt.Errorf("%w: slot %d", effect.ErrInvalidTarget, slot)
	}
	if h.b.IsActive(player, mon) || h.b.MonState(player, mon).KnockedOut {
		return fmt.Errorf("%w: %s cannot switch in", effect.ErrInvalidTarget, model.MonTarget(player, mon))
	}

	if out := h.b.ActiveMon(player, slot); out >= 0 {
		if err := h.pipe.Run(h, model.MonTarget(player, out), effect.StepOnMonSwitchOut, h.rng, effect.Args{}); err != nil {
			return err
		}
		if err := h.pipe.Run(h, model.FieldTarget(player), effect.StepOnMonSwitchOut, h.rng, effect.Args{}); err != nil {
			return err
		}
		h.b.MonState(player, out).SkipTurn = false
	}

	h.b.Active[player][slot] = mon
	h.log.Debug("mon switched in", "player", player, "slot", slot, "mon", mon, "name", h.b.Mon(player, mon).Name)

	if err := h.pipe.Run(h, model.MonTarget(player, mon), effect.StepOnMonSwitchIn, h.rng, effect.Args{}); err != nil {
		return err
	}
	if err := h.pipe.Run(h, model.FieldTarget(player), effect.StepOnMonSwitchIn, h.rng, effect.Args{}); err != nil {
		return err
	}

	name := h.b.Mon(player, mon).Ability
	if name == "" {
		return nil
	}
	ability, err := move.LookupAbility(name)
	if err != nil {
		return err
	}
	return ability.OnSwitchIn(h, player, mon)
}

func (h *host) checkTarget(t model.Target) error {
	if h.closed {
		return effect.ErrHostClosed
	}
	if t.IsField() {
		if t.Player < 0 || t.Player > 1 {
			return fmt.Errorf("%w: %s", effect.ErrInvalidTarget, t)
		}
		return nil
	}
	if !h.b.ValidMon(t.Player, t.Mon) {
		return fmt.Errorf("%w: %s", effect.ErrInvalidTarget, t)
	}
	return nil
}

func (h *host) AddEffect(target model.Target, name string, data []byte) error {
	if err := h.checkTarget(target); err != nil {
		return err
	}
	_, err := h.pipe.Attach(h, target, name, data, h.rng)
	return err
}

func (h *host) RemoveEffect(target model.Target, id uint64) error {
	if err := h.checkTarget(target); err != nil {
		return err
	}
	return h.pipe.Detach(h, target, id, h.rng)
}

func (h *host) EditEffect(target model.Target, id uint64, data []byte) error {
	if err := h.checkTarget(target); err != nil {
		return err
	}
	if !h.b.Effects.Update(target, id, data) {
		return fmt.Errorf("%w: %s #%d", effect.ErrNoSuchInstance, target, id)
	}
	return nil
}

func (h *host) Effects(target model.Target) []model.EffectInstance {
	if h.closed {
		return nil
	}
	return h.b.Effects.List(target)
}

func (h *host) Damage() *combat.Resolver {
	return h.resolver
}

func (h *host) Logger() *slog.Logger {
	return h.log
}
