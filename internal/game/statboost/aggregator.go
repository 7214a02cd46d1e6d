package statboost

import (
	"fmt"

	"github.com/udisondev/monarena/internal/game/effect"
	"github.com/udisondev/monarena/internal/model"
)

// Entry is one merged ledger line as seen by callers.
type Entry struct {
	Source uint64
	Boost  Boost
	Stacks uint32
}

// Add merges boosts from (caller, salt) into the mon's ledger and pushes the
// resulting stat changes. Adding the same boost again from the same source
// adds a stack. Nothing changes if any boost is invalid.
func Add(h effect.Host, player, mon int, caller string, salt uint64, boosts ...Boost) error {
	for _, b := range boosts {
		if err := b.validate(); err != nil {
			return err
		}
	}
	return update(h, player, mon, func(l *ledger) {
		key := SourceKey(player, mon, caller, salt)
		for _, b := range boosts {
			l.add(key, b)
		}
	})
}

// Remove drops every boost placed by (caller, salt).
func Remove(h effect.Host, player, mon int, caller string, salt uint64) error {
	key := SourceKey(player, mon, caller, salt)
	return update(h, player, mon, func(l *ledger) {
		l.drop(func(e entry) bool { return e.Key == key })
	})
}

// Clear drops every boost on the mon, permanent ones included.
func Clear(h effect.Host, player, mon int) error {
	return update(h, player, mon, func(l *ledger) {
		l.entries = l.entries[:0]
	})
}

// Recompute re-derives the mon's boosted stats without changing the ledger.
// With no intervening change it emits nothing.
func Recompute(h effect.Host, player, mon int) error {
	return update(h, player, mon, func(*ledger) {})
}

// List returns the mon's current ledger in application order.
func List(h effect.Host, player, mon int) ([]Entry, error) {
	inst, _ := find(h, model.MonTarget(player, mon))
	l, err := decodeLedger(inst.Data)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, Entry{
			Source: e.Key,
			Boost:  Boost{Stat: e.Stat, Percent: e.Percent, Op: e.Op, Permanent: e.Permanent},
			Stacks: e.Stacks,
		})
	}
	return out, nil
}

func find(h effect.Host, target model.Target) (model.EffectInstance, bool) {
	for _, inst := range h.Effects(target) {
		if inst.Name == EffectName {
			return inst, true
		}
	}
	return model.EffectInstance{}, false
}

// update loads the ledger, applies change, stores it and settles the stats.
// A ledger left without entries is detached afterwards.
func update(h effect.Host, player, mon int, change func(*ledger)) error {
	target := model.MonTarget(player, mon)
	inst, found := find(h, target)

	l, err := decodeLedger(inst.Data)
	if err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}
	change(l)

	switch {
	case found:
		err = h.EditEffect(target, inst.ID, l.encode())
	case len(l.entries) > 0:
		err = h.AddEffect(target, EffectName, l.encode())
	default:
		return nil
	}
	if err != nil {
		return err
	}
	if err := settle(h, player, mon); err != nil {
		return err
	}

	inst, found = find(h, target)
	if !found {
		return nil
	}
	if l, err = decodeLedger(inst.Data); err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}
	if len(l.entries) == 0 {
		return h.RemoveEffect(target, inst.ID)
	}
	return nil
}

// settle moves every boostable stat by the difference between what the
// ledger wants and what it has already applied. The applied amount is the
// clamped one, so a boost cut short by the zero floor is undone by exactly
// what it took. The ledger is reloaded before each stat and stored before
// the change is pushed, so hooks fired by the change see it current.
func settle(h effect.Host, player, mon int) error {
	target := model.MonTarget(player, mon)
	base := h.Mon(player, mon).Stats

	for i, stat := range model.BoostableStats {
		inst, found := find(h, target)
		if !found {
			return nil
		}
		l, err := decodeLedger(inst.Data)
		if err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}
		want := l.target(base, i) - l.applied[i]
		if want == 0 {
			continue
		}

		st := h.MonState(player, mon)
		old := st.Deltas[stat]
		applied := model.AddDelta(stat, base.Get(stat), old, want) - old
		if applied == 0 {
			continue
		}
		l.applied[i] += applied
		if err := h.EditEffect(target, inst.ID, l.encode()); err != nil {
			return err
		}
		if err := h.UpdateMonState(player, mon, stat, applied); err != nil {
			return err
		}
	}
	return nil
}
