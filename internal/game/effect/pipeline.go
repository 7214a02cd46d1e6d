package effect

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/monarena/internal/model"
)

// Args carries step-specific hook arguments.
type Args struct {
	Action *Action
	Damage int32
	Stat   model.Stat
	Delta  int32
}

// Pipeline attaches, detaches and dispatches effect instances stored in one
// battle's EffectStore.
//
// Dispatch iterates a snapshot of the instance ids taken when the pass
// starts. An instance detached by an earlier hook in the same pass is
// skipped; an instance attached during the pass is first dispatched on the
// next pass. Results are written back by instance id, never by position, so
// hooks may freely add or remove effects on the target being dispatched.
type Pipeline struct {
	store *model.EffectStore
	log   *slog.Logger
}

// NewPipeline creates a pipeline over store.
func NewPipeline(store *model.EffectStore, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{store: store, log: log}
}

// Attach applies effect name to target.
// ShouldApply is consulted first; OnApply runs before the instance is stored
// and may veto storage by returning Remove. Returns the new instance id, or
// 0 if nothing was attached.
func (p *Pipeline) Attach(h Host, target model.Target, name string, data []byte, rng uint64) (uint64, error) {
	eff, err := Lookup(name)
	if err != nil {
		return 0, err
	}

	call := Call{Host: h, Target: target, RNG: rng, Data: data}
	if !eff.ShouldApply(call) {
		p.log.Debug("effect not applied", "effect", name, "target", target.String())
		return 0, nil
	}

	if eff.ShouldRunAtStep(StepOnApply) {
		res, err := eff.OnApply(call)
		if err != nil {
			return 0, fmt.Errorf("%s OnApply on %s: %w", name, target, err)
		}
		if res.Remove {
			return 0, nil
		}
		data = res.Data
	}

	id := p.store.Attach(target, name, data)
	p.log.Debug("effect attached", "effect", name, "target", target.String(), "id", id)
	return id, nil
}

// Detach removes instance id from target and runs its OnRemove hook.
func (p *Pipeline) Detach(h Host, target model.Target, id uint64, rng uint64) error {
	inst, ok := p.store.Remove(target, id)
	if !ok {
		return fmt.Errorf("%w: %s #%d", ErrNoSuchInstance, target, id)
	}
	p.log.Debug("effect detached", "effect", inst.Name, "target", target.String(), "id", id)

	eff, err := Lookup(inst.Name)
	if err != nil {
		return err
	}
	if !eff.ShouldRunAtStep(StepOnRemove) {
		return nil
	}
	if err := eff.OnRemove(Call{Host: h, Target: target, ID: id, RNG: rng, Data: inst.Data}); err != nil {
		return fmt.Errorf("%s OnRemove on %s: %w", inst.Name, target, err)
	}
	return nil
}

// Run dispatches step to every instance on target that declares interest,
// in attachment order.
func (p *Pipeline) Run(h Host, target model.Target, step Step, rng uint64, args Args) error {
	for _, id := range p.store.IDs(target) {
		inst, ok := p.store.Get(target, id)
		if !ok {
			continue
		}
		eff, err := Lookup(inst.Name)
		if err != nil {
			return err
		}
		if !eff.ShouldRunAtStep(step) {
			continue
		}

		call := Call{Host: h, Target: target, ID: id, RNG: rng, Data: inst.Data}
		res, err := invoke(eff, step, call, args)
		if err != nil {
			return fmt.Errorf("%s %s on %s: %w", inst.Name, step, target, err)
		}

		if res.Remove {
			// The hook may already have detached itself through the host.
			if p.store.Index(target, id) < 0 {
				continue
			}
			if err := p.Detach(h, target, id, rng); err != nil {
				return err
			}
			continue
		}
		p.store.Update(target, id, res.Data)
	}
	return nil
}

func invoke(eff Effect, step Step, c Call, args Args) (Result, error) {
	switch step {
	case StepRoundStart:
		return eff.OnRoundStart(c)
	case StepRoundEnd:
		return eff.OnRoundEnd(c)
	case StepOnMonSwitchIn:
		return eff.OnMonSwitchIn(c)
	case StepOnMonSwitchOut:
		return eff.OnMonSwitchOut(c)
	case StepAfterDamage:
		return eff.OnAfterDamage(c, args.Damage)
	case StepBeforeMove:
		if args.Action == nil {
			return Result{}, fmt.Errorf("%s dispatched without action", step)
		}
		return eff.OnBeforeMove(c, *args.Action)
	case StepAfterMove:
		if args.Action == nil {
			return Result{}, fmt.Errorf("%s dispatched without action", step)
		}
		return eff.OnAfterMove(c, *args.Action)
	case StepOnUpdateMonState:
		return eff.OnUpdateMonState(c, args.Stat, args.Delta)
	default:
		return Result{}, fmt.Errorf("step %s cannot be dispatched with Run", step)
	}
}
