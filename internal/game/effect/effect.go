// Package effect implements the effect hook pipeline: pluggable status,
// field and ability logic attached to battle targets and dispatched at fixed
// lifecycle steps.
package effect

import "github.com/udisondev/monarena/internal/model"

// Step is a lifecycle point at which attached effects are dispatched.
type Step uint8

const (
	StepOnApply Step = iota
	StepRoundStart
	StepRoundEnd
	StepOnRemove
	StepOnMonSwitchIn
	StepOnMonSwitchOut
	StepAfterDamage
	StepBeforeMove
	StepAfterMove
	StepOnUpdateMonState
)

var stepNames = [...]string{
	"OnApply", "RoundStart", "RoundEnd", "OnRemove", "OnMonSwitchIn",
	"OnMonSwitchOut", "AfterDamage", "BeforeMove", "AfterMove", "OnUpdateMonState",
}

func (s Step) String() string {
	if int(s) < len(stepNames) {
		return stepNames[s]
	}
	return "unknown"
}

// Call is the context handed to every hook.
// Data is the instance's private blob; hooks must treat it as untrusted and
// decode it defensively.
type Call struct {
	Host   Host
	Target model.Target
	ID     uint64 // instance id, 0 during OnApply
	RNG    uint64
	Data   []byte
}

// Result is what a hook returns: the new data blob and whether the instance
// should be detached after this run.
type Result struct {
	Data   []byte
	Remove bool
}

// Keep returns a Result that stores data and keeps the instance.
func Keep(data []byte) Result {
	return Result{Data: data}
}

// Drop returns a Result that detaches the instance.
func Drop() Result {
	return Result{Remove: true}
}

// Action describes the move being executed for BeforeMove/AfterMove hooks.
type Action struct {
	Player int
	Slot   int
	Mon    int
	Move   model.SlotMove
}

// Effect is stateless behaviour shared by every battle. All per-attachment
// state lives in the instance data blob.
//
// Hooks are only called for steps where ShouldRunAtStep returns true. Embed
// Base to get no-op defaults for the hooks an effect does not care about.
type Effect interface {
	Name() string
	ShouldRunAtStep(step Step) bool

	// ShouldApply gates attachment; returning false silently skips it.
	ShouldApply(c Call) bool

	OnApply(c Call) (Result, error)
	OnRoundStart(c Call) (Result, error)
	OnRoundEnd(c Call) (Result, error)
	OnMonSwitchIn(c Call) (Result, error)
	OnMonSwitchOut(c Call) (Result, error)
	OnBeforeMove(c Call, act Action) (Result, error)
	OnAfterMove(c Call, act Action) (Result, error)
	OnAfterDamage(c Call, damage int32) (Result, error)

	// OnUpdateMonState fires after any delta of the target mon changes,
	// including changes made by other hooks. Hooks that change the same
	// stat they react to can recurse; the engine aborts the turn past
	// MaxHookDepth.
	OnUpdateMonState(c Call, stat model.Stat, delta int32) (Result, error)

	OnRemove(c Call) error
}

// Base provides no-op hooks. It does not implement Name or ShouldRunAtStep.
type Base struct{}

func (Base) ShouldApply(Call) bool                         { return true }
func (Base) OnApply(c Call) (Result, error)                { return Keep(c.Data), nil }
func (Base) OnRoundStart(c Call) (Result, error)           { return Keep(c.Data), nil }
func (Base) OnRoundEnd(c Call) (Result, error)             { return Keep(c.Data), nil }
func (Base) OnMonSwitchIn(c Call) (Result, error)          { return Keep(c.Data), nil }
func (Base) OnMonSwitchOut(c Call) (Result, error)         { return Keep(c.Data), nil }
func (Base) OnBeforeMove(c Call, _ Action) (Result, error) { return Keep(c.Data), nil }
func (Base) OnAfterMove(c Call, _ Action) (Result, error)  { return Keep(c.Data), nil }
func (Base) OnAfterDamage(c Call, _ int32) (Result, error) { return Keep(c.Data), nil }
func (Base) OnUpdateMonState(c Call, _ model.Stat, _ int32) (Result, error) {
	return Keep(c.Data), nil
}
func (Base) OnRemove(Call) error { return nil }
