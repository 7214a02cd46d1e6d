// Package move defines the capability sets of pluggable move and ability
// logic and the registries the engine resolves them from.
package move

import (
	"github.com/udisondev/monarena/internal/game/effect"
	"github.com/udisondev/monarena/internal/model"
)

// Priority tiers. Higher resolves first.
const (
	DefaultPriority = 3
	SwitchPriority  = 6
)

// Move is stateless move logic shared by every battle.
//
// IsValidTarget is consulted at reveal time, before any turn runs, so it
// reads the battle directly. Execute runs inside a turn and must only touch
// the battle through h.
type Move interface {
	Name() string
	Priority() int
	StaminaCost() int32
	Accuracy() uint32
	MoveType() model.Type
	MoveClass() model.MoveClass
	IsValidTarget(b *model.Battle, player, slot int, extraData uint64) bool
	Execute(h effect.Host, act effect.Action, rng uint64) error
}

// Base provides defaults for everything but Name and Execute.
type Base struct{}

func (Base) Priority() int              { return DefaultPriority }
func (Base) StaminaCost() int32         { return 0 }
func (Base) Accuracy() uint32           { return 100 }
func (Base) MoveType() model.Type       { return model.TypeNone }
func (Base) MoveClass() model.MoveClass { return model.ClassOther }

func (Base) IsValidTarget(*model.Battle, int, int, uint64) bool { return true }

// Ability is passive mon logic. It runs every time its mon enters the field.
type Ability interface {
	Name() string
	OnSwitchIn(h effect.Host, player, mon int) error
}

// OpposingSlot resolves the defender slot a move aims at. Singles always
// target slot 0; doubles take the slot from the move's extra data.
func OpposingSlot(format model.Format, extraData uint64) int {
	if format == model.Doubles && extraData == 1 {
		return 1
	}
	return 0
}
