package content

import (
	"github.com/udisondev/monarena/internal/game/effect"
	"github.com/udisondev/monarena/internal/game/move"
	"github.com/udisondev/monarena/internal/game/statboost"
	"github.com/udisondev/monarena/internal/model"
)

// SelfBoost raises the user's own stats. Using it again stacks.
type SelfBoost struct {
	move.Base
	name    string
	stamina int32
	boosts  []statboost.Boost
}

// NewSelfBoost creates a self-targeting boost move.
func NewSelfBoost(name string, stamina int32, boosts ...statboost.Boost) *SelfBoost {
	return &SelfBoost{name: name, stamina: stamina, boosts: boosts}
}

func (m *SelfBoost) Name() string               { return m.name }
func (m *SelfBoost) StaminaCost() int32         { return m.stamina }
func (m *SelfBoost) MoveClass() model.MoveClass { return model.ClassSelf }

func (m *SelfBoost) Execute(h effect.Host, act effect.Action, _ uint64) error {
	return statboost.Add(h, act.Player, act.Mon, m.name, 0, m.boosts...)
}
