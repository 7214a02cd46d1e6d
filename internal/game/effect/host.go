package effect

import (
	"errors"
	"log/slog"

	"github.com/udisondev/monarena/internal/game/combat"
	"github.com/udisondev/monarena/internal/model"
)

// MaxHookDepth bounds nested OnUpdateMonState dispatch.
const MaxHookDepth = 16

var (
	ErrHostClosed     = errors.New("host used outside of its turn")
	ErrHookDepth      = errors.New("effect hook recursion too deep")
	ErrUnknownEffect  = errors.New("unknown effect")
	ErrNoSuchInstance = errors.New("effect instance not found")
	ErrInvalidTarget  = errors.New("invalid effect target")
)

// Host is the engine surface available to pluggable logic. A Host is bound
// to exactly one battle for the duration of one engine call; every method
// fails with ErrHostClosed once that call returns, so logic that keeps a Host
// around cannot reach into another battle or a later turn.
type Host interface {
	BattleID() model.BattleID
	Turn() uint64
	Format() model.Format

	// ActiveMon returns the mon index in player's slot, or -1.
	ActiveMon(player, slot int) int
	Mon(player, mon int) model.Mon
	MonState(player, mon int) model.MonState
	// Stat returns the effective value base+delta.
	Stat(player, mon int, stat model.Stat) uint32

	UpdateMonState(player, mon int, stat model.Stat, delta int32) error
	DealDamage(player, mon int, damage int32) error
	SetSkipTurn(player, mon int, skip bool) error
	SwitchActiveMon(player, slot, mon int) error

	AddEffect(target model.Target, name string, data []byte) error
	RemoveEffect(target model.Target, id uint64) error
	EditEffect(target model.Target, id uint64, data []byte) error
	Effects(target model.Target) []model.EffectInstance

	Damage() *combat.Resolver
	Logger() *slog.Logger
}
