package engine

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/udisondev/monarena/internal/crypto"
	"github.com/udisondev/monarena/internal/game/combat"
	"github.com/udisondev/monarena/internal/model"
)

// Validator decides whether a slot move is legal for the current turn.
// claimed is the bench mon another slot of the same player already switches
// into this turn, or -1. Singles always pass slot 0 and -1.
type Validator interface {
	IsLegal(b *model.Battle, player, slot int, m model.SlotMove, claimed int) bool
}

// RandomnessSource produces the turn's random value. It must be derivable
// by anyone holding the public battle history.
type RandomnessSource interface {
	Draw(b *model.Battle) uint64
}

// SaltOracle derives randomness from keccak(battle id, turn, salt0, salt1)
// over the salts both players revealed this turn. Neither player can bias
// it alone because each salt is fixed by a commitment or revealed after one.
type SaltOracle struct{}

func (SaltOracle) Draw(b *model.Battle) uint64 {
	var turn [8]byte
	binary.LittleEndian.PutUint64(turn[:], b.Turn)

	var salts [2][32]byte
	for p := range 2 {
		if d := b.Pending[p]; d != nil {
			salts[p] = d.Salt
		}
	}
	return crypto.Uint64(crypto.Keccak256(b.ID[:], turn[:], salts[0][:], salts[1][:]))
}

// Ruleset bundles the collaborators a battle is played with. Rulesets are
// registered by name so a persisted battle can be rebuilt for replay.
type Ruleset struct {
	Name         string
	Validator    Validator
	Randomness   RandomnessSource
	TypeChart    combat.TypeChart
	FieldEffects []string // attached to both sides at start
}

var rulesets = struct {
	sync.RWMutex
	byName map[string]*Ruleset
}{byName: make(map[string]*Ruleset, 4)}

// RegisterRuleset registers r under r.Name. Missing collaborators fall back
// to DefaultValidator, SaltOracle and DefaultTypeChart.
func RegisterRuleset(r *Ruleset) {
	if r.Validator == nil {
		r.Validator = DefaultValidator{}
	}
	if r.Randomness == nil {
		r.Randomness = SaltOracle{}
	}
	if r.TypeChart == nil {
		r.TypeChart = combat.DefaultTypeChart()
	}
	rulesets.Lock()
	defer rulesets.Unlock()
	rulesets.byName[r.Name] = r
}

// LookupRuleset returns the ruleset registered under name.
func LookupRuleset(name string) (*Ruleset, error) {
	rulesets.RLock()
	defer rulesets.RUnlock()
	r, ok := rulesets.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRuleset, name)
	}
	return r, nil
}
