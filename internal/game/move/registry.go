package move

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrUnknownMove    = errors.New("unknown move")
	ErrUnknownAbility = errors.New("unknown ability")
)

// Registries map names to shared logic. Populated by init() functions of
// content packages.
var (
	movesMu   sync.RWMutex
	moves     = make(map[string]Move, 16)
	abilityMu sync.RWMutex
	abilities = make(map[string]Ability, 4)
)

// Register registers move logic under its Name.
func Register(m Move) {
	movesMu.Lock()
	defer movesMu.Unlock()
	moves[m.Name()] = m
}

// Lookup returns the move registered under name.
func Lookup(name string) (Move, error) {
	movesMu.RLock()
	defer movesMu.RUnlock()
	m, ok := moves[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMove, name)
	}
	return m, nil
}

// RegisterAbility registers ability logic under its Name.
func RegisterAbility(a Ability) {
	abilityMu.Lock()
	defer abilityMu.Unlock()
	abilities[a.Name()] = a
}

// LookupAbility returns the ability registered under name.
func LookupAbility(name string) (Ability, error) {
	abilityMu.RLock()
	defer abilityMu.RUnlock()
	a, ok := abilities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAbility, name)
	}
	return a, nil
}
