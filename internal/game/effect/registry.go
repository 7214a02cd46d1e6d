package effect

import (
	"fmt"
	"sync"
)

// registry maps effect name → shared effect logic.
// Populated by init() functions of content packages.
var registry = struct {
	sync.RWMutex
	effects map[string]Effect
}{effects: make(map[string]Effect, 16)}

// Register registers effect logic under its Name.
// A later registration with the same name replaces the earlier one.
func Register(e Effect) {
	registry.Lock()
	defer registry.Unlock()
	registry.effects[e.Name()] = e
}

// Lookup returns the effect registered under name.
func Lookup(name string) (Effect, error) {
	registry.RLock()
	defer registry.RUnlock()
	e, ok := registry.effects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEffect, name)
	}
	return e, nil
}
