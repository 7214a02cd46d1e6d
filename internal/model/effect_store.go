package model

import (
	"bytes"
	"slices"
)

// EffectInstance is one attachment of registered effect logic.
// ID is unique within a battle and never reused, so dispatch loops can find
// an instance again after the list was mutated by a hook.
type EffectInstance struct {
	ID   uint64
	Name string
	Data []byte
}

// EffectStore keeps one insertion-ordered list of instances per target.
type EffectStore struct {
	lists  map[Target][]EffectInstance
	nextID uint64
}

// NewEffectStore creates an empty store.
func NewEffectStore() EffectStore {
	return EffectStore{lists: make(map[Target][]EffectInstance, 8)}
}

// Attach appends an instance to target's list and returns its id.
func (s *EffectStore) Attach(target Target, name string, data []byte) uint64 {
	if s.lists == nil {
		s.lists = make(map[Target][]EffectInstance, 8)
	}
	s.nextID++
	s.lists[target] = append(s.lists[target], EffectInstance{
		ID:   s.nextID,
		Name: name,
		Data: bytes.Clone(data),
	})
	return s.nextID
}

// List returns a copy of target's instances in dispatch order.
func (s *EffectStore) List(target Target) []EffectInstance {
	list := s.lists[target]
	out := make([]EffectInstance, len(list))
	for i, inst := range list {
		out[i] = EffectInstance{ID: inst.ID, Name: inst.Name, Data: bytes.Clone(inst.Data)}
	}
	return out
}

// IDs returns the instance ids attached to target, in order.
func (s *EffectStore) IDs(target Target) []uint64 {
	list := s.lists[target]
	ids := make([]uint64, len(list))
	for i, inst := range list {
		ids[i] = inst.ID
	}
	return ids
}

// Get returns the instance with id on target.
func (s *EffectStore) Get(target Target, id uint64) (EffectInstance, bool) {
	i := s.Index(target, id)
	if i < 0 {
		return EffectInstance{}, false
	}
	inst := s.lists[target][i]
	return EffectInstance{ID: inst.ID, Name: inst.Name, Data: bytes.Clone(inst.Data)}, true
}

// Index returns the position of id in target's list, or -1.
func (s *EffectStore) Index(target Target, id uint64) int {
	return slices.IndexFunc(s.lists[target], func(inst EffectInstance) bool {
		return inst.ID == id
	})
}

// Update replaces the data blob of instance id.
func (s *EffectStore) Update(target Target, id uint64, data []byte) bool {
	i := s.Index(target, id)
	if i < 0 {
		return false
	}
	s.lists[target][i].Data = bytes.Clone(data)
	return true
}

// Remove detaches instance id from target.
func (s *EffectStore) Remove(target Target, id uint64) (EffectInstance, bool) {
	i := s.Index(target, id)
	if i < 0 {
		return EffectInstance{}, false
	}
	inst := s.lists[target][i]
	s.lists[target] = slices.Delete(s.lists[target], i, i+1)
	if len(s.lists[target]) == 0 {
		delete(s.lists, target)
	}
	return inst, true
}

// Targets returns every target with at least one instance, sorted by
// (player, mon) so iteration is deterministic.
func (s *EffectStore) Targets() []Target {
	out := make([]Target, 0, len(s.lists))
	for t := range s.lists {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b Target) int {
		if a.Player != b.Player {
			return a.Player - b.Player
		}
		return a.Mon - b.Mon
	})
	return out
}

// Clone returns a deep copy of the store.
func (s *EffectStore) Clone() EffectStore {
	c := EffectStore{lists: make(map[Target][]EffectInstance, len(s.lists)), nextID: s.nextID}
	for t, list := range s.lists {
		cp := make([]EffectInstance, len(list))
		for i, inst := range list {
			cp[i] = EffectInstance{ID: inst.ID, Name: inst.Name, Data: bytes.Clone(inst.Data)}
		}
		c.lists[t] = cp
	}
	return c
}
