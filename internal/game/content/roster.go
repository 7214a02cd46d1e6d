package content

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/monarena/internal/model"
)

// Roster is a pool of mons teams are drawn from.
type Roster struct {
	Mons []model.Mon `yaml:"mons"`
}

// DefaultRoster returns the built-in roster.
func DefaultRoster() Roster {
	return Roster{Mons: []model.Mon{
		{
			Name:    "Embercub",
			Stats:   model.MonStats{HP: 120, Stamina: 5, Speed: 60, Attack: 55, Defense: 45, SpecialAttack: 70, SpecialDefense: 50},
			Type1:   model.TypeFire,
			Moves:   []string{Tackle, Scorch, Fortify, QuickStrike},
			Ability: Menace,
		},
		{
			Name:  "Rillfin",
			Stats: model.MonStats{HP: 130, Stamina: 5, Speed: 50, Attack: 45, Defense: 55, SpecialAttack: 65, SpecialDefense: 60},
			Type1: model.TypeLiquid,
			Moves: []string{Tackle, Torrent, Bulwark, FrostBreath},
		},
		{
			Name:    "Sparkit",
			Stats:   model.MonStats{HP: 100, Stamina: 6, Speed: 80, Attack: 50, Defense: 40, SpecialAttack: 60, SpecialDefense: 45},
			Type1:   model.TypeLightning,
			Moves:   []string{QuickStrike, Jolt, Hasten, Tackle},
			Ability: Radiance,
		},
		{
			Name:  "Mossback",
			Stats: model.MonStats{HP: 150, Stamina: 4, Speed: 30, Attack: 60, Defense: 70, SpecialAttack: 40, SpecialDefense: 65},
			Type1: model.TypeNature,
			Type2: model.TypeEarth,
			Moves: []string{Tackle, Bulwark, Fortify},
		},
		{
			Name:    "Glacielle",
			Stats:   model.MonStats{HP: 110, Stamina: 5, Speed: 65, Attack: 40, Defense: 50, SpecialAttack: 75, SpecialDefense: 55},
			Type1:   model.TypeIce,
			Moves:   []string{FrostBreath, Torrent, Hasten},
			Ability: Radiance,
		},
		{
			Name:    "Cragjaw",
			Stats:   model.MonStats{HP: 140, Stamina: 4, Speed: 40, Attack: 75, Defense: 60, SpecialAttack: 35, SpecialDefense: 45},
			Type1:   model.TypeEarth,
			Moves:   []string{Tackle, Fortify, QuickStrike},
			Ability: Menace,
		},
	}}
}

// LoadRoster reads a roster from a YAML file. A missing file yields the
// default roster.
func LoadRoster(path string) (Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultRoster(), nil
		}
		return Roster{}, fmt.Errorf("reading roster file %s: %w", path, err)
	}

	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Roster{}, fmt.Errorf("parsing roster file %s: %w", path, err)
	}
	if len(r.Mons) == 0 {
		return Roster{}, fmt.Errorf("roster file %s has no mons", path)
	}
	return r, nil
}

// Team picks mons from the roster by index, wrapping around.
func (r Roster) Team(start, size int) model.Team {
	t := model.Team{Mons: make([]model.Mon, 0, size)}
	for i := range size {
		t.Mons = append(t.Mons, r.Mons[(start+i)%len(r.Mons)])
	}
	return t
}
