package model

import "fmt"

// Stat indexes a mon's stats and the matching MonState deltas.
type Stat uint8

const (
	StatHP Stat = iota
	StatStamina
	StatSpeed
	StatAttack
	StatDefense
	StatSpecialAttack
	StatSpecialDefense

	NumStats = 7
)

// BoostableStats are the five stats the boost aggregator manages.
var BoostableStats = [5]Stat{StatSpeed, StatAttack, StatDefense, StatSpecialAttack, StatSpecialDefense}

// IsBoostable reports whether s is one of BoostableStats.
func (s Stat) IsBoostable() bool {
	return s >= StatSpeed && s <= StatSpecialDefense
}

func (s Stat) String() string {
	switch s {
	case StatHP:
		return "hp"
	case StatStamina:
		return "stamina"
	case StatSpeed:
		return "speed"
	case StatAttack:
		return "attack"
	case StatDefense:
		return "defense"
	case StatSpecialAttack:
		return "specialAttack"
	case StatSpecialDefense:
		return "specialDefense"
	default:
		return fmt.Sprintf("stat(%d)", uint8(s))
	}
}

// MonStats are the immutable base stats of a mon, looked up from roster data.
type MonStats struct {
	HP             uint32 `json:"hp" yaml:"hp"`
	Stamina        uint32 `json:"stamina" yaml:"stamina"`
	Speed          uint32 `json:"speed" yaml:"speed"`
	Attack         uint32 `json:"attack" yaml:"attack"`
	Defense        uint32 `json:"defense" yaml:"defense"`
	SpecialAttack  uint32 `json:"special_attack" yaml:"special_attack"`
	SpecialDefense uint32 `json:"special_defense" yaml:"special_defense"`
}

// Get returns the base value of stat.
func (s MonStats) Get(stat Stat) uint32 {
	switch stat {
	case StatHP:
		return s.HP
	case StatStamina:
		return s.Stamina
	case StatSpeed:
		return s.Speed
	case StatAttack:
		return s.Attack
	case StatDefense:
		return s.Defense
	case StatSpecialAttack:
		return s.SpecialAttack
	case StatSpecialDefense:
		return s.SpecialDefense
	default:
		return 0
	}
}

// Type is an elemental type used by the type chart.
type Type uint8

const (
	TypeNone Type = iota
	TypeYin
	TypeYang
	TypeEarth
	TypeLiquid
	TypeFire
	TypeMetal
	TypeIce
	TypeNature
	TypeLightning
	TypeMythic
	TypeAir
	TypeMath
	TypeCyber
	TypeWild
	TypeCosmic

	NumTypes = 16
)

var typeNames = [NumTypes]string{
	"none", "yin", "yang", "earth", "liquid", "fire", "metal", "ice",
	"nature", "lightning", "mythic", "air", "math", "cyber", "wild", "cosmic",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// MarshalText encodes the type by name.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name.
func (t *Type) UnmarshalText(text []byte) error {
	v, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseType returns the type with the given name.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	return TypeNone, fmt.Errorf("unknown type %q", name)
}

// MoveClass selects which stat pair a damaging move uses.
type MoveClass uint8

const (
	ClassPhysical MoveClass = iota // Attack vs Defense
	ClassSpecial                   // SpecialAttack vs SpecialDefense
	ClassSelf                      // targets the user, no damage roll
	ClassOther                     // status/utility
)
