package combat

import "github.com/udisondev/monarena/internal/model"

// Effectiveness values, in percent.
const (
	Immune         = 0
	NotEffective   = 50
	Neutral        = 100
	SuperEffective = 200
)

// TypeChart returns the damage multiplier (percent) of an attacking type
// against one defending type.
type TypeChart interface {
	Effectiveness(attack, defend model.Type) uint32
}

// Chart is a dense TypeChart. Zero-value entries are treated as Neutral
// unless explicitly marked immune with SetImmune.
type Chart struct {
	values [model.NumTypes][model.NumTypes]uint32
	set    [model.NumTypes][model.NumTypes]bool
}

// NewChart creates a chart where every matchup is neutral.
func NewChart() *Chart {
	return &Chart{}
}

// Set records the multiplier for attack against defend.
func (c *Chart) Set(attack, defend model.Type, percent uint32) *Chart {
	c.values[attack][defend] = percent
	c.set[attack][defend] = true
	return c
}

// Effectiveness implements TypeChart.
func (c *Chart) Effectiveness(attack, defend model.Type) uint32 {
	if int(attack) >= model.NumTypes || int(defend) >= model.NumTypes {
		return Neutral
	}
	if !c.set[attack][defend] {
		return Neutral
	}
	return c.values[attack][defend]
}

// DefaultTypeChart returns the standard chart.
func DefaultTypeChart() *Chart {
	c := NewChart()
	strong := func(a model.Type, ds ...model.Type) {
		for _, d := range ds {
			c.Set(a, d, SuperEffective)
		}
	}
	weak := func(a model.Type, ds ...model.Type) {
		for _, d := range ds {
			c.Set(a, d, NotEffective)
		}
	}

	strong(model.TypeYin, model.TypeYang, model.TypeMythic)
	weak(model.TypeYin, model.TypeYin, model.TypeCosmic)
	strong(model.TypeYang, model.TypeYin, model.TypeCyber)
	weak(model.TypeYang, model.TypeYang, model.TypeMythic)

	strong(model.TypeFire, model.TypeNature, model.TypeIce, model.TypeMetal)
	weak(model.TypeFire, model.TypeFire, model.TypeLiquid, model.TypeEarth)
	strong(model.TypeLiquid, model.TypeFire, model.TypeEarth)
	weak(model.TypeLiquid, model.TypeLiquid, model.TypeNature)
	strong(model.TypeNature, model.TypeLiquid, model.TypeEarth)
	weak(model.TypeNature, model.TypeFire, model.TypeAir, model.TypeMetal)
	strong(model.TypeIce, model.TypeNature, model.TypeAir, model.TypeEarth)
	weak(model.TypeIce, model.TypeFire, model.TypeMetal, model.TypeIce)

	strong(model.TypeLightning, model.TypeLiquid, model.TypeAir, model.TypeCyber)
	weak(model.TypeLightning, model.TypeNature, model.TypeLightning)
	c.Set(model.TypeLightning, model.TypeEarth, Immune)
	strong(model.TypeEarth, model.TypeLightning, model.TypeFire, model.TypeMetal)
	weak(model.TypeEarth, model.TypeNature)
	c.Set(model.TypeEarth, model.TypeAir, Immune)
	strong(model.TypeMetal, model.TypeIce, model.TypeCyber)
	weak(model.TypeMetal, model.TypeFire, model.TypeMetal)
	strong(model.TypeAir, model.TypeNature, model.TypeWild)
	weak(model.TypeAir, model.TypeLightning, model.TypeMetal)

	strong(model.TypeMythic, model.TypeWild, model.TypeMythic)
	weak(model.TypeMythic, model.TypeCosmic)
	strong(model.TypeMath, model.TypeCosmic, model.TypeCyber)
	weak(model.TypeMath, model.TypeWild)
	strong(model.TypeCyber, model.TypeMath, model.TypeMetal)
	weak(model.TypeCyber, model.TypeLightning)
	strong(model.TypeWild, model.TypeMath, model.TypeYang)
	weak(model.TypeWild, model.TypeMythic, model.TypeAir)
	strong(model.TypeCosmic, model.TypeMythic, model.TypeYin)
	weak(model.TypeCosmic, model.TypeMath)

	return c
}
