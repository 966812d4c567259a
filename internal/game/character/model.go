// Package character defines the combatant record consumed and rewritten by the
// combat engine.
package character

import (
	"maps"
	"slices"

	"github.com/cory-johannsen/duel/internal/game/effect"
)

// Attribute names one of the eight base attributes.
type Attribute string

const (
	Courage      Attribute = "courage"
	Sagacity     Attribute = "sagacity"
	Intuition    Attribute = "intuition"
	Charisma     Attribute = "charisma"
	Dexterity    Attribute = "dexterity"
	Agility      Attribute = "agility"
	Strength     Attribute = "strength"
	Constitution Attribute = "constitution"
)

// AllAttributes lists the base attributes in sheet order.
var AllAttributes = []Attribute{Courage, Sagacity, Intuition, Charisma, Dexterity, Agility, Strength, Constitution}

// DefaultAttribute is the bonus-neutral value used when an attribute is absent.
const DefaultAttribute = 8

// DefaultSkill is the technique value used when a technique is absent.
const DefaultSkill = 6

// Attributes holds the base attribute values. A zero field means "absent".
type Attributes struct {
	Courage      int `yaml:"courage,omitempty" json:"courage,omitempty"`
	Sagacity     int `yaml:"sagacity,omitempty" json:"sagacity,omitempty"`
	Intuition    int `yaml:"intuition,omitempty" json:"intuition,omitempty"`
	Charisma     int `yaml:"charisma,omitempty" json:"charisma,omitempty"`
	Dexterity    int `yaml:"dexterity,omitempty" json:"dexterity,omitempty"`
	Agility      int `yaml:"agility,omitempty" json:"agility,omitempty"`
	Strength     int `yaml:"strength,omitempty" json:"strength,omitempty"`
	Constitution int `yaml:"constitution,omitempty" json:"constitution,omitempty"`
}

// Get returns the value of a, or DefaultAttribute when it is absent or unknown.
//
// Postcondition: Returns > 0.
func (a Attributes) Get(attr Attribute) int {
	var v int
	switch attr {
	case Courage:
		v = a.Courage
	case Sagacity:
		v = a.Sagacity
	case Intuition:
		v = a.Intuition
	case Charisma:
		v = a.Charisma
	case Dexterity:
		v = a.Dexterity
	case Agility:
		v = a.Agility
	case Strength:
		v = a.Strength
	case Constitution:
		v = a.Constitution
	}
	if v <= 0 {
		return DefaultAttribute
	}
	return v
}

// Set assigns v to attr. Unknown attributes are ignored.
func (a *Attributes) Set(attr Attribute, v int) {
	switch attr {
	case Courage:
		a.Courage = v
	case Sagacity:
		a.Sagacity = v
	case Intuition:
		a.Intuition = v
	case Charisma:
		a.Charisma = v
	case Dexterity:
		a.Dexterity = v
	case Agility:
		a.Agility = v
	case Strength:
		a.Strength = v
	case Constitution:
		a.Constitution = v
	}
}

// Condition is a named condition carried on the record, level 0..5.
type Condition struct {
	Name  string `yaml:"name" json:"name"`
	Level int    `yaml:"level" json:"level"`
}

// Combatant is one participant's persistent combat state.
//
// ID and Version are set by the persistence layer; a zero Version indicates an
// unsaved record.
type Combatant struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Version int64  `yaml:"version,omitempty" json:"version,omitempty"`

	Attributes Attributes `yaml:"attributes" json:"attributes"`
	Life       int        `yaml:"life" json:"life"`
	MaxLife    int        `yaml:"max_life" json:"max_life"`
	BodyPlan   BodyPlan   `yaml:"body_plan,omitempty" json:"body_plan,omitempty"`
	Size       Size       `yaml:"size,omitempty" json:"size,omitempty"`

	Zones      map[string]*ZoneState `yaml:"zones,omitempty" json:"zones,omitempty"`
	Skills     map[string]int        `yaml:"skills,omitempty" json:"skills,omitempty"`
	Weapons    []Weapon              `yaml:"weapons,omitempty" json:"weapons,omitempty"`
	Armor      []Armor               `yaml:"armor,omitempty" json:"armor,omitempty"`
	Conditions []Condition           `yaml:"conditions,omitempty" json:"conditions,omitempty"`
	Effects    effect.Ledger         `yaml:"effects" json:"effects"`
}

// Skill returns the technique value for key, or DefaultSkill when absent.
func (c *Combatant) Skill(key string) int {
	if v, ok := c.Skills[key]; ok {
		return v
	}
	return DefaultSkill
}

// ArmorValue returns the summed protection of every worn piece.
//
// Postcondition: Returns >= 0.
func (c *Combatant) ArmorValue() int {
	total := 0
	for _, a := range c.Armor {
		if a.Protection > 0 {
			total += a.Protection
		}
	}
	return total
}

// ConditionLevels returns the record's condition levels keyed by name.
func (c *Combatant) ConditionLevels() map[string]int {
	out := make(map[string]int, len(c.Conditions))
	for _, cond := range c.Conditions {
		out[cond.Name] += cond.Level
	}
	return out
}

// EligibleWeapons returns the indices of usable attack weapons of class.
// Shields never qualify.
func (c *Combatant) EligibleWeapons(class WeaponClass) []int {
	var out []int
	for i, w := range c.Weapons {
		if w.Class == class && w.Usable() && !w.IsShield() {
			out = append(out, i)
		}
	}
	return out
}

// Shield returns the index of the first usable shield, or -1.
func (c *Combatant) Shield() int {
	for i, w := range c.Weapons {
		if w.IsShield() && w.Usable() {
			return i
		}
	}
	return -1
}

// Zone returns the state for key, creating it with pool life points when absent.
//
// Precondition: pool >= 0.
// Postcondition: Returns a non-nil ZoneState stored in c.Zones.
func (c *Combatant) Zone(key string, pool int) *ZoneState {
	if c.Zones == nil {
		c.Zones = make(map[string]*ZoneState)
	}
	z, ok := c.Zones[key]
	if !ok {
		z = &ZoneState{Life: pool, MaxLife: pool, Status: ZoneNormal}
		c.Zones[key] = z
	}
	return z
}

// TakeDamage reduces total life by n, clamping at 0.
//
// Precondition: n >= 0.
// Postcondition: c.Life >= 0.
func (c *Combatant) TakeDamage(n int) {
	c.Life -= n
	if c.Life < 0 {
		c.Life = 0
	}
}

// Clone returns a deep copy of c; the engine mutates clones and commits them once.
func (c *Combatant) Clone() *Combatant {
	cp := *c
	cp.Skills = maps.Clone(c.Skills)
	cp.Weapons = slices.Clone(c.Weapons)
	cp.Armor = slices.Clone(c.Armor)
	cp.Conditions = slices.Clone(c.Conditions)
	if c.Zones != nil {
		cp.Zones = make(map[string]*ZoneState, len(c.Zones))
		for k, z := range c.Zones {
			zc := *z
			cp.Zones[k] = &zc
		}
	}
	cp.Effects = *c.Effects.Clone()
	return &cp
}
