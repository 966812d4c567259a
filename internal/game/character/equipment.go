package character

import (
	"fmt"
	"strings"
)

// Reach is a melee weapon's reach class. Higher values reach further.
type Reach int

const (
	ReachShort  Reach = 1
	ReachMedium Reach = 2
	ReachLong   Reach = 3
)

// ParseReach maps a reach name to its class. Unknown or empty names yield
// ReachMedium, the default for weapons without a stated reach.
func ParseReach(s string) Reach {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short", "kurz":
		return ReachShort
	case "long", "lang":
		return ReachLong
	default:
		return ReachMedium
	}
}

// String returns the reach name.
func (r Reach) String() string {
	switch r {
	case ReachShort:
		return "short"
	case ReachLong:
		return "long"
	default:
		return "medium"
	}
}

// MarshalText renders the reach by name.
func (r Reach) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses a reach name.
func (r *Reach) UnmarshalText(b []byte) error {
	*r = ParseReach(string(b))
	return nil
}

// WeaponClass distinguishes melee from ranged weapons.
type WeaponClass string

const (
	Melee  WeaponClass = "melee"
	Ranged WeaponClass = "ranged"
)

// ParseWeaponClass validates a class name.
func ParseWeaponClass(s string) (WeaponClass, error) {
	switch WeaponClass(strings.ToLower(strings.TrimSpace(s))) {
	case Melee, "":
		return Melee, nil
	case Ranged:
		return Ranged, nil
	}
	return "", fmt.Errorf("unknown weapon class %q", s)
}

// WeaponState records fumble damage to a weapon.
type WeaponState string

const (
	WeaponIntact  WeaponState = ""
	WeaponDamaged WeaponState = "damaged"
	WeaponBroken  WeaponState = "broken"
	WeaponDropped WeaponState = "dropped"
)

// ShieldTechnique is the technique key marking a shield or parry weapon.
const ShieldTechnique = "shields"

// Weapon is an equipped weapon or shield. Immutable during resolution except
// for State, which fumble tables may change.
type Weapon struct {
	Name      string      `yaml:"name" json:"name"`
	Damage    string      `yaml:"damage" json:"damage"`
	Reach     Reach       `yaml:"reach,omitempty" json:"reach,omitempty"`
	Technique string      `yaml:"technique" json:"technique"`
	Class     WeaponClass `yaml:"class,omitempty" json:"class,omitempty"`
	AttackMod int         `yaml:"attack_mod,omitempty" json:"attack_mod,omitempty"`
	ParryMod  int         `yaml:"parry_mod,omitempty" json:"parry_mod,omitempty"`
	State     WeaponState `yaml:"state,omitempty" json:"state,omitempty"`
}

// IsShield reports whether the weapon parries with the shield technique.
func (w Weapon) IsShield() bool {
	return w.Technique == ShieldTechnique
}

// Usable reports whether the weapon can be used in an exchange.
func (w Weapon) Usable() bool {
	return w.State != WeaponBroken && w.State != WeaponDropped
}

// EffectiveReach returns the reach, defaulting an unset value to medium.
func (w Weapon) EffectiveReach() Reach {
	if w.Reach < ReachShort || w.Reach > ReachLong {
		return ReachMedium
	}
	return w.Reach
}

// Armor is one worn piece.
type Armor struct {
	Name        string `yaml:"name" json:"name"`
	Protection  int    `yaml:"protection" json:"protection"`
	Encumbrance int    `yaml:"encumbrance,omitempty" json:"encumbrance,omitempty"`
}
