package character

import "strings"

// BodyPlan selects the hit-zone layout of a creature.
type BodyPlan string

const (
	Humanoid  BodyPlan = "humanoid"
	Quadruped BodyPlan = "quadruped"
	Hexapod   BodyPlan = "hexapod" // six limbs with a tail
	Tentacled BodyPlan = "tentacled"
	NoPlan    BodyPlan = "none"
)

// Normalize returns p, or Humanoid when p is empty.
func (p BodyPlan) Normalize() BodyPlan {
	if p == "" {
		return Humanoid
	}
	return BodyPlan(strings.ToLower(string(p)))
}

// Size is a creature's size class.
type Size string

const (
	Tiny   Size = "tiny"
	Small  Size = "small"
	Medium Size = "medium"
	Large  Size = "large"
	Huge   Size = "huge"
)

// Normalize returns s, or Medium when s is empty.
func (s Size) Normalize() Size {
	if s == "" {
		return Medium
	}
	return Size(strings.ToLower(string(s)))
}

// ZoneStatus is the health state of a hit zone.
type ZoneStatus string

const (
	ZoneNormal   ZoneStatus = "normal"
	ZoneImpaired ZoneStatus = "impaired"
	ZoneCritical ZoneStatus = "critical"
	ZoneDisabled ZoneStatus = "disabled"
)

// ZoneState is one hit zone's life pool and injury record.
//
// Invariant: Life >= 0; SevereInjuries never decreases.
type ZoneState struct {
	Life           int        `yaml:"life" json:"life"`
	MaxLife        int        `yaml:"max_life" json:"max_life"`
	SevereInjuries int        `yaml:"severe_injuries,omitempty" json:"severe_injuries,omitempty"`
	Status         ZoneStatus `yaml:"status,omitempty" json:"status,omitempty"`
}

// TakeDamage reduces the pool by n, clamps at 0, and recomputes Status.
//
// Precondition: n >= 0.
// Postcondition: z.Life >= 0; a disabled zone stays disabled.
func (z *ZoneState) TakeDamage(n int) {
	z.Life -= n
	if z.Life < 0 {
		z.Life = 0
	}
	z.refresh()
}

// Disable marks the zone disabled regardless of its pool.
func (z *ZoneState) Disable() {
	z.Status = ZoneDisabled
}

// RecordSevere increments the severe-injury counter.
func (z *ZoneState) RecordSevere() {
	z.SevereInjuries++
}

func (z *ZoneState) refresh() {
	if z.Status == ZoneDisabled {
		return
	}
	switch {
	case z.Life == 0:
		z.Status = ZoneDisabled
	case z.MaxLife > 0 && z.Life*4 <= z.MaxLife:
		z.Status = ZoneCritical
	case z.MaxLife > 0 && z.Life*2 <= z.MaxLife:
		z.Status = ZoneImpaired
	default:
		z.Status = ZoneNormal
	}
}
