// Package rules holds the immutable rule data the combat engine is
// parameterised with: critical and fumble tables, hit-zone layouts, injury
// tables, and the numeric constants of the rating calculation.
//
// A Rules value is built once, validated, and then only read. House rules
// replace it wholesale by loading a different directory.
package rules

import (
	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/effect"
)

// TableID names one two-level table set.
type TableID string

const (
	MeleeFumble    TableID = "melee_fumble"
	RangedFumble   TableID = "ranged_fumble"
	Critical       TableID = "critical"
	DefenderFumble TableID = "defender_fumble"
)

// Subject says whose record a table payload mutates.
type Subject string

const (
	SubjectSelf     Subject = "self"
	SubjectOpponent Subject = "opponent"
)

// ZoneCategory groups hit zones for injury tables and targeting penalties.
type ZoneCategory string

const (
	Head     ZoneCategory = "head"
	Torso    ZoneCategory = "torso"
	Arm      ZoneCategory = "arm"
	Leg      ZoneCategory = "leg"
	Tail     ZoneCategory = "tail"
	Wing     ZoneCategory = "wing"
	Tentacle ZoneCategory = "tentacle"
	Other    ZoneCategory = "other"
)

// Vital reports whether an extreme injury to this category kills.
func (c ZoneCategory) Vital() bool {
	return c == Head || c == Torso
}

// Limb reports whether the category is a limb for incapacitation purposes.
func (c ZoneCategory) Limb() bool {
	return c == Arm || c == Leg
}

// ConditionGrant applies a named condition at a level for a duration.
type ConditionGrant struct {
	Name   string `yaml:"name" validate:"required"`
	Level  int    `yaml:"level" validate:"min=1,max=5"`
	Rounds int    `yaml:"rounds" validate:"min=-1"`
}

// StatusGrant applies a named status for a duration.
type StatusGrant struct {
	Name   string `yaml:"name" validate:"required"`
	Rounds int    `yaml:"rounds" validate:"min=-1"`
}

// ModifierGrant applies rating deltas for a duration.
type ModifierGrant struct {
	Deltas map[effect.Stat]int `yaml:"deltas" validate:"required,min=1,dive,keys,oneof=at pa fk aw vw gs ini,endkeys"`
	Rounds int                 `yaml:"rounds" validate:"min=-1"`
}

// CheckSpec requires a follow-up ability check; FailStatus applies on failure.
type CheckSpec struct {
	Attribute  character.Attribute `yaml:"attribute" validate:"required,oneof=courage sagacity intuition charisma dexterity agility strength constitution"`
	Modifier   int                 `yaml:"modifier"`
	FailStatus StatusGrant         `yaml:"fail_status"`
}

// Payload is the effect of one table leaf. Any combination of fields may be set.
type Payload struct {
	Text   string `yaml:"text" validate:"required"`
	Reroll bool   `yaml:"reroll,omitempty"`

	DamageBonus      int                   `yaml:"damage_bonus,omitempty"`
	DamageMultiplier int                   `yaml:"damage_multiplier,omitempty" validate:"min=0"`
	SelfDamage       string                `yaml:"self_damage,omitempty" validate:"omitempty,dice"`
	Condition        *ConditionGrant       `yaml:"condition,omitempty"`
	Status           *StatusGrant          `yaml:"status,omitempty"`
	Check            *CheckSpec            `yaml:"check,omitempty"`
	Modifier         *ModifierGrant        `yaml:"modifier,omitempty"`
	Weapon           character.WeaponState `yaml:"weapon,omitempty" validate:"omitempty,oneof=damaged broken dropped"`
}

// CategoryEntry maps a 2d6 sum range to a category key.
type CategoryEntry struct {
	Span     `yaml:",inline"`
	Category string `yaml:"category" validate:"required"`
}

// DetailEntry maps a 1d20 range to a payload.
type DetailEntry struct {
	Span    `yaml:",inline"`
	Payload `yaml:",inline"`
}

// TableSet is one two-level critical or fumble table.
type TableSet struct {
	ID         TableID                  `yaml:"id" validate:"required"`
	Subject    Subject                  `yaml:"subject" validate:"required,oneof=self opponent"`
	Categories []CategoryEntry          `yaml:"categories" validate:"required,dive"`
	Details    map[string][]DetailEntry `yaml:"details" validate:"required,dive,required,dive"`
	// Fallback applies when a roll escapes every range or the reroll cap is hit.
	Fallback Payload `yaml:"fallback"`
}

// ZoneEntry maps a 1d20 range to a hit zone.
type ZoneEntry struct {
	Span     `yaml:",inline"`
	Key      string       `yaml:"key" validate:"required"`
	Category ZoneCategory `yaml:"category" validate:"required,oneof=head torso arm leg tail wing tentacle other"`
	// Sided zones are split left/right by roll parity.
	Sided bool `yaml:"sided,omitempty"`
}

// ZoneLayout is the hit-zone partition for a body plan at some sizes.
type ZoneLayout struct {
	Plan  character.BodyPlan `yaml:"plan" validate:"required"`
	Sizes []character.Size   `yaml:"sizes" validate:"required,min=1"`
	Zones []ZoneEntry        `yaml:"zones" validate:"required,dive"`
}

// Injury is one severe-injury table row.
type Injury struct {
	Name        string          `yaml:"name" validate:"required"`
	Text        string          `yaml:"text" validate:"required"`
	ExtraDamage string          `yaml:"extra_damage,omitempty" validate:"omitempty,dice"`
	Modifier    *ModifierGrant  `yaml:"modifier,omitempty"`
	Condition   *ConditionGrant `yaml:"condition,omitempty"`
	Status      *StatusGrant    `yaml:"status,omitempty"`
	// Extreme is the narrative of the escalated variant.
	Extreme string `yaml:"extreme" validate:"required"`
}

// InjuryEntry maps a 1d6 range to an injury.
type InjuryEntry struct {
	Span   `yaml:",inline"`
	Injury `yaml:",inline"`
}

// Technique lists the attributes governing a combat technique.
type Technique struct {
	Parry  []character.Attribute `yaml:"parry,omitempty"`
	Damage []character.Attribute `yaml:"damage,omitempty"`
}

// Rules is the complete, validated rule set.
type Rules struct {
	Tables  map[TableID]*TableSet          `yaml:"-" validate:"required,dive"`
	Layouts []ZoneLayout                   `yaml:"-" validate:"required,dive"`
	Injury  map[ZoneCategory][]InjuryEntry `yaml:"-" validate:"required,dive,required,dive"`

	Escalation        map[ZoneCategory]int                            `yaml:"escalation"`
	DefaultEscalation int                                             `yaml:"default_escalation" validate:"min=1"`
	TargetPenalties   map[ZoneCategory]int                            `yaml:"targeted_penalties"`
	ZoneShares        map[ZoneCategory]int                            `yaml:"zone_shares" validate:"dive,min=1,max=100"`
	Attack            map[character.WeaponClass][]character.Attribute `yaml:"attack_attributes" validate:"required"`
	EvasionSkill      string                                          `yaml:"evasion_skill" validate:"required"`
	Evasion           []character.Attribute                           `yaml:"evasion_attributes" validate:"required,min=1"`
	DefaultParry      []character.Attribute                           `yaml:"default_parry_attributes" validate:"required,min=1"`
	DefaultDamage     []character.Attribute                           `yaml:"default_damage_attributes" validate:"required,min=1"`
	Techniques        map[string]Technique                            `yaml:"techniques"`
	ReachPenalty      int                                             `yaml:"reach_penalty" validate:"min=0"`
	RepeatDefense     int                                             `yaml:"repeat_defense_penalty" validate:"min=0"`
	RerollLimit       int                                             `yaml:"reroll_limit" validate:"min=1"`
}

// Table returns the table set for id.
func (r *Rules) Table(id TableID) (*TableSet, bool) {
	t, ok := r.Tables[id]
	return t, ok
}

// EscalationThreshold returns the severe-injury count from which an injury to
// a zone of category c becomes extreme.
//
// Postcondition: Returns >= 1.
func (r *Rules) EscalationThreshold(c ZoneCategory) int {
	if v, ok := r.Escalation[c]; ok && v > 0 {
		return v
	}
	return max(1, r.DefaultEscalation)
}

// TargetPenalty returns the accuracy penalty for targeting a zone of category c.
func (r *Rules) TargetPenalty(c ZoneCategory) int {
	if v, ok := r.TargetPenalties[c]; ok {
		return v
	}
	return r.TargetPenalties[Other]
}

// ZonePool returns the default life pool of a zone of category c for a
// combatant with maxLife total life.
//
// Postcondition: Returns >= 1.
func (r *Rules) ZonePool(c ZoneCategory, maxLife int) int {
	share, ok := r.ZoneShares[c]
	if !ok {
		share = r.ZoneShares[Other]
	}
	return max(1, maxLife*share/100)
}

// ParryAttributes returns the attributes governing parry with technique.
func (r *Rules) ParryAttributes(technique string) []character.Attribute {
	if t, ok := r.Techniques[technique]; ok && len(t.Parry) > 0 {
		return t.Parry
	}
	return r.DefaultParry
}

// DamageAttributes returns the attributes granting a damage bonus with technique.
func (r *Rules) DamageAttributes(technique string) []character.Attribute {
	if t, ok := r.Techniques[technique]; ok && len(t.Damage) > 0 {
		return t.Damage
	}
	return r.DefaultDamage
}

// AttackAttributes returns the attributes governing attacks with class.
func (r *Rules) AttackAttributes(class character.WeaponClass) []character.Attribute {
	return r.Attack[class]
}

// Layout returns the zone layout for plan and size. It falls back to any
// layout of the plan, then to the humanoid layout for size, then to the first
// layout.
//
// Precondition: r has at least one layout.
func (r *Rules) Layout(plan character.BodyPlan, size character.Size) *ZoneLayout {
	plan, size = plan.Normalize(), size.Normalize()
	var planMatch, humanoid *ZoneLayout
	for i := range r.Layouts {
		l := &r.Layouts[i]
		if l.Plan != plan {
			if l.Plan == character.Humanoid && humanoid == nil && l.hasSize(size) {
				humanoid = l
			}
			continue
		}
		if l.hasSize(size) {
			return l
		}
		if planMatch == nil {
			planMatch = l
		}
	}
	switch {
	case planMatch != nil:
		return planMatch
	case humanoid != nil:
		return humanoid
	default:
		return &r.Layouts[0]
	}
}

func (l *ZoneLayout) hasSize(s character.Size) bool {
	for _, sz := range l.Sizes {
		if sz == s {
			return true
		}
	}
	return false
}

// InjuryTable returns the injury table for category c, or the generic table.
func (r *Rules) InjuryTable(c ZoneCategory) []InjuryEntry {
	if t, ok := r.Injury[c]; ok {
		return t
	}
	return r.Injury[Other]
}
