package combat

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/condition"
	"github.com/cory-johannsen/duel/internal/game/effect"
	"github.com/cory-johannsen/duel/internal/game/rules"
)

// RatingKind names one of the four combat ratings.
type RatingKind string

const (
	RatingAT RatingKind = "AT" // melee attack
	RatingPA RatingKind = "PA" // parry
	RatingFK RatingKind = "FK" // ranged attack
	RatingAW RatingKind = "AW" // evasion
)

// stats lists the ledger stats that shift a rating of this kind.
func (k RatingKind) stats() []effect.Stat {
	switch k {
	case RatingAT:
		return []effect.Stat{effect.StatAttack}
	case RatingFK:
		return []effect.Stat{effect.StatAttack, effect.StatRanged}
	case RatingPA:
		return []effect.Stat{effect.StatParry, effect.StatDefense}
	case RatingAW:
		return []effect.Stat{effect.StatEvasion, effect.StatDefense}
	}
	return nil
}

// Part is one labelled summand of a rating.
type Part struct {
	Label string
	Value int
}

// Rating is a computed rating with its derivation.
type Rating struct {
	Kind  RatingKind
	Value int
	Parts []Part
}

// String renders the rating as "AT 12 = skill 10 + courage +1 + ...".
func (r Rating) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d =", r.Kind, r.Value)
	for i, p := range r.Parts {
		if i == 0 {
			fmt.Fprintf(&b, " %s %d", p.Label, p.Value)
			continue
		}
		fmt.Fprintf(&b, " %s %+d", p.Label, p.Value)
	}
	return b.String()
}

func (r *Rating) add(label string, v int) {
	r.Parts = append(r.Parts, Part{Label: label, Value: v})
	r.Value += v
}

// RatingInput describes one rating computation.
type RatingInput struct {
	Kind      RatingKind
	Combatant *character.Combatant
	// Weapon is the weapon or shield used; nil for evasion.
	Weapon *character.Weapon
	// OpposingReach is the reach of the opponent's weapon; 0 when not a melee duel.
	OpposingReach character.Reach
	// Situational is the summed situational delta for this rating.
	Situational int
	// Extra holds additional labelled adjustments, e.g. targeting or repeated defenses.
	Extra []Part
}

// Calculator computes ratings from rule data.
type Calculator struct {
	rules      *rules.Rules
	conditions *condition.Registry
}

// NewCalculator returns a Calculator.
//
// Precondition: r and conds must be non-nil.
func NewCalculator(r *rules.Rules, conds *condition.Registry) *Calculator {
	return &Calculator{rules: r, conditions: conds}
}

// Compute returns base skill + best governing attribute bonus + weapon
// modifier + reach differential + situational and extra deltas + ledger
// bonuses − min(5, condition levels + ledger penalties). Absent data defaults.
//
// Precondition: in.Combatant must be non-nil.
// Postcondition: Value equals the sum of Parts.
func (c *Calculator) Compute(in RatingInput) Rating {
	cb := in.Combatant
	r := Rating{Kind: in.Kind}

	var skill string
	var attrs []character.Attribute
	switch in.Kind {
	case RatingAW:
		skill, attrs = c.rules.EvasionSkill, c.rules.Evasion
	case RatingPA:
		if in.Weapon != nil {
			skill = in.Weapon.Technique
			attrs = c.rules.ParryAttributes(skill)
		}
	case RatingFK:
		attrs = c.rules.AttackAttributes(character.Ranged)
		if in.Weapon != nil {
			skill = in.Weapon.Technique
		}
	default:
		attrs = c.rules.AttackAttributes(character.Melee)
		if in.Weapon != nil {
			skill = in.Weapon.Technique
		}
	}
	r.add(fmt.Sprintf("skill(%s)", skillLabel(skill)), cb.Skill(skill))

	if bonus, attr := BestBonus(cb.Attributes, attrs); attr != "" {
		r.add(string(attr), bonus)
	}

	if in.Weapon != nil {
		switch in.Kind {
		case RatingAT, RatingFK:
			if in.Weapon.AttackMod != 0 {
				r.add("weapon", in.Weapon.AttackMod)
			}
		case RatingPA:
			if in.Weapon.ParryMod != 0 {
				r.add("weapon", in.Weapon.ParryMod)
			}
		}
		if in.OpposingReach > 0 && (in.Kind == RatingAT || in.Kind == RatingPA) {
			if diff := int(in.OpposingReach) - int(in.Weapon.EffectiveReach()); diff > 0 {
				r.add("reach", -c.rules.ReachPenalty*diff)
			}
		}
	}

	if in.Situational != 0 {
		r.add("situational", in.Situational)
	}
	for _, p := range in.Extra {
		r.add(p.Label, p.Value)
	}

	var bonus, ledgerPenalty int
	for _, stat := range in.Kind.stats() {
		b, p := cb.Effects.Delta(stat)
		bonus += b
		ledgerPenalty += p
	}
	if bonus != 0 {
		r.add("effects", bonus)
	}
	levels := c.conditions.Levels(cb.ConditionLevels(), cb.Effects.ConditionLevels())
	if pen := ConditionPenalty(c.conditions.RatingLevels(levels), ledgerPenalty); pen > 0 {
		r.add("conditions", -pen)
	}
	return r
}

func skillLabel(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
