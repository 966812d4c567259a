package combat

import (
	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/dice"
	"github.com/cory-johannsen/duel/internal/game/rules"
)

// InjuryOutcome is one severe injury.
type InjuryOutcome struct {
	Category rules.ZoneCategory
	Roll     int
	Injury   rules.Injury
	// Count is the zone's severe-injury count including this injury.
	Count     int
	Threshold int
	Extreme   bool
	// Fatal is set for extreme injuries to vital zones.
	Fatal bool
	// Disabled is set for extreme injuries to every other zone.
	Disabled    bool
	ExtraDamage int
	ExtraRoll   *dice.RollResult
}

// InjuryResolver rolls severe injuries and tracks escalation.
type InjuryResolver struct {
	rules  *rules.Rules
	roller *dice.Roller
}

// NewInjuryResolver returns an InjuryResolver.
//
// Precondition: r and roller must be non-nil.
func NewInjuryResolver(r *rules.Rules, roller *dice.Roller) *InjuryResolver {
	return &InjuryResolver{rules: r, roller: roller}
}

// Resolve rolls 1d6 on the injury table of category and records the injury on
// zone. Once the zone's count reaches the category's escalation threshold the
// extreme variant applies: fatal for head and torso, disabling otherwise.
// A normal injury rolls its extra damage; its other payload is returned for
// the caller to apply.
//
// The counter is incremented before the threshold comparison, so with a
// threshold of 1 the first injury to a zone is already extreme and the first
// head injury is fatal.
//
// Precondition: zone must be non-nil.
// Postcondition: zone.SevereInjuries is incremented by one; Extreme implies
// Count >= Threshold; Fatal implies Category.Vital().
func (r *InjuryResolver) Resolve(zone *character.ZoneState, category rules.ZoneCategory) (InjuryOutcome, error) {
	out := InjuryOutcome{Category: category, Roll: r.roller.D(6), Threshold: r.rules.EscalationThreshold(category)}
	table := r.rules.InjuryTable(category)
	entry, ok := rules.Lookup(table, out.Roll)
	if !ok {
		entry = table[0]
	}
	out.Injury = entry.Injury

	zone.RecordSevere()
	out.Count = zone.SevereInjuries
	if out.Count >= out.Threshold {
		out.Extreme = true
		if category.Vital() {
			out.Fatal = true
		} else {
			out.Disabled = true
			zone.Disable()
		}
		return out, nil
	}

	if entry.ExtraDamage != "" {
		roll, err := r.roller.RollExpr(entry.ExtraDamage)
		if err != nil {
			return InjuryOutcome{}, err
		}
		out.ExtraRoll = &roll
		out.ExtraDamage = max(0, roll.Total())
	}
	return out, nil
}
