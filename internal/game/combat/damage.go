package combat

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/dice"
)

// fallbackDamage replaces weapon damage notation that does not parse.
const fallbackDamage = "1d6"

// Damage is the derivation of the damage one hit deals.
type Damage struct {
	Roll           dice.RollResult
	Attribute      character.Attribute
	AttributeBonus int
	CritBonus      int
	// Multiplier is the critical multiplier; 1 when none applies.
	Multiplier int
	Manual     int
	Total      int
	Armor      int
	Mitigated  int
	// Adjusted is the mitigated value after house-rule hooks.
	Adjusted int
	Injury   int
	// Dealt is the damage subtracted from life and the zone pool.
	Dealt int
}

// String renders the derivation for the transcript.
func (d Damage) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "TP %s", d.Roll)
	if d.AttributeBonus != 0 {
		fmt.Fprintf(&b, " + %s %d", d.Attribute, d.AttributeBonus)
	}
	if d.CritBonus != 0 {
		fmt.Fprintf(&b, " + critical %d", d.CritBonus)
	}
	if d.Multiplier > 1 {
		fmt.Fprintf(&b, " ×%d", d.Multiplier)
	}
	if d.Manual != 0 {
		fmt.Fprintf(&b, " + extra %d", d.Manual)
	}
	fmt.Fprintf(&b, " = %d, RS %d → SP %d", d.Total, d.Armor, d.Mitigated)
	if d.Adjusted != d.Mitigated {
		fmt.Fprintf(&b, " (house rules: %d)", d.Adjusted)
	}
	return b.String()
}

// damageTotal combines the raw roll, attribute bonus and critical additive
// bonus, applies the multiplier, and adds manual extra damage.
//
// Postcondition: Returns >= 0.
func damageTotal(roll, attrBonus, critBonus, multiplier, manual int) int {
	if multiplier < 1 {
		multiplier = 1
	}
	return max(0, (roll+attrBonus+critBonus)*multiplier+manual)
}

// rollDamage rolls the weapon's damage notation, falling back to 1d6 when the
// notation is missing or malformed. fellBack reports the fallback.
func rollDamage(r *dice.Roller, notation string) (res dice.RollResult, fellBack bool, err error) {
	expr, perr := dice.Parse(notation)
	if perr != nil {
		expr = dice.MustParse(fallbackDamage)
		fellBack = true
	}
	res, err = r.Roll(expr)
	return res, fellBack, err
}
