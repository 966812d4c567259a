// Package combat resolves one attack exchange between an attacker and a
// defender: ratings, the confirmed d20 check, critical and fumble tables, hit
// zones, damage, injuries, and the resulting ledger entries.
package combat

import (
	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/condition"
)

// AttributeBonus returns +1 for every full 3 points above the neutral value 8.
//
// Postcondition: Returns >= 0.
func AttributeBonus(v int) int {
	if v <= character.DefaultAttribute {
		return 0
	}
	return (v - character.DefaultAttribute) / 3
}

// BestBonus returns the highest AttributeBonus among attrs, and the attribute
// providing it. An empty attrs yields (0, "").
func BestBonus(a character.Attributes, attrs []character.Attribute) (int, character.Attribute) {
	best, which := 0, character.Attribute("")
	for i, attr := range attrs {
		b := AttributeBonus(a.Get(attr))
		if i == 0 || b > best {
			best, which = b, attr
		}
	}
	return best, which
}

// WoundThreshold returns floor(ko / 2).
//
// Postcondition: Returns >= 0.
func WoundThreshold(ko int) int {
	if ko <= 0 {
		return 0
	}
	return ko / 2
}

// Mitigate subtracts armor from total damage, flooring at 0.
//
// Postcondition: Returns max(0, total - armor).
func Mitigate(total, armor int) int {
	return max(0, total-armor)
}

// ConditionPenalty sums condition levels and caps the result at 5.
//
// Postcondition: Returns min(5, sum of positive levels).
func ConditionPenalty(levels ...int) int {
	sum := 0
	for _, l := range levels {
		if l > 0 {
			sum += l
		}
	}
	return condition.Penalty(sum)
}

// halve returns floor(v / 2), rounding toward negative infinity.
func halve(v int) int {
	if v < 0 {
		return -((-v + 1) / 2)
	}
	return v / 2
}
