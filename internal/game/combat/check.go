package combat

import (
	"fmt"

	"github.com/cory-johannsen/duel/internal/game/dice"
)

// Outcome is the result of a confirmed d20 check.
type Outcome int

const (
	Miss Outcome = iota
	Hit
	Critical
	Fumble
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Critical:
		return "critical"
	case Fumble:
		return "fumble"
	default:
		return "miss"
	}
}

// CheckResult is one d20 check against a rating.
type CheckResult struct {
	Rating int
	Roll   int
	// Confirm is the confirmation roll after a natural 1 or 20; 0 otherwise.
	Confirm int
	Outcome Outcome
	// Lucky marks an unconfirmed 1: a normal success that still halves the
	// opposing defense.
	Lucky bool
}

// Success reports whether the check succeeded.
func (c CheckResult) Success() bool {
	return c.Outcome == Hit || c.Outcome == Critical
}

// String renders the check for the transcript.
func (c CheckResult) String() string {
	s := fmt.Sprintf("1d20=%d vs %d", c.Roll, c.Rating)
	if c.Confirm > 0 {
		s += fmt.Sprintf(", confirmation 1d20=%d", c.Confirm)
	}
	s += " → " + c.Outcome.String()
	if c.Lucky {
		s += " (unconfirmed 1)"
	}
	return s
}

// Check rolls a d20 against rating. A 1 or 20 is confirmed by a second roll:
// a confirmed 1 (second roll <= rating) is a critical, an unconfirmed 1 a
// normal success; a confirmed 20 (second roll > rating) is a fumble, an
// unconfirmed 20 a normal failure. Otherwise success iff roll <= rating.
//
// Precondition: r must be non-nil.
// Postcondition: Returns a fully populated CheckResult.
func Check(r *dice.Roller, rating int) CheckResult {
	res := CheckResult{Rating: rating, Roll: r.D(20)}
	switch res.Roll {
	case 1:
		res.Confirm = r.D(20)
		if res.Confirm <= rating {
			res.Outcome = Critical
		} else {
			res.Outcome = Hit
			res.Lucky = true
		}
	case 20:
		res.Confirm = r.D(20)
		if res.Confirm > rating {
			res.Outcome = Fumble
		} else {
			res.Outcome = Miss
		}
	default:
		if res.Roll <= rating {
			res.Outcome = Hit
		}
	}
	return res
}
