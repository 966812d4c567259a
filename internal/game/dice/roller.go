package dice

import (
	"cmp"
	"fmt"
	"slices"
)

// Roll evaluates expr against src.
//
// Precondition: src must be non-nil.
// Postcondition: len(Dice) is expr.KeepHighest when set, otherwise expr.Count.
// Returns an error for an expression Parse would reject.
func Roll(expr Expression, src Source) (RollResult, error) {
	if expr.Count < 1 || expr.Sides < 2 {
		return RollResult{}, fmt.Errorf("dice: cannot roll %dd%d", expr.Count, expr.Sides)
	}
	if expr.KeepHighest > expr.Count {
		return RollResult{}, fmt.Errorf("dice: cannot keep %d of %d dice", expr.KeepHighest, expr.Count)
	}
	faces := make([]int, expr.Count)
	for i := range faces {
		faces[i] = Die(src, expr.Sides)
	}
	res := RollResult{Expression: expr.Raw, Dice: faces, Modifier: expr.Modifier}
	if expr.KeepHighest > 0 {
		slices.SortStableFunc(faces, func(a, b int) int { return cmp.Compare(b, a) })
		res.Dice, res.Dropped = faces[:expr.KeepHighest], faces[expr.KeepHighest:]
	}
	return res, nil
}

// RollExpr parses and rolls expr in one step.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src)
}

// MustParse parses expr and panics on error; for notation fixed at compile time.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic(fmt.Sprintf("dice: MustParse(%q): %v", expr, err))
	}
	return e
}

// Min returns the lowest total expr can produce.
func (e Expression) Min() int {
	return e.kept() + e.Modifier
}

// Max returns the highest total expr can produce.
func (e Expression) Max() int {
	return e.kept()*e.Sides + e.Modifier
}

func (e Expression) kept() int {
	if e.KeepHighest > 0 {
		return e.KeepHighest
	}
	return e.Count
}
