// Package dice provides the randomness port, the notation parser, and the
// roll results the combat engine records in its transcripts.
package dice

import (
	"strconv"
	"strings"
)

// Source is the randomness provider behind every roll. Tests replay fixed
// faces through ScriptedSource; replays use NewSeededSource.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a value in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Die draws one face in [1, sides] from src.
//
// Precondition: sides > 0; src must be non-nil.
func Die(src Source, sides int) int {
	return 1 + src.Intn(sides)
}

// RollResult records one evaluated expression.
//
// Invariant: Total() == sum(Dice) + Modifier; Dropped never counts.
type RollResult struct {
	Expression string
	// Dice are the kept faces, highest first when a keep-highest rule applied.
	Dice []int
	// Dropped are the faces a keep-highest rule discarded.
	Dropped  []int
	Modifier int
}

// Total returns the kept faces plus the modifier.
func (r RollResult) Total() int {
	sum := r.Modifier
	for _, f := range r.Dice {
		sum += f
	}
	return sum
}

// String renders the roll in transcript form, e.g. "1d20=15" or
// "2d6+3=4+5+3=12". Dropped faces follow in brackets.
func (r RollResult) String() string {
	var b strings.Builder
	if r.Expression == "" {
		b.WriteString("roll")
	} else {
		b.WriteString(r.Expression)
	}
	b.WriteByte('=')
	terms := len(r.Dice)
	for i, f := range r.Dice {
		if i > 0 {
			b.WriteByte('+')
		}
		b.WriteString(strconv.Itoa(f))
	}
	if r.Modifier != 0 {
		terms++
		if r.Modifier > 0 {
			b.WriteByte('+')
		}
		b.WriteString(strconv.Itoa(r.Modifier))
	}
	if terms > 1 {
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(r.Total()))
	}
	if len(r.Dropped) > 0 {
		b.WriteString(" [dropped")
		for _, f := range r.Dropped {
			b.WriteByte(' ')
			b.WriteString(strconv.Itoa(f))
		}
		b.WriteByte(']')
	}
	return b.String()
}
