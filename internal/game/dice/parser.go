package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Expression is a parsed dice expression.
//
// Invariant: Count >= 1 and Sides >= 2 after a successful Parse;
// 0 <= KeepHighest < Count.
type Expression struct {
	Raw         string
	Count       int
	Sides       int
	Modifier    int
	KeepHighest int
}

// notation matches "NdS", "NdSkhK" and either with a trailing signed modifier.
// Sheets written with the German "W" for Würfel use the same grammar.
var notation = regexp.MustCompile(`^(\d*)[dw](\d+)(?:kh(\d+))?([+-]\d+)?$`)

// Parse reads expressions such as "d20", "2d6+3", "4d8-2", "4d6kh3" and
// "1W6+4". Whitespace is ignored.
func Parse(expr string) (Expression, error) {
	raw := strings.TrimSpace(expr)
	if raw == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	compact := strings.ToLower(strings.Join(strings.Fields(raw), ""))
	m := notation.FindStringSubmatch(compact)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: %q is not NdS[khK][+-M] notation", raw)
	}

	e := Expression{Raw: raw, Count: 1}
	for i, dst := range []*int{&e.Count, &e.Sides, &e.KeepHighest, &e.Modifier} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: %q: %w", raw, err)
		}
		*dst = n
	}

	switch {
	case e.Count < 1:
		return Expression{}, fmt.Errorf("dice: %q rolls no dice", raw)
	case e.Sides < 2:
		return Expression{}, fmt.Errorf("dice: %q needs dice with at least 2 sides", raw)
	case m[3] != "" && (e.KeepHighest < 1 || e.KeepHighest >= e.Count):
		return Expression{}, fmt.Errorf("dice: %q keeps %d of %d dice", raw, e.KeepHighest, e.Count)
	}
	return e, nil
}

// Single returns the expression for one die with the given number of sides.
//
// Precondition: sides >= 2.
func Single(sides int) Expression {
	return Expression{Raw: "1d" + strconv.Itoa(sides), Count: 1, Sides: sides}
}
