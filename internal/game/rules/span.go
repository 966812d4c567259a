package rules

import "fmt"

// Span is an inclusive numeric range [Low, High] of die results.
type Span struct {
	Low  int `yaml:"low" validate:"min=1"`
	High int `yaml:"high" validate:"gtefield=Low"`
}

// Contains reports whether n lies in the span.
func (s Span) Contains(n int) bool {
	return n >= s.Low && n <= s.High
}

func (s Span) bounds() Span { return s }

// String renders the span as "low-high", or "n" when Low == High.
func (s Span) String() string {
	if s.Low == s.High {
		return fmt.Sprintf("%d", s.Low)
	}
	return fmt.Sprintf("%d-%d", s.Low, s.High)
}

type spanned interface {
	bounds() Span
}

// Lookup returns the first entry whose span contains n.
//
// Postcondition: ok is false iff no entry contains n.
func Lookup[T spanned](entries []T, n int) (entry T, ok bool) {
	for _, e := range entries {
		if e.bounds().Contains(n) {
			return e, true
		}
	}
	var zero T
	return zero, false
}

// checkPartition verifies that entries cover [lo, hi] exactly once.
func checkPartition[T spanned](entries []T, lo, hi int) error {
	seen := make([]int, hi-lo+1)
	for _, e := range entries {
		s := e.bounds()
		if s.Low < lo || s.High > hi || s.Low > s.High {
			return fmt.Errorf("range %s outside [%d, %d]", s, lo, hi)
		}
		for n := s.Low; n <= s.High; n++ {
			seen[n-lo]++
		}
	}
	for i, c := range seen {
		switch {
		case c == 0:
			return fmt.Errorf("value %d not covered", i+lo)
		case c > 1:
			return fmt.Errorf("value %d covered %d times", i+lo, c)
		}
	}
	return nil
}
