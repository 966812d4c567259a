package decision

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// kind tags which Provider method an Answer serves.
type kind int

const (
	kindOne kind = iota
	kindMany
	kindNumber
	kindConfirm
	kindCancel
)

func (k kind) String() string {
	switch k {
	case kindOne:
		return "choose-one"
	case kindMany:
		return "choose-many"
	case kindNumber:
		return "input-number"
	case kindConfirm:
		return "confirm"
	default:
		return "cancel"
	}
}

// Answer is one scripted reply.
type Answer struct {
	kind    kind
	index   int
	indices []int
	number  int
	yes     bool
}

// One answers a ChooseOne prompt with index i.
func One(i int) Answer { return Answer{kind: kindOne, index: i} }

// Many answers a ChooseMany prompt with the given indices.
func Many(indices ...int) Answer { return Answer{kind: kindMany, indices: indices} }

// Number answers an InputNumber prompt.
func Number(n int) Answer { return Answer{kind: kindNumber, number: n} }

// Yes answers a Confirm prompt affirmatively.
func Yes() Answer { return Answer{kind: kindConfirm, yes: true} }

// No answers a Confirm prompt negatively.
func No() Answer { return Answer{kind: kindConfirm} }

// Cancel aborts whichever prompt consumes it.
func Cancel() Answer { return Answer{kind: kindCancel} }

// Scripted replays a fixed sequence of answers. When the script runs out it
// either fails or, with WithDefaults, answers every remaining prompt with the
// first option, no selection, the offered default number, and "no".
type Scripted struct {
	mu       sync.Mutex
	answers  []Answer
	cursor   int
	defaults bool
	prompts  []string
}

// NewScripted returns a strict provider replaying answers in order.
func NewScripted(answers ...Answer) *Scripted {
	return &Scripted{answers: slices.Clone(answers)}
}

// Auto returns a provider that answers every prompt with its default.
func Auto() *Scripted {
	return NewScripted().WithDefaults()
}

// WithDefaults makes the provider answer with defaults once the script is exhausted.
func (s *Scripted) WithDefaults() *Scripted {
	s.defaults = true
	return s
}

// Prompts returns every prompt asked so far, in order.
func (s *Scripted) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.prompts)
}

// Remaining reports how many scripted answers are unused.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers) - s.cursor
}

// next pops the next answer for a prompt of kind want. ok is false when the
// script is exhausted and defaults are enabled.
func (s *Scripted) next(ctx context.Context, want kind, prompt string) (Answer, bool, error) {
	if err := ctx.Err(); err != nil {
		return Answer{}, false, fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if s.cursor >= len(s.answers) {
		if s.defaults {
			return Answer{}, false, nil
		}
		return Answer{}, false, fmt.Errorf("decision: script exhausted at %s prompt %q", want, prompt)
	}
	a := s.answers[s.cursor]
	s.cursor++
	if a.kind == kindCancel {
		return Answer{}, false, ErrCancelled
	}
	if a.kind != want {
		return Answer{}, false, fmt.Errorf("decision: scripted %s answer for %s prompt %q", a.kind, want, prompt)
	}
	return a, true, nil
}

// ChooseOne implements Provider.
func (s *Scripted) ChooseOne(ctx context.Context, prompt string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("decision: %q offered no options", prompt)
	}
	a, ok, err := s.next(ctx, kindOne, prompt)
	if err != nil || !ok {
		return 0, err
	}
	if a.index < 0 || a.index >= len(options) {
		return 0, fmt.Errorf("decision: scripted index %d out of range for %q", a.index, prompt)
	}
	return a.index, nil
}

// ChooseMany implements Provider.
func (s *Scripted) ChooseMany(ctx context.Context, prompt string, options []string) ([]int, error) {
	a, ok, err := s.next(ctx, kindMany, prompt)
	if err != nil || !ok {
		return nil, err
	}
	out := slices.Clone(a.indices)
	slices.Sort(out)
	out = slices.Compact(out)
	for _, i := range out {
		if i < 0 || i >= len(options) {
			return nil, fmt.Errorf("decision: scripted index %d out of range for %q", i, prompt)
		}
	}
	return out, nil
}

// InputNumber implements Provider.
func (s *Scripted) InputNumber(ctx context.Context, prompt string, def int) (int, error) {
	a, ok, err := s.next(ctx, kindNumber, prompt)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	return a.number, nil
}

// Confirm implements Provider.
func (s *Scripted) Confirm(ctx context.Context, prompt string) (bool, error) {
	a, ok, err := s.next(ctx, kindConfirm, prompt)
	if err != nil || !ok {
		return false, err
	}
	return a.yes, nil
}
