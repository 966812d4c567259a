// Package decision defines the decision-provider port through which the combat
// engine asks for every situational choice and confirmation, together with a
// scripted provider for tests and replays and an interactive console provider.
package decision

import (
	"context"
	"errors"
)

// ErrCancelled is returned by a provider when the user aborts a prompt.
// Callers must treat it as an abort of the whole exchange.
var ErrCancelled = errors.New("decision cancelled")

// Provider answers the engine's questions. Any method may block until the
// answer arrives; each must return ErrCancelled (possibly wrapped) when the
// prompt is aborted, including by ctx being done.
type Provider interface {
	// ChooseOne returns the index of the selected option.
	//
	// Precondition: len(options) > 0.
	// Postcondition: On success the index is in [0, len(options)).
	ChooseOne(ctx context.Context, prompt string, options []string) (int, error)
	// ChooseMany returns the indices of zero or more selected options, ascending.
	ChooseMany(ctx context.Context, prompt string, options []string) ([]int, error)
	// InputNumber returns a free-form integer; def is offered as the default.
	InputNumber(ctx context.Context, prompt string, def int) (int, error)
	// Confirm returns a yes/no answer.
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// IsCancelled reports whether err aborts an exchange: a provider cancellation
// or a done context.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
