// Package scripting runs house-rule hooks in a sandboxed GopherLua VM. Hooks
// may adjust computed ratings and final damage; they never see the store.
package scripting

import (
	"context"
	"errors"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit caps the opcodes one script load or hook call may
// execute when the configuration sets no limit.
const DefaultInstructionLimit = 100_000

// ErrBudgetExhausted reports a hook stopped for running past its opcode budget.
var ErrBudgetExhausted = errors.New("scripting: instruction budget exhausted")

// blockedGlobals are base-library functions that reach the file system, the
// collector, or other chunks' environments.
var blockedGlobals = []string{
	"dofile", "loadfile", "load", "loadstring", "require",
	"collectgarbage", "getfenv", "setfenv", "print",
}

// budget is the context a VM runs under for one load or call. GopherLua polls
// Done once per opcode, so each poll spends one unit.
type budget struct {
	context.Context
	cancel context.CancelFunc
	left   atomic.Int64
}

func (b *budget) Done() <-chan struct{} {
	if b.left.Add(-1) < 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// spent reports whether the budget ran out.
func (b *budget) spent() bool {
	return b.left.Load() < 0
}

// release frees the budget's context.
func (b *budget) release() {
	b.cancel()
}

// meter installs a fresh budget of limit opcodes on L. A limit <= 0 selects
// DefaultInstructionLimit.
func meter(L *lua.LState, limit int) *budget {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &budget{Context: ctx, cancel: cancel}
	b.left.Store(int64(limit))
	L.SetContext(b)
	return b
}

// run executes fn under a fresh budget and folds an exhausted budget into
// ErrBudgetExhausted.
func run(L *lua.LState, limit int, fn func() error) error {
	b := meter(L, limit)
	defer b.release()
	err := fn()
	if err != nil && b.spent() {
		return errors.Join(ErrBudgetExhausted, err)
	}
	return err
}

// NewSandbox returns a VM with the base, table, string and math libraries
// and without blockedGlobals. Every chunk it runs is metered; instLimit <= 0
// selects DefaultInstructionLimit.
//
// The caller owns the state and must Close it.
func NewSandbox(instLimit int) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	meter(L, instLimit)
	return L
}
