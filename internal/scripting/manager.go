package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/dice"
)

// Hook names looked up as Lua globals.
const (
	HookAdjustRating = "adjust_rating"
	HookAdjustDamage = "adjust_damage"
)

// Manager owns one sandboxed LState holding the house-rule scripts and
// implements the combat engine's hook interface on top of it.
//
// Manager is safe for concurrent use; calls into the LState are serialized.
type Manager struct {
	mu        sync.Mutex
	L         *lua.LState
	instLimit int
	roller    *dice.Roller
	logger    *zap.Logger
}

// NewManager creates a Manager with an empty script state.
//
// Precondition: roller and logger must be non-nil; instLimit >= 0 (0 uses DefaultInstructionLimit).
// Postcondition: Returns a non-nil Manager whose hooks leave every value unchanged.
func NewManager(roller *dice.Roller, logger *zap.Logger, instLimit int) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	m := &Manager{
		instLimit: instLimit,
		roller:    roller,
		logger:    logger,
	}
	m.L = NewSandbox(instLimit)
	m.RegisterModules(m.L)
	return m
}

// LoadDir executes every *.lua file in dir in lexicographic order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns nil on success, or the first read/execution error.
func (m *Manager) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("scripting: reading %q: %w", f, err)
		}
		if err := m.LoadString(filepath.Base(f), string(src)); err != nil {
			return err
		}
	}
	m.logger.Debug("house rules loaded", zap.String("dir", dir), zap.Int("files", len(files)))
	return nil
}

// LoadString executes src under name with a fresh instruction budget.
//
// Postcondition: Returns nil on success, or an error naming the script.
func (m *Manager) LoadString(name, src string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := run(m.L, m.instLimit, func() error { return m.L.DoString(src) }); err != nil {
		return fmt.Errorf("scripting: executing %q: %w", name, err)
	}
	return nil
}

// CallHook calls the global Lua function hook with args and returns its first
// return value.
//
// Postcondition: Returns (LNil, nil) if hook is not defined.
// Returns (LNil, err) and logs at Warn on runtime error or budget exhaustion.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.call(hook, args...)
}

// call is CallHook with m.mu already held.
func (m *Manager) call(hook string, args ...lua.LValue) (lua.LValue, error) {
	fn := m.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}
	err := run(m.L, m.instLimit, func() error {
		return m.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	})
	if err != nil {
		m.logger.Warn("lua hook error",
			zap.String("hook", hook),
			zap.Bool("budget_exhausted", errors.Is(err, ErrBudgetExhausted)),
			zap.Error(err))
		return lua.LNil, err
	}
	ret := m.L.Get(-1)
	m.L.Pop(1)
	return ret, nil
}

// Defines reports whether hook is a Lua function in the loaded scripts.
func (m *Manager) Defines(hook string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.L.GetGlobal(hook).Type() == lua.LTFunction
}

// AdjustRating passes a computed rating through the adjust_rating hook.
//
// Postcondition: Returns value unchanged when the hook is absent, fails, or
// returns a non-number.
func (m *Manager) AdjustRating(kind string, who *character.Combatant, value int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.L.GetGlobal(HookAdjustRating).Type() != lua.LTFunction {
		return value
	}
	ret, err := m.call(HookAdjustRating, lua.LString(kind), m.combatantTable(who), lua.LNumber(value))
	return m.number(HookAdjustRating, ret, err, value)
}

// AdjustDamage passes the damage after armor through the adjust_damage hook.
//
// Postcondition: Returns damage unchanged when the hook is absent, fails, or
// returns a non-number.
func (m *Manager) AdjustDamage(attacker, defender *character.Combatant, damage int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.L.GetGlobal(HookAdjustDamage).Type() != lua.LTFunction {
		return damage
	}
	ret, err := m.call(HookAdjustDamage, m.combatantTable(attacker), m.combatantTable(defender), lua.LNumber(damage))
	return m.number(HookAdjustDamage, ret, err, damage)
}

func (m *Manager) number(hook string, ret lua.LValue, err error, fallback int) int {
	if err != nil || ret == lua.LNil {
		return fallback
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		m.logger.Warn("lua hook returned a non-number",
			zap.String("hook", hook),
			zap.String("type", ret.Type().String()),
		)
		return fallback
	}
	return int(n)
}

// Close releases the LState.
//
// Postcondition: Subsequent hook calls are invalid.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.L != nil {
		m.L.Close()
		m.L = nil
	}
}

// ErrNoScripts is returned by Load when dir holds no *.lua files.
var ErrNoScripts = errors.New("scripting: no scripts found")

// Load builds a Manager from the scripts in dir.
//
// Precondition: dir must be non-empty.
// Postcondition: Returns a Manager, or an error wrapping ErrNoScripts when the
// directory holds no scripts.
func Load(dir string, instLimit int, roller *dice.Roller, logger *zap.Logger) (*Manager, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.lua"))
	if err != nil {
		return nil, fmt.Errorf("scripting: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w in %q", ErrNoScripts, dir)
	}
	m := NewManager(roller, logger, instLimit)
	if err := m.LoadDir(dir); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}
