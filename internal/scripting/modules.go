package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/game/character"
)

// RegisterModules registers the engine.log and engine.dice Lua tables into L.
//
// Precondition: L must be from NewSandbox.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.newLogModule(L))
	L.SetField(engine, "dice", m.newDiceModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) newLogModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	level := func(log func(string, ...zap.Field)) lua.LGFunction {
		return func(L *lua.LState) int {
			log(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}
	}
	L.SetField(mod, "debug", L.NewFunction(level(m.logger.Debug)))
	L.SetField(mod, "info", L.NewFunction(level(m.logger.Info)))
	L.SetField(mod, "warn", L.NewFunction(level(m.logger.Warn)))
	L.SetField(mod, "error", L.NewFunction(level(m.logger.Error)))
	return mod
}

// newDiceModule exposes engine.dice.roll(expr) returning {total, dice, modifier}
// and engine.dice.d(sides) returning a single face.
func (m *Manager) newDiceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		res, err := m.roller.RollExpr(L.CheckString(1))
		if err != nil {
			L.RaiseError("engine.dice.roll: %s", err.Error())
			return 0
		}
		t := L.NewTable()
		L.SetField(t, "total", lua.LNumber(res.Total()))
		L.SetField(t, "modifier", lua.LNumber(res.Modifier))
		faces := L.NewTable()
		for _, d := range res.Dice {
			faces.Append(lua.LNumber(d))
		}
		L.SetField(t, "dice", faces)
		L.Push(t)
		return 1
	}))
	L.SetField(mod, "d", L.NewFunction(func(L *lua.LState) int {
		sides := L.CheckInt(1)
		if sides < 2 {
			L.ArgError(1, "sides must be >= 2")
			return 0
		}
		L.Push(lua.LNumber(m.roller.D(sides)))
		return 1
	}))
	return mod
}

// combatantTable snapshots c into a read-only view for a hook. Mutating the
// table has no effect on the combatant.
//
// Precondition: m.mu is held.
func (m *Manager) combatantTable(c *character.Combatant) lua.LValue {
	if c == nil {
		return lua.LNil
	}
	L := m.L
	t := L.NewTable()
	L.SetField(t, "id", lua.LString(c.ID))
	L.SetField(t, "name", lua.LString(c.Name))
	L.SetField(t, "life", lua.LNumber(c.Life))
	L.SetField(t, "max_life", lua.LNumber(c.MaxLife))

	attrs := L.NewTable()
	for _, a := range character.AllAttributes {
		L.SetField(attrs, string(a), lua.LNumber(c.Attributes.Get(a)))
	}
	L.SetField(t, "attributes", attrs)

	conds := L.NewTable()
	for name, lvl := range c.ConditionLevels() {
		L.SetField(conds, name, lua.LNumber(lvl))
	}
	for name, lvl := range c.Effects.ConditionLevels() {
		prev, _ := conds.RawGetString(name).(lua.LNumber)
		L.SetField(conds, name, prev+lua.LNumber(lvl))
	}
	L.SetField(t, "conditions", conds)

	statuses := L.NewTable()
	for _, s := range c.Effects.Statuses() {
		statuses.Append(lua.LString(s))
	}
	L.SetField(t, "statuses", statuses)
	return t
}
