package situation

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"

	"github.com/cory-johannsen/duel/internal/game/character"
)

// Variables available to delta expressions.
const (
	varAttacker = "attacker"
	varDefender = "defender"
	varWeapon   = "weapon"
)

func newEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		ext.Strings(),
		cel.Variable(varAttacker, cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable(varDefender, cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable(varWeapon, cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

func (c *Catalog) program(expr string) (cel.Program, error) {
	ast, issues := c.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compile error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.IntType) && !ast.OutputType().IsExactType(cel.DynType) {
		return nil, fmt.Errorf("CEL expression %q must yield int, got %s", expr, ast.OutputType())
	}
	prg, err := c.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("CEL program error: %w", err)
	}
	return prg, nil
}

// Vars is the evaluation context of one exchange.
type Vars map[string]any

// NewVars builds the expression context from the exchange participants.
func NewVars(attacker, defender *character.Combatant, weapon character.Weapon) Vars {
	return Vars{
		varAttacker: combatantVars(attacker),
		varDefender: combatantVars(defender),
		varWeapon: map[string]any{
			"name":      weapon.Name,
			"technique": weapon.Technique,
			"class":     string(weapon.Class),
			"reach":     int(weapon.EffectiveReach()),
		},
	}
}

func combatantVars(c *character.Combatant) map[string]any {
	attrs := make(map[string]any, len(character.AllAttributes))
	for _, a := range character.AllAttributes {
		attrs[string(a)] = c.Attributes.Get(a)
	}
	return map[string]any{
		"name":       c.Name,
		"life":       c.Life,
		"max_life":   c.MaxLife,
		"size":       string(c.Size.Normalize()),
		"body_plan":  string(c.BodyPlan.Normalize()),
		"attributes": attrs,
		"statuses":   c.Effects.Statuses(),
	}
}

func (o *Option) eval(vars Vars) (int, error) {
	if o.program == nil {
		return o.Delta, nil
	}
	out, _, err := o.program.Eval(map[string]any(vars))
	if err != nil {
		return 0, fmt.Errorf("CEL eval error in %q: %w", o.ID, err)
	}
	v, ok := out.Value().(int64)
	if !ok {
		return 0, fmt.Errorf("CEL expression for %q yielded %T, want int", o.ID, out.Value())
	}
	return int(v), nil
}
