// Package situation holds the catalog of situational modifiers and collects
// one exchange's choices through a decision provider. Choices are never persisted.
package situation

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/google/cel-go/cel"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/duel/internal/game/character"
)

//go:embed defaults.yaml
var defaultCatalog []byte

// Target says which rating an option shifts.
type Target string

const (
	Attack  Target = "attack"
	Defense Target = "defense"
)

// Option is one selectable modifier. Delta is used unless DeltaExpr is set;
// Input options prompt for a free-form number instead.
type Option struct {
	ID        string `yaml:"id"`
	Label     string `yaml:"label"`
	Target    Target `yaml:"target"`
	Delta     int    `yaml:"delta,omitempty"`
	DeltaExpr string `yaml:"delta_expr,omitempty"`
	Input     bool   `yaml:"input,omitempty"`

	program cel.Program
}

// Category groups options. A mandatory category requires exactly one choice;
// options of optional categories may be picked freely.
type Category struct {
	ID        string                  `yaml:"id"`
	Label     string                  `yaml:"label"`
	Mandatory bool                    `yaml:"mandatory,omitempty"`
	Classes   []character.WeaponClass `yaml:"classes,omitempty"`
	Options   []Option                `yaml:"options"`
}

func (c *Category) appliesTo(class character.WeaponClass) bool {
	return len(c.Classes) == 0 || slices.Contains(c.Classes, class)
}

// Catalog is the compiled set of categories.
type Catalog struct {
	Categories []Category `yaml:"categories"`
	env        *cel.Env
}

// Defaults returns the embedded standard catalog.
//
// Postcondition: Returns a compiled Catalog; panics only if the embedded data is corrupt.
func Defaults() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("situation: embedded catalog invalid: %v", err))
	}
	return c
}

// LoadFile parses and compiles the catalog at path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading situation catalog %q: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("situation catalog %q: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog and compiles every delta expression.
//
// Postcondition: Returns a Catalog whose expressions all type-check to int.
func Parse(data []byte) (*Catalog, error) {
	c := &Catalog{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("parsing situation catalog: %w", err)
	}
	env, err := newEnv()
	if err != nil {
		return nil, err
	}
	c.env = env
	if err := c.compile(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) compile() error {
	var errs []error
	seen := make(map[string]bool)
	for ci := range c.Categories {
		cat := &c.Categories[ci]
		if cat.ID == "" || seen[cat.ID] {
			errs = append(errs, fmt.Errorf("category %d: id empty or duplicate %q", ci, cat.ID))
		}
		seen[cat.ID] = true
		if len(cat.Options) == 0 {
			errs = append(errs, fmt.Errorf("category %q: no options", cat.ID))
		}
		for oi := range cat.Options {
			opt := &cat.Options[oi]
			if opt.Target != Attack && opt.Target != Defense {
				errs = append(errs, fmt.Errorf("%s/%s: target must be attack or defense", cat.ID, opt.ID))
			}
			if cat.Mandatory && opt.Input {
				errs = append(errs, fmt.Errorf("%s/%s: mandatory categories cannot prompt for input", cat.ID, opt.ID))
			}
			if opt.DeltaExpr == "" {
				continue
			}
			prg, err := c.program(opt.DeltaExpr)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s/%s: %w", cat.ID, opt.ID, err))
				continue
			}
			opt.program = prg
		}
	}
	return errors.Join(errs...)
}

// label returns the display label of an option, falling back to its ID.
func (o *Option) label() string {
	if o.Label != "" {
		return o.Label
	}
	return o.ID
}
