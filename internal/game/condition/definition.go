// Package condition holds the catalog of named conditions and the rule that
// caps their combined penalty on a rating.
package condition

import (
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// MaxLevel is the highest level any condition may reach.
const MaxLevel = 5

// PenaltyCap bounds the combined condition and effect penalty on one rating.
const PenaltyCap = 5

//go:embed defaults/*.yaml
var defaultFS embed.FS

// ConditionDef is the static definition of a condition, loaded from YAML.
type ConditionDef struct {
	ID          string `yaml:"id" validate:"required"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// MaxLevel caps the level; 0 means MaxLevel.
	MaxLevel int `yaml:"max_level" validate:"min=0,max=5"`
	// Passive conditions are tracked but never reduce ratings.
	Passive bool `yaml:"passive"`
	// IncapacitatedAt is the level from which the bearer cannot act; 0 = never.
	IncapacitatedAt int `yaml:"incapacitated_at" validate:"min=0,max=5"`
}

var validate = validator.New()

// Cap returns the effective maximum level of the condition.
func (d *ConditionDef) Cap() int {
	if d.MaxLevel <= 0 || d.MaxLevel > MaxLevel {
		return MaxLevel
	}
	return d.MaxLevel
}

// Validate checks the definition against its field constraints.
func (d *ConditionDef) Validate() error {
	return validate.Struct(d)
}

// Registry is an immutable-after-load catalog of condition definitions.
type Registry struct {
	defs map[string]*ConditionDef
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*ConditionDef)}
}

// Register adds def, replacing a definition with the same ID. Directory
// catalogs rely on this to override embedded entries.
//
// Precondition: def is non-nil and valid.
func (r *Registry) Register(def *ConditionDef) {
	r.defs[def.ID] = def
}

// Get looks up a definition by ID.
func (r *Registry) Get(id string) (*ConditionDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns the definitions ordered by ID.
func (r *Registry) All() []*ConditionDef {
	ids := slices.Sorted(maps.Keys(r.defs))
	out := make([]*ConditionDef, len(ids))
	for i, id := range ids {
		out[i] = r.defs[id]
	}
	return out
}

// Defaults returns the embedded catalog. It panics when the embedded data
// is invalid, which the package tests rule out.
func Defaults() *Registry {
	reg, err := load(defaultFS, "defaults/*.yaml")
	if err != nil {
		panic(fmt.Sprintf("condition: embedded catalog invalid: %v", err))
	}
	return reg
}

// LoadDirectory builds a Registry from every *.yaml file in dir; other files
// are ignored.
func LoadDirectory(dir string) (*Registry, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("loading conditions: %w", err)
	}
	reg, err := load(os.DirFS(dir), "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading conditions from %q: %w", dir, err)
	}
	return reg, nil
}

func load(fsys fs.FS, pattern string) (*Registry, error) {
	files, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}
	reg := NewRegistry()
	for _, name := range files {
		def, err := decode(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		reg.Register(def)
	}
	return reg, nil
}

func decode(fsys fs.FS, name string) (*ConditionDef, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var def ConditionDef
	if err := dec.Decode(&def); err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}
