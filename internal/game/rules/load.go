package rules

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults
var defaultFS embed.FS

// File layout shared by the embedded defaults and rule directories.
const (
	coreFile     = "core.yaml"
	zonesFile    = "zones.yaml"
	injuriesFile = "injuries.yaml"
	tablesDir    = "tables"
)

// Defaults returns the embedded standard rule set.
//
// Postcondition: Returns a validated Rules; panics only if the embedded data is corrupt.
func Defaults() *Rules {
	sub, err := fs.Sub(defaultFS, "defaults")
	if err != nil {
		panic(fmt.Sprintf("rules: embedded defaults missing: %v", err))
	}
	r, err := Load(sub)
	if err != nil {
		panic(fmt.Sprintf("rules: embedded defaults invalid: %v", err))
	}
	return r
}

// LoadDirectory loads and validates a rule set from dir.
//
// Precondition: dir contains core.yaml, zones.yaml, injuries.yaml and a tables/ directory.
// Postcondition: Returns a validated Rules or an error describing every violation.
func LoadDirectory(dir string) (*Rules, error) {
	r, err := Load(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("loading rules from %q: %w", dir, err)
	}
	return r, nil
}

// Load reads a rule set from fsys and validates it.
func Load(fsys fs.FS) (*Rules, error) {
	r := &Rules{}
	if err := decodeFile(fsys, coreFile, r); err != nil {
		return nil, err
	}
	var zones struct {
		Layouts []ZoneLayout `yaml:"layouts"`
	}
	if err := decodeFile(fsys, zonesFile, &zones); err != nil {
		return nil, err
	}
	r.Layouts = zones.Layouts

	var injuries struct {
		Tables map[ZoneCategory][]InjuryEntry `yaml:"tables"`
	}
	if err := decodeFile(fsys, injuriesFile, &injuries); err != nil {
		return nil, err
	}
	r.Injury = injuries.Tables

	entries, err := fs.ReadDir(fsys, tablesDir)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", tablesDir, err)
	}
	r.Tables = make(map[TableID]*TableSet)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		var set TableSet
		if err := decodeFile(fsys, path.Join(tablesDir, e.Name()), &set); err != nil {
			return nil, err
		}
		if _, dup := r.Tables[set.ID]; dup {
			return nil, fmt.Errorf("table %q defined twice", set.ID)
		}
		r.Tables[set.ID] = &set
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func decodeFile(fsys fs.FS, name string, into any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("reading %q: %w", name, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("parsing %q: %w", name, err)
	}
	return nil
}
