package rules

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/cory-johannsen/duel/internal/game/dice"
)

var (
	validateOnce sync.Once
	structs      *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		structs = validator.New(validator.WithRequiredStructEnabled())
		_ = structs.RegisterValidation("dice", func(fl validator.FieldLevel) bool {
			_, err := dice.Parse(fl.Field().String())
			return err == nil
		})
	})
	return structs
}

// Required table sets every rule set must carry.
var requiredTables = []TableID{MeleeFumble, RangedFumble, Critical, DefenderFumble}

// Validate checks field constraints and the structural invariants of every
// table: category tables partition 2..12, detail tables and zone layouts
// partition 1..20, injury tables partition 1..6, every referenced category has
// a detail table with at least one non-reroll leaf, and no fallback rerolls.
//
// Postcondition: Returns nil iff r is safe to resolve against.
func (r *Rules) Validate() error {
	var errs []error
	if err := structValidator().Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Errorf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err)
		}
	}

	for _, id := range requiredTables {
		if _, ok := r.Tables[id]; !ok {
			errs = append(errs, fmt.Errorf("table %q missing", id))
		}
	}
	for _, id := range sortedTableIDs(r.Tables) {
		errs = append(errs, r.Tables[id].check()...)
	}

	for i, l := range r.Layouts {
		if err := checkPartition(l.Zones, 1, 20); err != nil {
			errs = append(errs, fmt.Errorf("zone layout %d (%s): %w", i, l.Plan, err))
		}
	}
	if _, ok := r.Injury[Other]; !ok {
		errs = append(errs, fmt.Errorf("injury table %q missing", Other))
	}
	for cat, table := range r.Injury {
		if err := checkPartition(table, 1, 6); err != nil {
			errs = append(errs, fmt.Errorf("injury table %q: %w", cat, err))
		}
	}
	if _, ok := r.ZoneShares[Other]; !ok {
		errs = append(errs, fmt.Errorf("zone share %q missing", Other))
	}
	if _, ok := r.TargetPenalties[Other]; !ok {
		errs = append(errs, fmt.Errorf("targeted penalty %q missing", Other))
	}
	return errors.Join(errs...)
}

func (t *TableSet) check() []error {
	var errs []error
	if err := checkPartition(t.Categories, 2, 12); err != nil {
		errs = append(errs, fmt.Errorf("table %q categories: %w", t.ID, err))
	}
	for _, c := range t.Categories {
		if _, ok := t.Details[c.Category]; !ok {
			errs = append(errs, fmt.Errorf("table %q: category %q has no detail table", t.ID, c.Category))
		}
	}
	keys := make([]string, 0, len(t.Details))
	for k := range t.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		detail := t.Details[k]
		if err := checkPartition(detail, 1, 20); err != nil {
			errs = append(errs, fmt.Errorf("table %q category %q: %w", t.ID, k, err))
		}
		terminal := false
		for _, d := range detail {
			if !d.Reroll {
				terminal = true
				break
			}
		}
		if !terminal {
			errs = append(errs, fmt.Errorf("table %q category %q: every leaf rerolls", t.ID, k))
		}
	}
	if t.Fallback.Reroll {
		errs = append(errs, fmt.Errorf("table %q: fallback must not reroll", t.ID))
	}
	return errs
}

func sortedTableIDs(m map[TableID]*TableSet) []TableID {
	out := make([]TableID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
