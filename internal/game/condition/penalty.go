package condition

// Penalty caps a summed penalty magnitude at PenaltyCap.
//
// Postcondition: Returns a value in [0, PenaltyCap].
func Penalty(sum int) int {
	switch {
	case sum <= 0:
		return 0
	case sum > PenaltyCap:
		return PenaltyCap
	default:
		return sum
	}
}

// Levels merges condition level maps, clamping each name to its definition's
// cap. Names missing from the registry are clamped to MaxLevel.
//
// Postcondition: Every value in the result is in [0, cap].
func (r *Registry) Levels(sources ...map[string]int) map[string]int {
	out := make(map[string]int)
	for _, src := range sources {
		for name, lvl := range src {
			out[name] += lvl
		}
	}
	for name, lvl := range out {
		limit := MaxLevel
		if d, ok := r.Get(name); ok {
			limit = d.Cap()
		}
		switch {
		case lvl < 0:
			out[name] = 0
		case lvl > limit:
			out[name] = limit
		}
	}
	return out
}

// RatingLevels returns the summed level of every non-passive condition in levels.
//
// Postcondition: Returns >= 0.
func (r *Registry) RatingLevels(levels map[string]int) int {
	total := 0
	for name, lvl := range levels {
		if d, ok := r.Get(name); ok && d.Passive {
			continue
		}
		if lvl > 0 {
			total += lvl
		}
	}
	return total
}

// Incapacitating returns the names of conditions in levels that have reached
// their incapacitation level, in registry order.
func (r *Registry) Incapacitating(levels map[string]int) []string {
	var out []string
	for _, d := range r.All() {
		if d.IncapacitatedAt > 0 && levels[d.ID] >= d.IncapacitatedAt {
			out = append(out, d.ID)
		}
	}
	return out
}
