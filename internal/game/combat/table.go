package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/game/dice"
	"github.com/cory-johannsen/duel/internal/game/rules"
)

// evasionShift is added to defender-fumble category sums of 2..6 while evading.
const evasionShift = 5

// Resolution is the terminal result of one two-level table resolution.
type Resolution struct {
	Table   rules.TableID
	Subject rules.Subject
	// Dice are the two category dice of the terminal pass.
	Dice       [2]int
	Sum        int
	Category   string
	DetailRoll int
	Payload    rules.Payload
	Rerolls    int
	Fallback   bool
	Transcript []string
}

// TableResolver runs the roll-category, roll-detail, maybe-reroll machine.
type TableResolver struct {
	rules  *rules.Rules
	roller *dice.Roller
	logger *zap.Logger
	limit  int
}

// NewTableResolver returns a TableResolver capped at r.RerollLimit passes.
//
// Precondition: all arguments must be non-nil.
func NewTableResolver(r *rules.Rules, roller *dice.Roller, logger *zap.Logger) *TableResolver {
	return &TableResolver{rules: r, roller: roller, logger: logger, limit: max(1, r.RerollLimit)}
}

// Resolve rolls table id until a non-reroll leaf is reached. When evading,
// category sums of 2..6 are shifted up by 5 before lookup. A roll outside
// every range, or exceeding the reroll cap, yields the table's fallback leaf.
//
// Postcondition: Returns a Resolution whose Payload never rerolls, or an error
// if id is unknown.
func (t *TableResolver) Resolve(id rules.TableID, evading bool) (Resolution, error) {
	set, ok := t.rules.Table(id)
	if !ok {
		return Resolution{}, fmt.Errorf("unknown table %q", id)
	}
	res := Resolution{Table: id, Subject: set.Subject}
	for pass := 0; pass < t.limit; pass++ {
		res.Dice = [2]int{t.roller.D(6), t.roller.D(6)}
		res.Sum = res.Dice[0] + res.Dice[1]
		line := fmt.Sprintf("2d6=%d+%d", res.Dice[0], res.Dice[1])
		if evading && res.Sum <= 6 {
			res.Sum += evasionShift
			line += fmt.Sprintf(" (+%d evading)", evasionShift)
		}
		cat, ok := rules.Lookup(set.Categories, res.Sum)
		if !ok {
			return t.fallback(res, set, line+fmt.Sprintf(": sum %d outside the category table", res.Sum)), nil
		}
		res.Category = cat.Category
		res.DetailRoll = t.roller.D(20)
		line += fmt.Sprintf(" → %s, 1d20=%d", cat.Category, res.DetailRoll)
		leaf, ok := rules.Lookup(set.Details[cat.Category], res.DetailRoll)
		if !ok {
			return t.fallback(res, set, line+": outside the detail table"), nil
		}
		res.Transcript = append(res.Transcript, line+" → "+leaf.Text)
		if !leaf.Reroll {
			res.Payload = leaf.Payload
			return res, nil
		}
		res.Rerolls++
		t.logger.Debug("table reroll",
			zap.String("table", string(id)),
			zap.String("category", cat.Category),
			zap.Int("rerolls", res.Rerolls),
		)
	}
	t.logger.Warn("table reroll limit reached",
		zap.String("table", string(id)),
		zap.Int("limit", t.limit),
	)
	return t.fallback(res, set, fmt.Sprintf("reroll limit %d reached", t.limit)), nil
}

func (t *TableResolver) fallback(res Resolution, set *rules.TableSet, line string) Resolution {
	res.Fallback = true
	res.Payload = set.Fallback
	res.Transcript = append(res.Transcript, line+" → "+set.Fallback.Text)
	return res
}
