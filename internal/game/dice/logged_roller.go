package dice

import "go.uber.org/zap"

// Roller is the dice port handed to the engine: every roll goes through one
// Source and is written to the debug log.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller returns a Roller over src.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if src == nil || logger == nil {
		panic("dice: NewLoggedRoller needs a Source and a logger")
	}
	return &Roller{src: src, logger: logger.Named("dice")}
}

// Roll evaluates expr.
func (r *Roller) Roll(expr Expression) (RollResult, error) {
	res, err := Roll(expr, r.src)
	if err != nil {
		r.logger.Warn("rejected roll", zap.String("expression", expr.Raw), zap.Error(err))
		return RollResult{}, err
	}
	if ce := r.logger.Check(zap.DebugLevel, "roll"); ce != nil {
		ce.Write(zap.Stringer("result", res), zap.Int("total", res.Total()))
	}
	return res, nil
}

// RollExpr parses and rolls expr.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e)
}

// D rolls a single die and returns its face.
//
// Precondition: sides >= 2.
// Postcondition: 1 <= result <= sides.
func (r *Roller) D(sides int) int {
	res, err := r.Roll(Single(sides))
	if err != nil {
		panic(err)
	}
	return res.Dice[0]
}

// Source returns the randomness provider.
func (r *Roller) Source() Source {
	return r.src
}
