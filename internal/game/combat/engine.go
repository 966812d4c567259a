package combat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/condition"
	"github.com/cory-johannsen/duel/internal/game/decision"
	"github.com/cory-johannsen/duel/internal/game/dice"
	"github.com/cory-johannsen/duel/internal/game/effect"
	"github.com/cory-johannsen/duel/internal/game/rules"
	"github.com/cory-johannsen/duel/internal/game/situation"
)

// Statuses the engine writes to the ledger.
const (
	StatusDead        = "dead"
	StatusDying       = "dying"
	StatusUnconscious = "unconscious"
	StatusHelpless    = "helpless"
	StatusCounter     = "counter opportunity"
)

// ExchangeOutcome summarises how an exchange ended.
type ExchangeOutcome string

const (
	OutcomeMiss     ExchangeOutcome = "miss"
	OutcomeFumble   ExchangeOutcome = "fumble"
	OutcomeDefended ExchangeOutcome = "defended"
	OutcomeHit      ExchangeOutcome = "hit"
	OutcomeCritical ExchangeOutcome = "critical"
)

// DefenseKind is the defender's chosen response.
type DefenseKind string

const (
	DefenseParry  DefenseKind = "parry"
	DefenseShield DefenseKind = "shield"
	DefenseEvade  DefenseKind = "evade"
	DefenseNone   DefenseKind = "none"
)

// Defense is the defender's response to a successful attack roll.
type Defense struct {
	Kind DefenseKind
	// Weapon is the defender's parrying weapon or shield index; -1 otherwise.
	Weapon  int
	Repeats int
	Rating  Rating
	Check   CheckResult
	Halved  bool
}

// Request identifies one exchange.
type Request struct {
	AttackerID string
	DefenderID string
	// Class selects melee or ranged; empty means melee.
	Class character.WeaponClass
}

// Exchange is the complete record of one resolved attack.
type Exchange struct {
	ID       string
	Request  Request
	Attacker *character.Combatant
	Defender *character.Combatant
	// Weapon is the attacker's weapon index.
	Weapon int
	// Target is the zone key of a targeted attack; empty for a random zone.
	Target       string
	Situational  situation.Modifiers
	AttackRating Rating
	Attack       CheckResult
	Defense      *Defense
	Tables       []Resolution
	Zone         *HitZone
	Damage       *Damage
	Injury       *InjuryOutcome
	Outcome      ExchangeOutcome
	Fatal        bool
	Log          Log
}

// Option configures an Engine.
type Option func(*Engine)

// WithAbilityChecker replaces the default checker, which asks the decision provider.
func WithAbilityChecker(c AbilityChecker) Option {
	return func(e *Engine) { e.checker = c }
}

// WithHooks installs house-rule hooks.
func WithHooks(h Hooks) Option {
	return func(e *Engine) { e.hooks = h }
}

// WithRecorder installs a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithConditions replaces the built-in condition registry.
func WithConditions(r *condition.Registry) Option {
	return func(e *Engine) { e.conditions = r }
}

// WithSituations replaces the built-in situational modifier catalog.
func WithSituations(c *situation.Catalog) Option {
	return func(e *Engine) { e.situations = c }
}

// WithIDs replaces the exchange ID generator.
func WithIDs(f func() string) Option {
	return func(e *Engine) { e.newID = f }
}

// Engine resolves exchanges. It holds no per-exchange state; concurrent
// exchanges must not share combatants.
type Engine struct {
	rules      *rules.Rules
	store      Store
	decide     decision.Provider
	roller     *dice.Roller
	logger     *zap.Logger
	checker    AbilityChecker
	hooks      Hooks
	recorder   Recorder
	conditions *condition.Registry
	situations *situation.Catalog
	newID      func() string

	calc     *Calculator
	tables   *TableResolver
	zones    *ZoneResolver
	injuries *InjuryResolver
}

// NewEngine returns an Engine.
//
// Precondition: every argument must be non-nil.
func NewEngine(r *rules.Rules, store Store, decide decision.Provider, roller *dice.Roller, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		rules:      r,
		store:      store,
		decide:     decide,
		roller:     roller,
		logger:     logger,
		checker:    confirmChecker{decide: decide},
		hooks:      noHooks{},
		recorder:   noRecorder{},
		conditions: condition.Defaults(),
		situations: situation.Defaults(),
		newID:      func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(e)
	}
	e.calc = NewCalculator(r, e.conditions)
	e.tables = NewTableResolver(r, roller, logger)
	e.zones = NewZoneResolver(r, roller)
	e.injuries = NewInjuryResolver(r, roller)
	return e
}

// Resolve runs one exchange and commits both records and the transcript once.
// On any error nothing is written.
//
// Postcondition: a cancelled decision returns an error satisfying
// errors.Is(err, ErrCancelled).
func (e *Engine) Resolve(ctx context.Context, req Request) (*Exchange, error) {
	ex, err := e.resolve(ctx, req)
	if err != nil {
		e.logger.Info("exchange aborted",
			zap.String("attacker", req.AttackerID),
			zap.String("defender", req.DefenderID),
			zap.Error(err),
		)
		return nil, err
	}
	if err := e.store.Commit(ctx, ex); err != nil {
		return nil, fmt.Errorf("committing exchange %s: %w", ex.ID, err)
	}
	e.record(ex)
	e.logger.Info("exchange resolved",
		zap.String("exchange_id", ex.ID),
		zap.String("attacker", ex.Attacker.Name),
		zap.String("defender", ex.Defender.Name),
		zap.String("outcome", string(ex.Outcome)),
		zap.Int("log_lines", ex.Log.Len()),
	)
	return ex, nil
}

func (e *Engine) record(ex *Exchange) {
	e.recorder.Exchange(string(ex.Outcome))
	for _, t := range ex.Tables {
		e.recorder.Table(string(t.Table), t.Rerolls, t.Fallback)
	}
	if ex.Injury != nil {
		e.recorder.Injury(string(ex.Injury.Category), ex.Injury.Extreme)
	}
}

func (e *Engine) resolve(ctx context.Context, req Request) (*Exchange, error) {
	if req.AttackerID == "" || req.DefenderID == "" || req.AttackerID == req.DefenderID {
		return nil, ErrNotEnoughCombatants
	}
	class := req.Class
	if class == "" {
		class = character.Melee
	}
	a, d, err := e.store.LoadPair(ctx, req.AttackerID, req.DefenderID)
	if err != nil {
		if errors.Is(err, ErrCombatantNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotEnoughCombatants, err)
		}
		return nil, fmt.Errorf("loading combatants: %w", err)
	}
	if !e.canAct(a) {
		return nil, fmt.Errorf("%w: attacker %q cannot act", ErrNotEnoughCombatants, req.AttackerID)
	}
	if !alive(d) {
		return nil, fmt.Errorf("%w: defender %q is dead", ErrNotEnoughCombatants, req.DefenderID)
	}

	ex := &Exchange{
		ID:       e.newID(),
		Request:  req,
		Attacker: a.Clone(),
		Defender: d.Clone(),
		Weapon:   -1,
	}
	e.logger.Info("exchange started",
		zap.String("exchange_id", ex.ID),
		zap.String("attacker", ex.Attacker.Name),
		zap.String("defender", ex.Defender.Name),
		zap.String("class", string(class)),
	)
	ex.Log.Add(StepSetup, "%s attacks %s (%s)", ex.Attacker.Name, ex.Defender.Name, class)

	if ex.Weapon, err = e.chooseWeapon(ctx, ex.Attacker, class); err != nil {
		return nil, err
	}
	weapon := ex.Attacker.Weapons[ex.Weapon]
	ex.Log.Add(StepSetup, "weapon: %s (%s, %s)", weapon.Name, weapon.Technique, weapon.Damage)

	var extra []Part
	target, penalty, err := e.chooseTarget(ctx, ex.Defender)
	if err != nil {
		return nil, err
	}
	if target != "" {
		ex.Target = target
		extra = append(extra, Part{Label: "targeted " + target, Value: -penalty})
		ex.Log.Add(StepSetup, "targeting %s (%+d)", target, -penalty)
	}

	vars := situation.NewVars(ex.Attacker, ex.Defender, weapon)
	if ex.Situational, err = e.situations.Collect(ctx, e.decide, class, vars); err != nil {
		return nil, cancelled(err)
	}
	for _, c := range ex.Situational.Choices {
		ex.Log.Add(StepSetup, "situation %s: %s (%s %+d)", c.Category, c.Option, c.Target, c.Delta)
	}

	kind := RatingAT
	var opposing character.Reach
	if class == character.Ranged {
		kind = RatingFK
	} else if i := primaryWeapon(ex.Defender); i >= 0 {
		opposing = ex.Defender.Weapons[i].EffectiveReach()
	}
	ex.AttackRating = e.rating(RatingInput{
		Kind:          kind,
		Combatant:     ex.Attacker,
		Weapon:        &weapon,
		OpposingReach: opposing,
		Situational:   ex.Situational.Attack,
		Extra:         extra,
	})
	ex.Log.Add(StepRating, "%s", ex.AttackRating)

	ex.Attack = Check(e.roller, ex.AttackRating.Value)
	ex.Log.Add(StepAttack, "%s", ex.Attack)

	switch ex.Attack.Outcome {
	case Miss:
		ex.Outcome = OutcomeMiss
		ex.Log.Add(StepOutcome, "%s misses", ex.Attacker.Name)
		return ex, nil
	case Fumble:
		ex.Outcome = OutcomeFumble
		id := rules.MeleeFumble
		if class == character.Ranged {
			id = rules.RangedFumble
		}
		if err := e.runTable(ctx, ex, id, false, ex.Attacker, ex.Weapon); err != nil {
			return nil, err
		}
		e.settle(ex, ex.Attacker)
		ex.Log.Add(StepOutcome, "%s fumbles", ex.Attacker.Name)
		return ex, nil
	}

	def, err := e.defend(ctx, ex, class, weapon)
	if err != nil {
		return nil, err
	}
	ex.Defense = def
	if def.Kind != DefenseNone {
		switch def.Check.Outcome {
		case Critical:
			if err := e.grant(ex, ex.Defender, effect.Entry{
				Name: StatusCounter, Kind: effect.KindStatus, Source: "defense critical", Rounds: 1,
			}); err != nil {
				return nil, err
			}
			fallthrough
		case Hit:
			ex.Outcome = OutcomeDefended
			ex.Log.Add(StepOutcome, "%s fends off the attack", ex.Defender.Name)
			return ex, nil
		case Fumble:
			id, evading, item := rules.DefenderFumble, def.Kind == DefenseEvade, def.Weapon
			if def.Kind == DefenseParry {
				id = rules.MeleeFumble
			}
			if evading {
				item = -1
			}
			if err := e.runTable(ctx, ex, id, evading, ex.Defender, item); err != nil {
				return nil, err
			}
		}
	}

	var crit *Resolution
	ex.Outcome = OutcomeHit
	if ex.Attack.Outcome == Critical {
		ex.Outcome = OutcomeCritical
		item := primaryWeapon(ex.Defender)
		if def.Kind == DefenseParry || def.Kind == DefenseShield {
			item = def.Weapon
		}
		if err := e.runTable(ctx, ex, rules.Critical, false, ex.Defender, item); err != nil {
			return nil, err
		}
		crit = &ex.Tables[len(ex.Tables)-1]
	}

	if err := e.strike(ctx, ex, weapon, crit); err != nil {
		return nil, err
	}
	e.settle(ex, ex.Attacker)
	e.settle(ex, ex.Defender)
	ex.Log.Add(StepOutcome, "%s hits %s for %d (life %d/%d)",
		ex.Attacker.Name, ex.Defender.Name, ex.Damage.Dealt, ex.Defender.Life, ex.Defender.MaxLife)
	return ex, nil
}

// chooseWeapon picks the attacker's weapon; a single candidate is taken without asking.
func (e *Engine) chooseWeapon(ctx context.Context, c *character.Combatant, class character.WeaponClass) (int, error) {
	eligible := c.EligibleWeapons(class)
	switch len(eligible) {
	case 0:
		return -1, fmt.Errorf("%w: %s has no %s weapon", ErrNoWeapon, c.Name, class)
	case 1:
		return eligible[0], nil
	}
	labels := make([]string, len(eligible))
	for i, idx := range eligible {
		w := c.Weapons[idx]
		labels[i] = fmt.Sprintf("%s (%s)", w.Name, w.Damage)
	}
	choice, err := e.decide.ChooseOne(ctx, "Weapon of "+c.Name, labels)
	if err != nil {
		return -1, cancelled(err)
	}
	return eligible[choice], nil
}

// chooseTarget asks whether to target a zone and which. It returns the zone
// key and its penalty, or an empty key for a random zone.
func (e *Engine) chooseTarget(ctx context.Context, defender *character.Combatant) (string, int, error) {
	ok, err := e.decide.Confirm(ctx, "Target a hit zone?")
	if err != nil {
		return "", 0, cancelled(err)
	}
	if !ok {
		return "", 0, nil
	}
	targets := e.zones.Targets(defender.BodyPlan, defender.Size)
	labels := make([]string, len(targets))
	for i, t := range targets {
		labels[i] = fmt.Sprintf("%s (%+d)", t.Key, -e.rules.TargetPenalty(t.Category))
	}
	choice, err := e.decide.ChooseOne(ctx, "Hit zone", labels)
	if err != nil {
		return "", 0, cancelled(err)
	}
	t := targets[choice]
	return t.Key, e.rules.TargetPenalty(t.Category), nil
}

// defenseOption is one entry of the defense menu.
type defenseOption struct {
	kind   DefenseKind
	weapon int
	label  string
}

func (e *Engine) defenseOptions(d *character.Combatant, class character.WeaponClass) []defenseOption {
	var opts []defenseOption
	if class == character.Melee {
		for _, i := range d.EligibleWeapons(character.Melee) {
			opts = append(opts, defenseOption{kind: DefenseParry, weapon: i, label: "parry with " + d.Weapons[i].Name})
		}
	}
	if i := d.Shield(); i >= 0 {
		opts = append(opts, defenseOption{kind: DefenseShield, weapon: i, label: "block with " + d.Weapons[i].Name})
	}
	opts = append(opts,
		defenseOption{kind: DefenseEvade, weapon: -1, label: "evade"},
		defenseOption{kind: DefenseNone, weapon: -1, label: "no defense"},
	)
	return opts
}

// defend lets the defender pick a response and rolls it. A critical or lucky
// attack halves the defense rating before the roll.
func (e *Engine) defend(ctx context.Context, ex *Exchange, class character.WeaponClass, attackWeapon character.Weapon) (*Defense, error) {
	d := ex.Defender
	none := &Defense{Kind: DefenseNone, Weapon: -1}
	if !e.canAct(d) {
		ex.Log.Add(StepDefense, "%s cannot defend", d.Name)
		return none, nil
	}

	opts := e.defenseOptions(d, class)
	labels := make([]string, len(opts))
	for i, o := range opts {
		labels[i] = o.label
	}
	choice, err := e.decide.ChooseOne(ctx, "Defense of "+d.Name, labels)
	if err != nil {
		return nil, cancelled(err)
	}
	opt := opts[choice]
	if opt.kind == DefenseNone {
		ex.Log.Add(StepDefense, "%s does not defend", d.Name)
		return none, nil
	}

	repeats, err := e.decide.InputNumber(ctx, "Defenses "+d.Name+" already made this round", 0)
	if err != nil {
		return nil, cancelled(err)
	}
	def := &Defense{Kind: opt.kind, Weapon: opt.weapon, Repeats: max(0, repeats)}

	in := RatingInput{Kind: RatingPA, Combatant: d, Situational: ex.Situational.Defense}
	if def.Repeats > 0 {
		in.Extra = append(in.Extra, Part{Label: "repeated defenses", Value: -e.rules.RepeatDefense * def.Repeats})
	}
	switch opt.kind {
	case DefenseEvade:
		in.Kind = RatingAW
	case DefenseParry:
		w := d.Weapons[opt.weapon]
		in.Weapon = &w
		in.OpposingReach = attackWeapon.EffectiveReach()
	case DefenseShield:
		w := d.Weapons[opt.weapon]
		in.Weapon = &w
	}
	def.Rating = e.rating(in)
	if ex.Attack.Outcome == Critical || ex.Attack.Lucky {
		halved := halve(def.Rating.Value)
		def.Rating.add("halved", halved-def.Rating.Value)
		def.Halved = true
	}
	ex.Log.Add(StepRating, "%s (%s)", def.Rating, opt.label)

	def.Check = Check(e.roller, def.Rating.Value)
	ex.Log.Add(StepDefense, "%s: %s", opt.label, def.Check)
	return def, nil
}

// rating computes a rating and passes it through the house-rule hook.
func (e *Engine) rating(in RatingInput) Rating {
	r := e.calc.Compute(in)
	if adj := e.hooks.AdjustRating(string(in.Kind), in.Combatant, r.Value); adj != r.Value {
		r.add("house rules", adj-r.Value)
	}
	return r
}

// runTable resolves table id and applies its leaf to subject. item is the
// subject's weapon index affected by weapon-state payloads, or -1.
func (e *Engine) runTable(ctx context.Context, ex *Exchange, id rules.TableID, evading bool, subject *character.Combatant, item int) error {
	res, err := e.tables.Resolve(id, evading)
	if err != nil {
		return err
	}
	ex.Tables = append(ex.Tables, res)
	for _, line := range res.Transcript {
		ex.Log.Add(StepTable, "%s: %s", id, line)
	}
	return e.applyPayload(ctx, ex, res.Payload, subject, item, string(id))
}

// applyPayload applies every effect of p to subject.
func (e *Engine) applyPayload(ctx context.Context, ex *Exchange, p rules.Payload, subject *character.Combatant, item int, source string) error {
	if p.Weapon != "" && item >= 0 && item < len(subject.Weapons) {
		w := &subject.Weapons[item]
		state := p.Weapon
		if state == character.WeaponDamaged && w.State == character.WeaponDamaged {
			state = character.WeaponBroken
		}
		w.State = state
		ex.Log.Add(StepEffect, "%s's %s is %s", subject.Name, w.Name, state)
	}
	if p.SelfDamage != "" {
		roll, err := e.roller.RollExpr(p.SelfDamage)
		if err != nil {
			return fmt.Errorf("%s self damage: %w", source, err)
		}
		n := max(0, roll.Total())
		subject.TakeDamage(n)
		ex.Log.Add(StepDamage, "%s takes %d (%s)", subject.Name, n, roll)
	}
	if err := e.grantAll(ex, subject, source, p.Condition, p.Status, p.Modifier); err != nil {
		return err
	}
	if p.Check != nil {
		passed, err := e.checker.Check(ctx, subject, *p.Check, p.Text)
		if err != nil {
			return cancelled(err)
		}
		ex.Log.Add(StepEffect, "%s check of %s %s", p.Check.Attribute, subject.Name, passFail(passed))
		if !passed && p.Check.FailStatus.Name != "" {
			if err := e.grantAll(ex, subject, source, nil, &p.Check.FailStatus, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func passFail(ok bool) string {
	if ok {
		return "passed"
	}
	return "failed"
}

// grantAll appends the ledger entries for any non-nil grant.
func (e *Engine) grantAll(ex *Exchange, c *character.Combatant, source string, cond *rules.ConditionGrant, status *rules.StatusGrant, mod *rules.ModifierGrant) error {
	if cond != nil {
		if err := e.grant(ex, c, effect.Entry{
			Name: cond.Name, Kind: effect.KindCondition, Source: source, Level: cond.Level, Rounds: cond.Rounds,
		}); err != nil {
			return err
		}
	}
	if status != nil {
		if err := e.grant(ex, c, effect.Entry{
			Name: status.Name, Kind: effect.KindStatus, Source: source, Rounds: status.Rounds,
		}); err != nil {
			return err
		}
	}
	if mod != nil {
		if err := e.grant(ex, c, effect.Entry{
			Name: source, Kind: effect.KindModifier, Source: source, Modifiers: mod.Deltas, Rounds: mod.Rounds,
		}); err != nil {
			return err
		}
	}
	return nil
}

// grant appends one entry to c's ledger and logs it.
func (e *Engine) grant(ex *Exchange, c *character.Combatant, entry effect.Entry) error {
	if err := c.Effects.Append(entry); err != nil {
		return fmt.Errorf("recording %s on %s: %w", entry.Name, c.Name, err)
	}
	ex.Log.Add(StepEffect, "%s gains %s", c.Name, describe(entry))
	return nil
}

func describe(e effect.Entry) string {
	s := e.Name
	switch e.Kind {
	case effect.KindCondition:
		s += fmt.Sprintf(" %d", e.Level)
	case effect.KindModifier:
		s += fmt.Sprintf(" %v", e.Modifiers)
	}
	switch {
	case e.Rounds == effect.Permanent:
		s += " (permanent)"
	case e.Rounds > 0:
		s += fmt.Sprintf(" (%d rounds)", e.Rounds)
	}
	return s
}

// strike determines the hit zone and applies damage and any severe injury to
// the defender.
func (e *Engine) strike(ctx context.Context, ex *Exchange, weapon character.Weapon, crit *Resolution) error {
	a, d := ex.Attacker, ex.Defender

	var zone HitZone
	if ex.Target != "" {
		z, err := e.zones.Targeted(d.BodyPlan, d.Size, ex.Target)
		if err != nil {
			return err
		}
		zone = z
	} else {
		zone = e.zones.Random(d.BodyPlan, d.Size)
	}
	ex.Zone = &zone
	ex.Log.Add(StepZone, "%s", zone)

	roll, fellBack, err := rollDamage(e.roller, weapon.Damage)
	if err != nil {
		return err
	}
	if fellBack {
		e.logger.Warn("unparseable weapon damage", zap.String("weapon", weapon.Name), zap.String("damage", weapon.Damage))
		ex.Log.Add(StepDamage, "damage %q of %s unreadable, using %s", weapon.Damage, weapon.Name, fallbackDamage)
	}
	dmg := Damage{Roll: roll, Multiplier: 1}
	dmg.AttributeBonus, dmg.Attribute = BestBonus(a.Attributes, e.rules.DamageAttributes(weapon.Technique))
	if crit != nil {
		dmg.CritBonus = crit.Payload.DamageBonus
		if crit.Payload.DamageMultiplier > 1 {
			dmg.Multiplier = crit.Payload.DamageMultiplier
		}
	}
	if dmg.Manual, err = e.decide.InputNumber(ctx, "Extra damage", 0); err != nil {
		return cancelled(err)
	}
	dmg.Total = damageTotal(roll.Total(), dmg.AttributeBonus, dmg.CritBonus, dmg.Multiplier, dmg.Manual)
	dmg.Armor = d.ArmorValue()
	dmg.Mitigated = Mitigate(dmg.Total, dmg.Armor)
	dmg.Adjusted = max(0, e.hooks.AdjustDamage(a, d, dmg.Mitigated))
	ex.Log.Add(StepDamage, "%s", dmg)

	zs := d.Zone(zone.Key, e.rules.ZonePool(zone.Category, d.MaxLife))
	wasUp := zs.Life > 0
	threshold := WoundThreshold(d.Attributes.Get(character.Constitution))
	if dmg.Adjusted > 0 && dmg.Adjusted >= threshold {
		inj, err := e.injuries.Resolve(zs, zone.Category)
		if err != nil {
			return err
		}
		ex.Injury = &inj
		if err := e.applyInjury(ex, zone, inj); err != nil {
			return err
		}
		dmg.Injury = inj.ExtraDamage
	}
	dmg.Dealt = dmg.Adjusted + dmg.Injury
	d.TakeDamage(dmg.Dealt)
	zs.TakeDamage(dmg.Dealt)
	ex.Damage = &dmg
	ex.Log.Add(StepDamage, "%s loses %d life; %s %d/%d (%s)", d.Name, dmg.Dealt, zone.Key, zs.Life, zs.MaxLife, zs.Status)

	if wasUp && zs.Life == 0 {
		if err := e.incapacitate(ex, zone); err != nil {
			return err
		}
	}
	if ex.Fatal {
		d.Life = 0
		return e.grant(ex, d, effect.Entry{Name: StatusDead, Kind: effect.KindStatus, Source: zone.Key, Rounds: effect.Permanent})
	}
	return nil
}

// applyInjury logs a severe injury and applies its payload to the defender.
func (e *Engine) applyInjury(ex *Exchange, zone HitZone, inj InjuryOutcome) error {
	d := ex.Defender
	if inj.Extreme {
		ex.Log.Add(StepInjury, "1d6=%d: %s, escalated (%d/%d): %s", inj.Roll, inj.Injury.Name, inj.Count, inj.Threshold, inj.Injury.Extreme)
		if inj.Fatal {
			ex.Fatal = true
			return nil
		}
		return e.grant(ex, d, effect.Entry{
			Name: zone.Key + " unusable", Kind: effect.KindStatus, Source: inj.Injury.Name, Rounds: effect.Permanent,
		})
	}
	ex.Log.Add(StepInjury, "1d6=%d: %s: %s", inj.Roll, inj.Injury.Name, inj.Injury.Text)
	if inj.ExtraRoll != nil {
		ex.Log.Add(StepInjury, "extra damage %s", *inj.ExtraRoll)
	}
	return e.grantAll(ex, d, inj.Injury.Name, inj.Injury.Condition, inj.Injury.Status, inj.Injury.Modifier)
}

// incapacitate applies the status for a zone whose pool just reached 0.
func (e *Engine) incapacitate(ex *Exchange, zone HitZone) error {
	name := zone.Key + " unusable"
	switch zone.Category {
	case rules.Head:
		name = StatusUnconscious
	case rules.Torso:
		name = StatusHelpless
	}
	if ex.Defender.Effects.HasStatus(name) {
		return nil
	}
	return e.grant(ex, ex.Defender, effect.Entry{Name: name, Kind: effect.KindStatus, Source: zone.Key, Rounds: effect.Permanent})
}

// settle marks c dying once total life reaches 0.
func (e *Engine) settle(ex *Exchange, c *character.Combatant) {
	if c.Life > 0 || c.Effects.HasStatus(StatusDying) || c.Effects.HasStatus(StatusDead) {
		return
	}
	if err := e.grant(ex, c, effect.Entry{Name: StatusDying, Kind: effect.KindStatus, Source: "life", Rounds: effect.Permanent}); err != nil {
		e.logger.Error("recording dying status", zap.String("combatant", c.Name), zap.Error(err))
	}
}

// alive reports whether c can take part in an exchange as defender.
func alive(c *character.Combatant) bool {
	return c != nil && !c.Effects.HasStatus(StatusDead)
}

// canAct reports whether c can attack or defend. A condition at its
// incapacitation level rules both out.
func (e *Engine) canAct(c *character.Combatant) bool {
	if !alive(c) || c.Life <= 0 ||
		c.Effects.HasStatus(StatusUnconscious) || c.Effects.HasStatus(StatusHelpless) {
		return false
	}
	return len(e.conditions.Incapacitating(e.conditions.Levels(c.ConditionLevels(), c.Effects.ConditionLevels()))) == 0
}

// primaryWeapon returns the index of c's first usable melee weapon, or -1.
func primaryWeapon(c *character.Combatant) int {
	if ws := c.EligibleWeapons(character.Melee); len(ws) > 0 {
		return ws[0]
	}
	return -1
}
