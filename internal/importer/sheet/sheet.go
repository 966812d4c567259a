// Package sheet parses semi-structured text stat blocks into combatant records.
//
// A stat block is a sequence of "Key: value" lines:
//
//	Name: Orc Raider
//	Attributes: MU 12, KL 9, IN 11, CH 8, FF 10, GE 12, KK 14, KO 13
//	Life: 30/32
//	Body: humanoid
//	Size: medium
//	Skills: swords 12, evasion 7, shields 8
//	Weapon: Sabre | 1d6+3 | swords | medium | PA-1
//	Weapon: Shortbow | 1d6+4 | bows | ranged
//	Armor: Leather | 2 | 1
//	Condition: pain 1
//
// Keys are case-insensitive. Blank lines, '#' comments, and unknown keys are
// skipped. Several blocks may share one text when separated by a "---" line.
package sheet

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/dice"
)

// ErrNoBlock is returned when the text holds no stat block.
var ErrNoBlock = errors.New("sheet: no stat block found")

// abbreviations maps the short attribute names found on printed sheets.
var abbreviations = map[string]character.Attribute{
	"mu": character.Courage,
	"kl": character.Sagacity,
	"in": character.Intuition,
	"ch": character.Charisma,
	"ff": character.Dexterity,
	"ge": character.Agility,
	"kk": character.Strength,
	"ko": character.Constitution,
}

// block is the parsed form of one stat block before it becomes a Combatant.
type block struct {
	Name       string `validate:"required"`
	Life       int    `validate:"gte=0,ltefield=MaxLife"`
	MaxLife    int    `validate:"gt=0"`
	Attributes map[character.Attribute]int `validate:"dive,gt=0"`
	Skills     map[string]int              `validate:"dive,gte=0"`
	Weapons    []character.Weapon          `validate:"dive"`
	Armor      []character.Armor
	Conditions []character.Condition
	BodyPlan   character.BodyPlan `validate:"omitempty,oneof=humanoid quadruped hexapod tentacled none"`
	Size       character.Size     `validate:"omitempty,oneof=tiny small medium large huge"`
	line       int
}

var (
	validateOnce sync.Once
	structs      *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		structs = validator.New()
		structs.RegisterStructValidation(func(sl validator.StructLevel) {
			w := sl.Current().Interface().(character.Weapon)
			if w.Name == "" {
				sl.ReportError(w.Name, "Name", "Name", "required", "")
			}
			if _, err := dice.Parse(w.Damage); err != nil {
				sl.ReportError(w.Damage, "Damage", "Damage", "dice", "")
			}
			if w.Technique == "" {
				sl.ReportError(w.Technique, "Technique", "Technique", "required", "")
			}
		}, character.Weapon{})
	})
	return structs
}

// Parse reads exactly one stat block from text.
//
// Postcondition: Returns a Combatant with an empty ID and zero Version, or a
// non-nil error naming the offending line.
func Parse(text string) (*character.Combatant, error) {
	all, err := ParseAll(text)
	if err != nil {
		return nil, err
	}
	if len(all) != 1 {
		return nil, fmt.Errorf("sheet: expected one stat block, found %d", len(all))
	}
	return all[0], nil
}

// ParseAll reads every stat block in text.
//
// Postcondition: Returns at least one Combatant, or an error wrapping ErrNoBlock
// when text holds none.
func ParseAll(text string) ([]*character.Combatant, error) {
	var (
		out []*character.Combatant
		cur *block
	)
	flush := func() error {
		if cur == nil {
			return nil
		}
		c, err := cur.combatant()
		if err != nil {
			return err
		}
		out = append(out, c)
		cur = nil
		return nil
	}

	sc := bufio.NewScanner(strings.NewReader(text))
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "---"):
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if cur == nil {
			cur = &block{
				Attributes: make(map[character.Attribute]int),
				Skills:     make(map[string]int),
				line:       n,
			}
		}
		if err := cur.set(strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(value)); err != nil {
			return nil, fmt.Errorf("sheet: line %d: %w", n, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("sheet: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoBlock
	}
	return out, nil
}

func (b *block) set(key, value string) error {
	switch key {
	case "name":
		b.Name = value
	case "attributes", "eigenschaften":
		pairs, err := namedInts(value)
		if err != nil {
			return fmt.Errorf("attributes: %w", err)
		}
		for _, p := range pairs {
			attr, ok := attribute(p.name)
			if !ok {
				return fmt.Errorf("attributes: unknown attribute %q", p.name)
			}
			b.Attributes[attr] = p.value
		}
	case "life", "le", "lep":
		cur, maxLife, err := life(value)
		if err != nil {
			return err
		}
		b.Life, b.MaxLife = cur, maxLife
	case "body", "body plan":
		b.BodyPlan = character.BodyPlan(strings.ToLower(value))
	case "size":
		b.Size = character.Size(strings.ToLower(value))
	case "skills", "techniques":
		pairs, err := namedInts(value)
		if err != nil {
			return fmt.Errorf("skills: %w", err)
		}
		for _, p := range pairs {
			b.Skills[p.name] = p.value
		}
	case "weapon", "shield":
		w, err := weapon(value)
		if err != nil {
			return fmt.Errorf("weapon: %w", err)
		}
		if key == "shield" && w.Technique == "" {
			w.Technique = character.ShieldTechnique
		}
		b.Weapons = append(b.Weapons, w)
	case "armor", "armour":
		a, err := armor(value)
		if err != nil {
			return fmt.Errorf("armor: %w", err)
		}
		b.Armor = append(b.Armor, a)
	case "condition", "conditions":
		pairs, err := namedInts(value)
		if err != nil {
			return fmt.Errorf("condition: %w", err)
		}
		for _, p := range pairs {
			b.Conditions = append(b.Conditions, character.Condition{Name: p.name, Level: min(max(p.value, 0), 5)})
		}
	}
	return nil
}

func (b *block) combatant() (*character.Combatant, error) {
	if err := structValidator().Struct(b); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return nil, fmt.Errorf("sheet: block at line %d: %s", b.line, strings.Join(msgs, "; "))
		}
		return nil, fmt.Errorf("sheet: block at line %d: %w", b.line, err)
	}
	c := &character.Combatant{
		Name:       b.Name,
		Life:       b.Life,
		MaxLife:    b.MaxLife,
		BodyPlan:   b.BodyPlan,
		Size:       b.Size,
		Skills:     b.Skills,
		Weapons:    b.Weapons,
		Armor:      b.Armor,
		Conditions: b.Conditions,
	}
	for attr, v := range b.Attributes {
		c.Attributes.Set(attr, v)
	}
	return c, nil
}

func attribute(name string) (character.Attribute, bool) {
	name = strings.ToLower(name)
	if a, ok := abbreviations[name]; ok {
		return a, true
	}
	for _, a := range character.AllAttributes {
		if string(a) == name {
			return a, true
		}
	}
	return "", false
}

type namedInt struct {
	name  string
	value int
}

// namedInts parses "a 1, b c 2" into [{a 1} {b c 2}]. The last field of each
// comma-separated item is the value; the rest is the name.
func namedInts(s string) ([]namedInt, error) {
	var out []namedInt
	for _, item := range strings.Split(s, ",") {
		fields := strings.Fields(item)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("%q: expected name and value", strings.TrimSpace(item))
		}
		v, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			return nil, fmt.Errorf("%q: %w", strings.TrimSpace(item), err)
		}
		out = append(out, namedInt{
			name:  strings.ToLower(strings.Join(fields[:len(fields)-1], " ")),
			value: v,
		})
	}
	return out, nil
}

// life parses "30/32" or "32".
func life(s string) (int, int, error) {
	cur, maxStr, split := strings.Cut(s, "/")
	c, err := strconv.Atoi(strings.TrimSpace(cur))
	if err != nil {
		return 0, 0, fmt.Errorf("life: %w", err)
	}
	if !split {
		return c, c, nil
	}
	m, err := strconv.Atoi(strings.TrimSpace(maxStr))
	if err != nil {
		return 0, 0, fmt.Errorf("life: %w", err)
	}
	return c, m, nil
}

// weapon parses "name | damage | technique" followed by optional fields in any
// order: a reach name, a class, "AT±n", and "PA±n".
func weapon(s string) (character.Weapon, error) {
	parts := splitPipes(s)
	if len(parts) < 2 {
		return character.Weapon{}, fmt.Errorf("%q: expected at least name and damage", s)
	}
	w := character.Weapon{Name: parts[0], Damage: parts[1], Class: character.Melee}
	if len(parts) > 2 {
		w.Technique = strings.ToLower(parts[2])
	}
	for _, opt := range parts[min(3, len(parts)):] {
		lower := strings.ToLower(opt)
		switch {
		case lower == "short" || lower == "medium" || lower == "long":
			w.Reach = character.ParseReach(lower)
		case lower == string(character.Melee) || lower == string(character.Ranged):
			w.Class = character.WeaponClass(lower)
		case strings.HasPrefix(lower, "at"):
			v, err := strconv.Atoi(strings.TrimSpace(lower[2:]))
			if err != nil {
				return character.Weapon{}, fmt.Errorf("%q: attack modifier: %w", opt, err)
			}
			w.AttackMod = v
		case strings.HasPrefix(lower, "pa"):
			v, err := strconv.Atoi(strings.TrimSpace(lower[2:]))
			if err != nil {
				return character.Weapon{}, fmt.Errorf("%q: parry modifier: %w", opt, err)
			}
			w.ParryMod = v
		default:
			return character.Weapon{}, fmt.Errorf("unrecognised field %q", opt)
		}
	}
	return w, nil
}

// armor parses "name | protection [| encumbrance]".
func armor(s string) (character.Armor, error) {
	parts := splitPipes(s)
	if len(parts) < 2 {
		return character.Armor{}, fmt.Errorf("%q: expected name and protection", s)
	}
	p, err := strconv.Atoi(parts[1])
	if err != nil || p < 0 {
		return character.Armor{}, fmt.Errorf("%q: protection must be a non-negative integer", parts[1])
	}
	a := character.Armor{Name: parts[0], Protection: p}
	if len(parts) > 2 {
		e, err := strconv.Atoi(parts[2])
		if err != nil || e < 0 {
			return character.Armor{}, fmt.Errorf("%q: encumbrance must be a non-negative integer", parts[2])
		}
		a.Encumbrance = e
	}
	return a, nil
}

func splitPipes(s string) []string {
	raw := strings.Split(s, "|")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
