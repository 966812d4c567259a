package combat

import (
	"fmt"
	"strings"
)

// Step labels the phase of an exchange a log line belongs to.
type Step string

const (
	StepSetup   Step = "setup"
	StepRating  Step = "rating"
	StepAttack  Step = "attack"
	StepDefense Step = "defense"
	StepTable   Step = "table"
	StepZone    Step = "zone"
	StepDamage  Step = "damage"
	StepInjury  Step = "injury"
	StepEffect  Step = "effect"
	StepOutcome Step = "outcome"
)

// LogLine is one immutable transcript line.
type LogLine struct {
	Seq  int    `yaml:"seq" json:"seq"`
	Step Step   `yaml:"step" json:"step"`
	Text string `yaml:"text" json:"text"`
}

// String renders the line as "[step] text".
func (l LogLine) String() string {
	return fmt.Sprintf("[%s] %s", l.Step, l.Text)
}

// Log is the ordered, append-only transcript of one exchange.
type Log struct {
	lines []LogLine
}

// Add appends a formatted line.
//
// Postcondition: Len() grows by one and earlier lines are unchanged.
func (l *Log) Add(step Step, format string, args ...any) {
	l.lines = append(l.lines, LogLine{Seq: len(l.lines) + 1, Step: step, Text: fmt.Sprintf(format, args...)})
}

// Lines returns a copy of every line in order.
func (l *Log) Lines() []LogLine {
	out := make([]LogLine, len(l.lines))
	copy(out, l.lines)
	return out
}

// Len returns the number of lines.
func (l *Log) Len() int {
	return len(l.lines)
}

// String renders the transcript, one line per entry.
func (l *Log) String() string {
	var b strings.Builder
	for _, line := range l.lines {
		b.WriteString(line.String())
		b.WriteByte('\n')
	}
	return b.String()
}
