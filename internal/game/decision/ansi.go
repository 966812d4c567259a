package decision

import (
	"regexp"
	"strings"
)

// Style is an SGR attribute list such as "1;36" (bold cyan).
type Style string

// Prompt roles.
const (
	StyleQuestion Style = "1"
	StylePrompt   Style = "1;36"
	StyleOption   Style = "33"
	StyleDefault  Style = "90"
	StyleWarning  Style = "31"
)

const esc = "\033["

// Paint wraps text in s and a reset. An empty style returns text unchanged.
func (s Style) Paint(text string) string {
	if s == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + len(s) + 7)
	b.WriteString(esc)
	b.WriteString(string(s))
	b.WriteByte('m')
	b.WriteString(text)
	b.WriteString(esc + "0m")
	return b.String()
}

var sgr = regexp.MustCompile("\033\\[[0-9;]*m")

// StripANSI removes SGR escape sequences from s.
func StripANSI(s string) string {
	return sgr.ReplaceAllString(s, "")
}
