package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// umlauts are spelled out the way German stat blocks transliterate them.
var umlauts = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "Ä", "Ae", "Ö", "Oe", "Ü", "Ue", "ß", "ss",
)

// NameToID derives a store identifier from a display name: "Thorwal's
// Finest" becomes "thorwals_finest" and "Ærwin Größer" becomes "aerwin_groesser".
//
// Postcondition: the result matches ^([a-z0-9]+(_[a-z0-9]+)*)?$ and
// NameToID(NameToID(s)) == NameToID(s).
func NameToID(name string) string {
	s := umlauts.Replace(name)
	s = strings.NewReplacer("Æ", "Ae", "æ", "ae", "Ø", "O", "ø", "o").Replace(s)
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err == nil {
		s = stripped
	}

	var b strings.Builder
	gap := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '\'' || r == '’':
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if gap && b.Len() > 0 {
				b.WriteByte('_')
			}
			gap = false
			b.WriteRune(r)
		default:
			gap = true
		}
	}
	return b.String()
}
