// Package mrz decodes the machine-readable zone printed at the bottom of
// identity documents: an ICAO-style two-line band in a restricted
// character set (A-Z, 0-9, '<' filler).
//
// Check digits are intentionally not validated; a structurally plausible
// band is accepted as-is. This keeps the decoder a pure text transform.
package mrz

import (
	"regexp"
	"strings"

	"github.com/pravodoc/docrecog/internal/fields"
)

// Whitelist is the character set used for the restricted recognition pass
// over the MRZ band.
const Whitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789<"

var (
	// P<RUSSURNAME<<GIVEN<NAMES...
	reNameLine = regexp.MustCompile(`P[A-Z<]([A-Z]{3})([A-Z]+(?:<[A-Z]+)*)<<([A-Z][A-Z<]*)`)
	// ten digits directly before a country token: 4-digit series + 6-digit number
	reNumber = regexp.MustCompile(`(\d{10})[A-Z]{3}`)
)

// Decode parses raw MRZ-band text into name and number fields. Names are
// transliterated to Cyrillic and stay uppercase, as printed in the band.
// Fields that cannot be parsed are absent from the result.
func Decode(text string) fields.Set {
	out := fields.Set{}
	compact := strings.ToUpper(strings.TrimSpace(text))

	if m := reNameLine.FindStringSubmatch(compact); m != nil {
		surname := strings.TrimRight(m[2], "<")
		given := strings.TrimRight(m[3], "<")

		if surname != "" {
			out["lastName"] = Transliterate(surname)
		}
		if given != "" {
			names := strings.Fields(Transliterate(given))
			if len(names) > 0 {
				out["firstName"] = names[0]
			}
			if len(names) > 1 {
				out["middleName"] = strings.Join(names[1:], " ")
			}
		}
	}

	if m := reNumber.FindStringSubmatch(compact); m != nil {
		digits := m[1]
		out["series"] = digits[:4]
		out["number"] = digits[4:]
	}

	return out
}
