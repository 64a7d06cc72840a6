package mrz

import "strings"

// digraphs are matched first, longest first, so SHCH wins over SH and CH.
// Order matters: this is a slice, not a map.
var digraphs = []struct {
	latin string
	cyr   string
}{
	{"SHCH", "Щ"},
	{"SCH", "Щ"},
	{"YA", "Я"},
	{"IA", "Я"},
	{"YU", "Ю"},
	{"IU", "Ю"},
	{"YO", "Ё"},
	{"ZH", "Ж"},
	{"KH", "Х"},
	{"TS", "Ц"},
	{"CH", "Ч"},
	{"SH", "Ш"},
	{"EY", "ЕЙ"},
	{"IY", "ИЙ"},
	{"YY", "ЫЙ"},
}

var singles = map[byte]string{
	'A': "А", 'B': "Б", 'C': "Ц", 'D': "Д", 'E': "Е", 'F': "Ф",
	'G': "Г", 'H': "Х", 'I': "И", 'J': "Й", 'K': "К", 'L': "Л",
	'M': "М", 'N': "Н", 'O': "О", 'P': "П", 'Q': "К", 'R': "Р",
	'S': "С", 'T': "Т", 'U': "У", 'V': "В", 'W': "В", 'X': "КС",
	'Y': "Ы", 'Z': "З",
}

// Transliterate converts a Latin MRZ token to Cyrillic using the digraph
// table first and the single-character map as fallback. The '<' filler
// becomes a space. Pure and deterministic; the exact output is fixed by
// the tables above.
func Transliterate(s string) string {
	s = strings.ToUpper(s)
	var b strings.Builder
	b.Grow(len(s) * 2)

	for i := 0; i < len(s); {
		if s[i] == '<' {
			b.WriteByte(' ')
			i++
			continue
		}
		matched := false
		for _, d := range digraphs {
			if strings.HasPrefix(s[i:], d.latin) {
				b.WriteString(d.cyr)
				i += len(d.latin)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if cyr, ok := singles[s[i]]; ok {
			b.WriteString(cyr)
		} else {
			b.WriteByte(s[i])
		}
		i++
	}
	return b.String()
}
