package fields

import (
	"regexp"
	"strings"

	"github.com/pravodoc/docrecog/constants"
)

// Set maps field names to extracted string values. Unresolved fields are
// absent, never empty strings.
type Set map[string]string

// fieldPattern binds one field to one regex attempt. Patterns for the same
// field are tried in table order; the first match wins.
type fieldPattern struct {
	field string
	re    *regexp.Regexp
	group int
}

// Shared name patterns. Labeled forms first, then a bare
// "Фамилия Имя Отчество" run anchored on the patronymic suffix.
// Go's \b is ASCII-only, so Cyrillic patterns avoid word boundaries.
const nameTriple = `([А-ЯЁ][а-яё]+)\s+([А-ЯЁ][а-яё]+)\s+([А-ЯЁ][а-яё]+(?:вич|вна|ична))`

var tables = map[constants.DocType][]fieldPattern{
	constants.DocTypePassport: {
		{"series", regexp.MustCompile(`(?i)серия[:\s]*(\d{2}\s?\d{2})`), 1},
		{"series", regexp.MustCompile(`(\d{2}\s\d{2})\s+\d{6}`), 1},
		{"number", regexp.MustCompile(`(?i)номер[:\s]*(\d{6})`), 1},
		{"number", regexp.MustCompile(`\d{2}\s?\d{2}\s+(\d{6})`), 1},
		{"lastName", regexp.MustCompile(`(?i)фамилия[:\s]*([А-ЯЁ][а-яё]+)`), 1},
		{"lastName", regexp.MustCompile(nameTriple), 1},
		{"firstName", regexp.MustCompile(`(?i)имя[:\s]*([А-ЯЁ][а-яё]+)`), 1},
		{"firstName", regexp.MustCompile(nameTriple), 2},
		{"middleName", regexp.MustCompile(`(?i)отчество[:\s]*([А-ЯЁ][а-яё]+)`), 1},
		{"middleName", regexp.MustCompile(nameTriple), 3},
		{"birthDate", regexp.MustCompile(`(?i)дата рождения[:\s]*(\d{2}\.\d{2}\.\d{4})`), 1},
		{"birthPlace", regexp.MustCompile(`(?i)место рождения[:\s]*([^\n,]+)`), 1},
		{"issueDate", regexp.MustCompile(`(?i)дата выдачи[:\s]*(\d{2}\.\d{2}\.\d{4})`), 1},
		{"issuedBy", regexp.MustCompile(`(?i)(?:паспорт\s+)?выдан[:\s]+([^\n]+)`), 1},
		{"departmentCode", regexp.MustCompile(`(?i)код подразделения[:\s]*(\d{3}-\d{3})`), 1},
	},
	constants.DocTypeSnils: {
		{"number", regexp.MustCompile(`(?i)снилс[:\s№]*(\d{3}[-\s]?\d{3}[-\s]?\d{3}[-\s]?\d{2})`), 1},
		{"number", regexp.MustCompile(`(\d{3}-\d{3}-\d{3}[-\s]\d{2})`), 1},
		{"lastName", regexp.MustCompile(`(?i)фамилия[:\s]*([А-ЯЁ][а-яё]+)`), 1},
		{"lastName", regexp.MustCompile(nameTriple), 1},
		{"firstName", regexp.MustCompile(`(?i)имя[:\s]*([А-ЯЁ][а-яё]+)`), 1},
		{"firstName", regexp.MustCompile(nameTriple), 2},
		{"middleName", regexp.MustCompile(`(?i)отчество[:\s]*([А-ЯЁ][а-яё]+)`), 1},
		{"middleName", regexp.MustCompile(nameTriple), 3},
		{"birthDate", regexp.MustCompile(`(?i)дата рождения[:\s]*(\d{2}\.\d{2}\.\d{4})`), 1},
	},
	constants.DocTypeLicense: {
		{"series", regexp.MustCompile(`(?i)серия[:\s]*(\d{2}\s?\d{2})`), 1},
		{"number", regexp.MustCompile(`(?i)номер[:\s]*(\d{6})`), 1},
		{"lastName", regexp.MustCompile(nameTriple), 1},
		{"firstName", regexp.MustCompile(nameTriple), 2},
		{"middleName", regexp.MustCompile(nameTriple), 3},
		{"categories", regexp.MustCompile(`(?i)категори[ияй]+[:\s]*([ABCDEMАВСДЕМ][ABCDEM1АВСДЕМ,\s]*)`), 1},
		{"issueDate", regexp.MustCompile(`(?i)дата выдачи[:\s]*(\d{2}\.\d{2}\.\d{4})`), 1},
		{"expiryDate", regexp.MustCompile(`(?i)(?:действительно до|дата окончания)[:\s]*(\d{2}\.\d{2}\.\d{4})`), 1},
	},
}

// digitsOnly fields get inner whitespace stripped so zone and full-image
// passes agree on spelling.
var digitFields = map[string]struct{}{
	"series": {},
	"number": {},
}

// Extract runs the document type's pattern table over raw text. The first
// matching pattern per field wins. An unknown type yields the raw text as
// a single "text" field.
func Extract(text string, docType constants.DocType) Set {
	out := Set{}
	if text == "" {
		return out
	}
	table, ok := tables[docType]
	if !ok {
		out["text"] = strings.TrimSpace(text)
		return out
	}
	for _, p := range table {
		if _, done := out[p.field]; done {
			continue
		}
		m := p.re.FindStringSubmatch(text)
		if m == nil || p.group >= len(m) {
			continue
		}
		v := strings.TrimSpace(m[p.group])
		if v == "" {
			continue
		}
		if _, digital := digitFields[p.field]; digital {
			v = strings.ReplaceAll(v, " ", "")
		}
		out[p.field] = v
	}
	return out
}

// Merge copies values from src into dst for fields dst does not have yet.
// Already-found fields are never overwritten.
func (s Set) Merge(src Set) {
	for k, v := range src {
		if _, ok := s[k]; !ok && v != "" {
			s[k] = v
		}
	}
}

// Clone returns a shallow copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// DetectDocType guesses a document type from keyword presence when the
// caller gave no hint.
func DetectDocType(text string) constants.DocType {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "паспорт") && strings.Contains(lower, "серия") && strings.Contains(lower, "номер"):
		return constants.DocTypePassport
	case strings.Contains(lower, "снилс"):
		return constants.DocTypeSnils
	case strings.Contains(lower, "водительское") || strings.Contains(lower, "категории"):
		return constants.DocTypeLicense
	default:
		return constants.DocTypeUnknown
	}
}
