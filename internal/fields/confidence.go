package fields

import (
	"strings"

	"github.com/pravodoc/docrecog/constants"
)

// importantFields are the fields whose presence dominates the confidence
// score for each document type.
var importantFields = map[constants.DocType][]string{
	constants.DocTypePassport: {"firstName", "lastName", "series", "number"},
	constants.DocTypeSnils:    {"number", "lastName", "firstName"},
	constants.DocTypeLicense:  {"series", "number", "lastName"},
}

// domainKeywords are the per-type keyword sets used by the confidence
// formula. A hit means the recognized text is at least in the right
// vocabulary, independent of field extraction.
var domainKeywords = map[constants.DocType][]string{
	constants.DocTypePassport: {"паспорт", "серия", "номер"},
	constants.DocTypeSnils:    {"снилс", "страховой"},
	constants.DocTypeLicense:  {"водительское", "удостоверение", "категории"},
}

// Complete reports whether every important field for the document type is
// populated. Unknown types have no important fields and count as complete.
func Complete(set Set, docType constants.DocType) bool {
	for _, f := range importantFields[docType] {
		if set[f] == "" {
			return false
		}
	}
	return true
}

// Confidence is a pure heuristic in [0,1] combining field completeness,
// text length, and domain-keyword presence. It is a relative ranking
// signal for variant selection, not a calibrated probability.
//
//	0.3 base
//	+ 0.4 * populated important fields / total important fields
//	+ 0.1 if len(text) > 100, + 0.1 if len(text) > 500
//	+ 0.2 * matched keywords / total keywords
func Confidence(text string, set Set, docType constants.DocType) float32 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	score := float32(0.3)

	if important := importantFields[docType]; len(important) > 0 {
		populated := 0
		for _, f := range important {
			if set[f] != "" {
				populated++
			}
		}
		score += 0.4 * float32(populated) / float32(len(important))
	}

	if len(text) > 100 {
		score += 0.1
	}
	if len(text) > 500 {
		score += 0.1
	}

	if keywords := domainKeywords[docType]; len(keywords) > 0 {
		lower := strings.ToLower(text)
		matched := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched++
			}
		}
		score += 0.2 * float32(matched) / float32(len(keywords))
	}

	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return score
}
