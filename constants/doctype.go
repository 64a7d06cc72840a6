package constants

// DocType is the canonical document type handled by the recognition core.
type DocType string

// Stable values (these exact strings appear in results and logs).
const (
	DocTypePassport DocType = "passport"
	DocTypeSnils    DocType = "snils"
	DocTypeLicense  DocType = "license"
	DocTypeUnknown  DocType = "unknown"
)

// ExtractionStatus is the terminal status of a single extraction attempt.
type ExtractionStatus string

const (
	StatusOK          ExtractionStatus = "OK"          // text extracted, fields populated
	StatusPartial     ExtractionStatus = "PARTIAL"     // text extracted, some fields missing
	StatusUnextracted ExtractionStatus = "UNEXTRACTED" // no strategy produced text
)
