package recognize

import (
	"time"

	"github.com/pravodoc/docrecog/constants"
	"github.com/pravodoc/docrecog/internal/fields"
)

// Mode selects between the local engine pipeline and the cloud vision path.
type Mode string

const (
	ModeLocal Mode = "local"
	ModeCloud Mode = "cloud"
)

// Request describes one document to recognize. Immutable once created.
type Request struct {
	Path    string
	DocType constants.DocType // hint; DocTypeUnknown means auto-detect
	Mode    Mode
}

// Result is the sole externally visible artifact of a pipeline run.
// Confidence is always within [0,1]; fields that could not be resolved
// are absent from Fields rather than empty.
type Result struct {
	DocType    constants.DocType          `json:"docType"`
	Fields     fields.Set                 `json:"fields"`
	Confidence float32                    `json:"confidence"`
	Text       string                     `json:"text,omitempty"`
	Method     string                     `json:"method"`
	Status     constants.ExtractionStatus `json:"status"`

	// RetainUntil is set only for PDFs that no strategy could extract;
	// the caller keeps the file as metadata until this instant.
	RetainUntil time.Time `json:"retainUntil,omitzero"`
}

// Placeholder is the zero-confidence result slotted into a batch when a
// single document fails completely.
func Placeholder(docType constants.DocType) Result {
	return Result{
		DocType:    docType,
		Fields:     fields.Set{},
		Confidence: 0,
		Text:       "",
		Method:     "failed",
		Status:     constants.StatusUnextracted,
	}
}
