package vision

import (
	"context"
	"strings"

	"github.com/pravodoc/docrecog/internal/common"
)

// Client sends one image and one prompt to a vision model and returns the
// raw model text. Implementations must honor ctx cancellation.
type Client interface {
	Recognize(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
}

// refusalMarkers are substrings a vision model emits when it declines to
// read an identity document. Any hit maps the response to ErrRefused so
// the caller can fall back to the local engine.
var refusalMarkers = []string{
	"i'm sorry",
	"i am sorry",
	"can't assist",
	"cannot assist",
	"не могу помочь",
	"не могу обработать",
	"policy",
	"refuse",
	"unable to",
}

// CheckRefusal returns ErrRefused when the model text reads like a policy
// refusal rather than document content.
func CheckRefusal(text string) error {
	lower := strings.ToLower(text)
	for _, marker := range refusalMarkers {
		if strings.Contains(lower, marker) {
			return common.NewAppError("VISION_REFUSED", "model declined to read the document", common.ErrRefused)
		}
	}
	return nil
}
