// Package defaults provides the safe payloads served when generation and
// the cache both fail. A default is a valid empty document for its
// operation, so callers always receive a well-formed response.
package defaults

import (
	"encoding/json"

	"go-ai-cache/internal/models"
)

// PayloadFor returns the default payload for an operation. It is total:
// unknown operations get an empty JSON object.
func PayloadFor(operation string) json.RawMessage {
	switch operation {
	case models.OperationTOC:
		return json.RawMessage(`{"chapters":[],"total_chapters":0}`)
	case models.OperationQuestions:
		return json.RawMessage(`{"questions":[]}`)
	case models.OperationDraft:
		return json.RawMessage(`{"content":"","sections":[]}`)
	default:
		return json.RawMessage(`{}`)
	}
}
