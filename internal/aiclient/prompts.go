package aiclient

import (
	"encoding/json"
	"fmt"

	"go-ai-cache/internal/models"
)

// PromptFor builds the system and user prompts for an operation from its
// request parameters. It is total: unknown operations get a generic
// prompt, and missing parameters fall back to empty strings so prompt
// construction can never fail a request.
func PromptFor(operation string, params map[string]interface{}) (system, user string) {
	switch operation {
	case models.OperationTOC:
		system = "You are a book-outlining assistant. Respond with a JSON object " +
			`{"chapters": [{"number": int, "title": string, "synopsis": string}], "total_chapters": int}.`
		user = fmt.Sprintf("Create a table of contents for a book based on this summary:\n\n%s",
			stringParam(params, "summary"))
	case models.OperationQuestions:
		system = "You are a writing coach. Respond with a JSON object " +
			`{"questions": [string]} containing clarifying questions for the chapter.`
		user = fmt.Sprintf("Chapter title: %s\nSynopsis: %s\n\nAsk the author the clarifying questions needed to draft this chapter.",
			stringParam(params, "chapter_title"),
			stringParam(params, "synopsis"))
	case models.OperationDraft:
		system = "You are a ghostwriter. Respond with a JSON object " +
			`{"content": string, "sections": [string]} holding the chapter draft.`
		user = fmt.Sprintf("Chapter title: %s\nAuthor responses: %s\n\nWrite the chapter draft.",
			stringParam(params, "chapter_title"),
			stringParam(params, "responses"))
	default:
		system = "Respond with a single JSON object."
		user = stringParam(params, "prompt")
	}
	return system, user
}

// stringParam renders a parameter for prompt interpolation. Non-string
// values are JSON-encoded so lists and objects read sensibly.
func stringParam(params map[string]interface{}, name string) string {
	value, ok := params[name]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}
