package models

// Operation names understood by the generation handlers.
const (
	OperationTOC       = "toc"
	OperationQuestions = "questions"
	OperationDraft     = "draft"
)

// KnownOperation reports whether the handlers expose the given operation.
func KnownOperation(operation string) bool {
	switch operation {
	case OperationTOC, OperationQuestions, OperationDraft:
		return true
	}
	return false
}
