package suggestion

import "fmt"

// Reason codes surfaced to the UI for rejected requests.
const (
	CodeEmptyTechnicianPool = "emptyTechnicianPool"
	CodeInvalidDateRange    = "invalidDateRange"
	CodeInvalidDuration     = "invalidDuration"
)

// SuggestError is a typed input/configuration error.
type SuggestError struct {
	Code    string
	Message string
}

func (e *SuggestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newSuggestError(code, msg string) error {
	return &SuggestError{Code: code, Message: msg}
}
