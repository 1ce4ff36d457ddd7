package gateway

import "errors"

// ErrRequestFailed matches every *RequestFailedError via errors.Is.
var ErrRequestFailed = errors.New("request failed")

// RequestFailedError is returned for any failed exchange. Message is already
// suitable for display.
type RequestFailedError struct {
	Operation string
	Status    int
	Message   string
	Err       error
}

func (e *RequestFailedError) Error() string {
	return e.Message
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

// Is lets callers match against ErrRequestFailed.
func (e *RequestFailedError) Is(target error) bool {
	return target == ErrRequestFailed
}

func failure(operation string, outcome Outcome) *RequestFailedError {
	return &RequestFailedError{
		Operation: operation,
		Status:    outcome.Status,
		Message:   DecodeError(operation, outcome),
		Err:       outcome.Err,
	}
}
