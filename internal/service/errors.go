package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/gema-grader/internal/archive"
	"github.com/noah-isme/gema-grader/internal/gateway"
)

var (
	// ErrEmptyPayload indicates a successful download that carried no bytes.
	ErrEmptyPayload = errors.New("server returned an empty document")
	// ErrMalformedStoredResult indicates the persisted result is not a valid GradingResult.
	ErrMalformedStoredResult = errors.New("stored grading result is malformed")
	// ErrNoStoredResult indicates nothing has been persisted yet.
	ErrNoStoredResult = errors.New("no stored grading result")
)

// Message converts any error returned by this package into one string that
// can be shown to the user as-is.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var failed *gateway.RequestFailedError
	if errors.As(err, &failed) {
		return failed.Message
	}

	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) && len(invalid) > 0 {
		return validationMessage(invalid[0])
	}

	switch {
	case errors.Is(err, archive.ErrArchiveIncomplete):
		return "One or more sample files not found in the zip archive."
	case errors.Is(err, archive.ErrArchiveCorrupt):
		return "The sample files could not be unpacked. Please try again."
	case errors.Is(err, ErrEmptyPayload):
		return "The server returned an empty document. Please try again."
	case errors.Is(err, ErrMalformedStoredResult):
		return "Failed to load grading results."
	case errors.Is(err, ErrNoStoredResult):
		return "We couldn't find any grading results for this session."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return gateway.MessageCancelled
	default:
		return "An unexpected error occurred: " + err.Error()
	}
}
