package contract

import "errors"

var (
	ErrInvalidIdentifier  = errors.New("invalid customer identifier")
	ErrNotFound           = errors.New("customer not found")
	ErrSummaryNotFound    = errors.New("conversation summary not found")
	ErrStorageUnavailable = errors.New("document store unavailable")
	ErrGenerationFailed   = errors.New("text generation failed")
	ErrValidation         = errors.New("validation failed")
)
