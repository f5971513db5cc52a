package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrEmptyMatrix     = errors.New("expression matrix is empty")
	ErrRaggedRow       = errors.New("row length does not match header")
	ErrNonNumericValue = errors.New("non-numeric expression value")
	ErrDuplicateGene   = errors.New("duplicate gene identifier")
	ErrEmptyTFList     = errors.New("transcription factor list is empty")

	// Inference errors
	ErrNoRegulators      = errors.New("no transcription factor present in expression matrix")
	ErrInsufficientData  = errors.New("insufficient samples for inference")
	ErrInvalidParameters = errors.New("invalid inference parameters")

	// Plan errors
	ErrDuplicateDataset = errors.New("duplicate dataset name")
	ErrNegativeSeed     = errors.New("seed must be non-negative")
	ErrUnknownLayout    = errors.New("unknown expression layout")
)

// Error constructors with context
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewParseError(path string, line int, err error) error {
	return fmt.Errorf("%s:%d: %w", path, line, err)
}

// IsInputError reports whether err stems from malformed input data
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyMatrix) ||
		errors.Is(err, ErrRaggedRow) ||
		errors.Is(err, ErrNonNumericValue) ||
		errors.Is(err, ErrDuplicateGene) ||
		errors.Is(err, ErrEmptyTFList)
}
