package entity

import "errors"

// Domain errors
var (
	// File errors
	ErrInvalidFile  = errors.New("invalid file")
	ErrFileTooLarge = errors.New("file too large")
	ErrExtraction   = errors.New("text extraction failed")

	// Index errors
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// Export errors
	ErrUnsupportedFormat = errors.New("unsupported format")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)
