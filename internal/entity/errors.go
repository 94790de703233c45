package entity

import "errors"

var (
	// Composite errors
	ErrCompositeNotFound = errors.New("composite not found")
	ErrCompositeNotReady = errors.New("composite is not ready yet")

	// Input errors
	ErrInvalidInput = errors.New("invalid input")
	ErrFileTooLarge = errors.New("file is too large")
)
