package arranger

import "errors"

var (
	// Input errors
	ErrInvalidImageCount      = errors.New("exactly 4 images are required")
	ErrInvalidDownscaleFactor = errors.New("downscale factor must be in (0, 1]")
	ErrInvalidImage           = errors.New("image must have positive width and height")

	// Internal errors
	ErrEmptyCandidateSet = errors.New("no candidate layouts to choose from")
)
