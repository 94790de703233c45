package arranger

import (
	"fmt"
	"math"

	"github.com/disintegration/imaging"
)

// ValidateFactor reports whether factor is a usable downscale factor.
func ValidateFactor(factor float64) error {
	if math.IsNaN(factor) || factor <= 0 || factor > 1 {
		return fmt.Errorf("%w: got %g", ErrInvalidDownscaleFactor, factor)
	}
	return nil
}

// DownscaledSize scales both dimensions by factor, rounding to nearest, never below 1.
func DownscaledSize(s Size, factor float64) Size {
	scale := func(v int) int {
		return max(1, int(math.Round(float64(v)*factor)))
	}
	return Size{Width: scale(s.Width), Height: scale(s.Height)}
}

// Downscale shrinks the composite uniformly. A factor of 1 returns result as is.
func Downscale(result *CompositeResult, factor float64) (*CompositeResult, error) {
	if err := ValidateFactor(factor); err != nil {
		return nil, err
	}
	if factor == 1 {
		return result, nil
	}

	target := DownscaledSize(Size{Width: result.Width, Height: result.Height}, factor)
	scaled := *result
	scaled.Image = imaging.Resize(result.Image, target.Width, target.Height, imaging.Lanczos)
	scaled.Width = target.Width
	scaled.Height = target.Height
	scaled.Score = Score(target.Width, target.Height)
	return &scaled, nil
}
