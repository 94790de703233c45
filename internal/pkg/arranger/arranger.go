// Package arranger lays out four images into one composite that is as close
// to square as possible.
//
// Arrangement runs in two phases. Candidate layouts are enumerated and scored
// using only image dimensions, then the winning layout alone is rendered.
// The package keeps no state between calls and is safe for concurrent use.
package arranger

import (
	"fmt"
	"image"
)

// Plan is the analytic result of arranging four images, before any pixels are touched.
type Plan struct {
	Sizes        []Size
	Orientations []Orientation
	Counts       OrientationCounts
	Strategy     Strategy
	Candidates   []Layout
	Best         Layout
}

func MakePlan(sizes []Size) (*Plan, error) {
	if len(sizes) != ImageCount {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidImageCount, len(sizes))
	}

	orientations := make([]Orientation, len(sizes))
	for i, s := range sizes {
		if !s.valid() {
			return nil, fmt.Errorf("%w: image %d is %dx%d", ErrInvalidImage, i, s.Width, s.Height)
		}
		orientations[i] = ClassifySize(s)
	}

	strategy, err := SelectStrategy(orientations)
	if err != nil {
		return nil, err
	}

	candidates, err := BuildCandidates(strategy, sizes)
	if err != nil {
		return nil, err
	}

	best, err := PickBest(candidates)
	if err != nil {
		return nil, fmt.Errorf("%s strategy: %w", strategy, err)
	}

	return &Plan{
		Sizes:        sizes,
		Orientations: orientations,
		Counts:       CountOrientations(orientations),
		Strategy:     strategy,
		Candidates:   candidates,
		Best:         best,
	}, nil
}

// BuildComposite arranges exactly four images and optionally downscales the
// result by factor, which must be in (0, 1].
func BuildComposite(images []image.Image, factor float64) (*CompositeResult, error) {
	if len(images) != ImageCount {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidImageCount, len(images))
	}
	if err := ValidateFactor(factor); err != nil {
		return nil, err
	}

	sizes := make([]Size, len(images))
	for i, img := range images {
		if img == nil {
			return nil, fmt.Errorf("%w: image %d is nil", ErrInvalidImage, i)
		}
		sizes[i] = SizeOf(img)
	}

	plan, err := MakePlan(sizes)
	if err != nil {
		return nil, err
	}

	result, err := Render(plan.Best, images)
	if err != nil {
		return nil, err
	}

	return Downscale(result, factor)
}
