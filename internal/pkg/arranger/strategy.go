package arranger

import "fmt"

// Strategy is the top-level arrangement plan chosen from orientation counts.
type Strategy int

const (
	AllLandscape Strategy = iota
	AllPortrait
	Mixed
	Dominant
	Grid
)

func (s Strategy) String() string {
	switch s {
	case AllLandscape:
		return "all_landscape"
	case AllPortrait:
		return "all_portrait"
	case Mixed:
		return "mixed"
	case Dominant:
		return "dominant"
	case Grid:
		return "grid"
	default:
		return "unknown"
	}
}

// OrientationCounts tallies orientations of a set of images.
type OrientationCounts struct {
	Portrait  int `json:"portrait"`
	Landscape int `json:"landscape"`
	Square    int `json:"square"`
}

func CountOrientations(orientations []Orientation) OrientationCounts {
	var c OrientationCounts
	for _, o := range orientations {
		switch o {
		case Portrait:
			c.Portrait++
		case Landscape:
			c.Landscape++
		default:
			c.Square++
		}
	}
	return c
}

// strategyRules are evaluated in order, the first match wins.
var strategyRules = []struct {
	strategy Strategy
	match    func(c OrientationCounts) bool
}{
	{AllLandscape, func(c OrientationCounts) bool { return c.Portrait == 0 && c.Landscape == 4 }},
	{AllPortrait, func(c OrientationCounts) bool { return c.Landscape == 0 && c.Portrait == 4 }},
	{Mixed, func(c OrientationCounts) bool { return c.Portrait >= 2 && c.Landscape >= 2 }},
	{Dominant, func(c OrientationCounts) bool { return c.Portrait >= 3 || c.Landscape >= 3 }},
}

func SelectStrategy(orientations []Orientation) (Strategy, error) {
	if len(orientations) != ImageCount {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidImageCount, len(orientations))
	}

	counts := CountOrientations(orientations)
	for _, rule := range strategyRules {
		if rule.match(counts) {
			return rule.strategy, nil
		}
	}
	return Grid, nil
}
