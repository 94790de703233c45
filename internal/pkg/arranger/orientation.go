package arranger

import "image"

// ImageCount is the number of images a composite is built from.
const ImageCount = 4

type Orientation int

const (
	Portrait Orientation = iota
	Landscape
	Square
)

func (o Orientation) String() string {
	switch o {
	case Portrait:
		return "portrait"
	case Landscape:
		return "landscape"
	case Square:
		return "square"
	default:
		return "unknown"
	}
}

// Size holds declared image dimensions in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func SizeOf(img image.Image) Size {
	b := img.Bounds()
	return Size{Width: b.Dx(), Height: b.Dy()}
}

func (s Size) valid() bool {
	return s.Width > 0 && s.Height > 0
}

// AspectRatio is width divided by height.
func (s Size) AspectRatio() float64 {
	return float64(s.Width) / float64(s.Height)
}

func ClassifySize(s Size) Orientation {
	switch {
	case s.Width == s.Height:
		return Square
	case s.Height > s.Width:
		return Portrait
	default:
		return Landscape
	}
}

func Classify(img image.Image) Orientation {
	return ClassifySize(SizeOf(img))
}
