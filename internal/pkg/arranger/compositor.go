package arranger

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// CompositeResult is a rendered composite. Layout keeps the dimensions the
// composite was rendered at, Width and Height may be smaller after Downscale.
type CompositeResult struct {
	Image    image.Image
	Width    int
	Height   int
	Strategy Strategy
	Layout   Layout
	Score    float64
}

func (r *CompositeResult) StrategyUsed() string {
	return r.Strategy.String()
}

// Render resamples and pastes the images the way layout describes. The
// result always has exactly the layout's width and height. Source images are
// only read.
func Render(layout Layout, images []image.Image) (*CompositeResult, error) {
	if len(images) != ImageCount {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidImageCount, len(images))
	}
	if layout.Root == nil {
		return nil, errEmptyLayout
	}

	for _, leafNode := range leafNodes(layout.Root) {
		img := images[leafNode.Source]
		if img == nil {
			return nil, fmt.Errorf("%w: image %d is nil", ErrInvalidImage, leafNode.Source)
		}
		if got := SizeOf(img); got != leafNode.Size {
			return nil, fmt.Errorf("%w: image %d is %dx%d, layout expects %dx%d", ErrInvalidImage,
				leafNode.Source, got.Width, got.Height, leafNode.Size.Width, leafNode.Size.Height)
		}
	}

	canvas := renderNode(layout.Root, images)

	return &CompositeResult{
		Image:    canvas,
		Width:    layout.Width,
		Height:   layout.Height,
		Strategy: layout.Strategy,
		Layout:   layout,
		Score:    layout.Score(),
	}, nil
}

func leafNodes(n *Node) []*Node {
	if n.IsLeaf() {
		return []*Node{n}
	}
	return append(leafNodes(n.First), leafNodes(n.Second)...)
}

func renderNode(n *Node, images []image.Image) image.Image {
	if n.IsLeaf() {
		return images[n.Source]
	}

	sizeA, sizeB := n.Members()
	a := fitImage(renderNode(n.First, images), sizeA)
	b := fitImage(renderNode(n.Second, images), sizeB)

	offset := image.Pt(sizeA.Width, 0)
	if n.Axis == Vertical {
		offset = image.Pt(0, sizeA.Height)
	}

	canvas := imaging.New(n.Size.Width, n.Size.Height, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	canvas = imaging.Paste(canvas, a, image.Pt(0, 0))
	canvas = imaging.Paste(canvas, b, offset)
	return canvas
}

func fitImage(img image.Image, s Size) image.Image {
	if SizeOf(img) == s {
		return img
	}
	return imaging.Resize(img, s.Width, s.Height, imaging.Lanczos)
}
