package arranger

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	errStrategyMismatch = errors.New("strategy does not match image orientations")
	errEmptyLayout      = errors.New("layout has no root node")
)

// Axis is the direction two images are concatenated in.
type Axis int

const (
	Horizontal Axis = iota // side by side
	Vertical               // top and bottom
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// outerAxes is the order outer joins are tried in, vertical first.
var outerAxes = []Axis{Vertical, Horizontal}

// axisFor returns the join axis that keeps images of orientation o closest to square:
// portraits go side by side, landscapes are stacked.
func axisFor(o Orientation) Axis {
	if o == Landscape {
		return Vertical
	}
	return Horizontal
}

// Node is either a source image (leaf) or a join of two nodes.
// Size is computed when the node is built and never changes.
type Node struct {
	Source int
	Axis   Axis
	First  *Node
	Second *Node
	Size   Size
}

func leaf(index int, s Size) *Node {
	return &Node{Source: index, Size: s}
}

func join(axis Axis, first, second *Node) *Node {
	a, b := fitPair(axis, first.Size, second.Size)

	size := Size{Width: a.Width + b.Width, Height: a.Height}
	if axis == Vertical {
		size = Size{Width: a.Width, Height: a.Height + b.Height}
	}

	return &Node{Source: -1, Axis: axis, First: first, Second: second, Size: size}
}

func (n *Node) IsLeaf() bool {
	return n.First == nil && n.Second == nil
}

// Members returns the sizes both children are resized to before they are joined.
func (n *Node) Members() (Size, Size) {
	return fitPair(n.Axis, n.First.Size, n.Second.Size)
}

// Sources lists the leaf indices in paste order.
func (n *Node) Sources() []int {
	if n.IsLeaf() {
		return []int{n.Source}
	}
	return append(n.First.Sources(), n.Second.Sources()...)
}

func (n *Node) String() string {
	if n.IsLeaf() {
		return strconv.Itoa(n.Source)
	}
	prefix := "H"
	if n.Axis == Vertical {
		prefix = "V"
	}
	return fmt.Sprintf("%s(%s,%s)", prefix, n.First, n.Second)
}

// fitPair applies the downscale-only join rule: along a horizontal join both
// images take the smaller height, along a vertical join the smaller width.
func fitPair(axis Axis, a, b Size) (Size, Size) {
	if axis == Horizontal {
		h := min(a.Height, b.Height)
		return Size{Width: scaleLength(a.Width, a.Height, h), Height: h},
			Size{Width: scaleLength(b.Width, b.Height, h), Height: h}
	}

	w := min(a.Width, b.Width)
	return Size{Width: w, Height: scaleLength(a.Height, a.Width, w)},
		Size{Width: w, Height: scaleLength(b.Height, b.Width, w)}
}

// scaleLength scales length by to/from, rounding to nearest and never below 1.
func scaleLength(length, from, to int) int {
	if from == to {
		return length
	}
	v := int(math.Round(float64(length) * float64(to) / float64(from)))
	if v < 1 {
		return 1
	}
	return v
}

type LayoutKind int

const (
	DoubleJoin LayoutKind = iota
	Grid2x2
)

func (k LayoutKind) String() string {
	if k == Grid2x2 {
		return "grid_2x2"
	}
	return "double_join"
}

// Layout is a candidate arrangement of all four images with its output size
// computed analytically.
type Layout struct {
	Kind     LayoutKind
	Strategy Strategy
	Root     *Node
	Width    int
	Height   int
}

func newLayout(kind LayoutKind, strategy Strategy, root *Node) Layout {
	return Layout{
		Kind:     kind,
		Strategy: strategy,
		Root:     root,
		Width:    root.Size.Width,
		Height:   root.Size.Height,
	}
}

func (l Layout) Score() float64 {
	return Score(l.Width, l.Height)
}

func (l Layout) String() string {
	return l.Root.String()
}

// BuildCandidates enumerates the layouts strategy allows for the given source sizes.
// The result is never empty on success.
func BuildCandidates(strategy Strategy, sizes []Size) ([]Layout, error) {
	if len(sizes) != ImageCount {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidImageCount, len(sizes))
	}

	leaves := make([]*Node, len(sizes))
	orientations := make([]Orientation, len(sizes))
	for i, s := range sizes {
		if !s.valid() {
			return nil, fmt.Errorf("%w: image %d is %dx%d", ErrInvalidImage, i, s.Width, s.Height)
		}
		leaves[i] = leaf(i, s)
		orientations[i] = ClassifySize(s)
	}

	switch strategy {
	case AllLandscape:
		root := join(Horizontal, join(Vertical, leaves[0], leaves[1]), join(Vertical, leaves[2], leaves[3]))
		return []Layout{newLayout(DoubleJoin, strategy, root)}, nil

	case AllPortrait:
		root := join(Vertical, join(Horizontal, leaves[0], leaves[1]), join(Horizontal, leaves[2], leaves[3]))
		return []Layout{newLayout(DoubleJoin, strategy, root)}, nil

	case Grid:
		root := join(Vertical, join(Horizontal, leaves[0], leaves[1]), join(Horizontal, leaves[2], leaves[3]))
		return []Layout{newLayout(Grid2x2, strategy, root)}, nil

	case Mixed:
		return mixedCandidates(leaves, orientations)

	case Dominant:
		return dominantCandidates(leaves, orientations)
	}

	return nil, fmt.Errorf("unknown strategy %d", strategy)
}

// mixedCandidates joins the portraits side by side, stacks the landscapes and
// tries both outer axes.
func mixedCandidates(leaves []*Node, orientations []Orientation) ([]Layout, error) {
	var portraits, landscapes []*Node
	for i, o := range orientations {
		switch o {
		case Portrait:
			portraits = append(portraits, leaves[i])
		case Landscape:
			landscapes = append(landscapes, leaves[i])
		}
	}
	if len(portraits) != 2 || len(landscapes) != 2 {
		return nil, fmt.Errorf("%w: mixed needs 2 portrait and 2 landscape images", errStrategyMismatch)
	}

	portraitStrip := join(Horizontal, portraits[0], portraits[1])
	landscapeStrip := join(Vertical, landscapes[0], landscapes[1])

	candidates := make([]Layout, 0, len(outerAxes))
	for _, outer := range outerAxes {
		candidates = append(candidates, newLayout(DoubleJoin, Mixed, join(outer, portraitStrip, landscapeStrip)))
	}
	return candidates, nil
}

// partitions are the three ways to split four images into two unordered pairs.
var partitions = [][4]int{
	{0, 1, 2, 3},
	{0, 2, 1, 3},
	{0, 3, 1, 2},
}

// dominantCandidates tries every 2-2 split crossed with both outer axes. A pair
// of the same orientation joins on that orientation's axis, any other pair on
// the axis of the orientation that holds the majority.
func dominantCandidates(leaves []*Node, orientations []Orientation) ([]Layout, error) {
	counts := CountOrientations(orientations)

	var majority Orientation
	switch {
	case counts.Portrait >= 3:
		majority = Portrait
	case counts.Landscape >= 3:
		majority = Landscape
	default:
		return nil, fmt.Errorf("%w: dominant needs 3 images of one orientation", errStrategyMismatch)
	}

	pair := func(i, j int) *Node {
		axis := axisFor(majority)
		if orientations[i] == orientations[j] && orientations[i] != Square {
			axis = axisFor(orientations[i])
		}
		return join(axis, leaves[i], leaves[j])
	}

	candidates := make([]Layout, 0, len(partitions)*len(outerAxes))
	for _, p := range partitions {
		first, second := pair(p[0], p[1]), pair(p[2], p[3])
		for _, outer := range outerAxes {
			candidates = append(candidates, newLayout(DoubleJoin, Dominant, join(outer, first, second)))
		}
	}
	return candidates, nil
}
