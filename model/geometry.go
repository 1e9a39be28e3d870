package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// BBox represents an axis-aligned bounding box in page pixel coordinates.
// Y grows downward, so (X1, Y1) is the top-left corner.
type BBox struct {
	X1 float64 // Left
	Y1 float64 // Top
	X2 float64 // Right
	Y2 float64 // Bottom
}

// NewBBox creates a bounding box from corner coordinates
func NewBBox(x1, y1, x2, y2 float64) BBox {
	return BBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// BBoxFromArray creates a bounding box from the canonical [x1,y1,x2,y2] form
func BBoxFromArray(a [4]float64) BBox {
	return BBox{X1: a[0], Y1: a[1], X2: a[2], Y2: a[3]}
}

// Array returns the canonical [x1,y1,x2,y2] representation
func (b BBox) Array() [4]float64 {
	return [4]float64{b.X1, b.Y1, b.X2, b.Y2}
}

// Left returns the left edge X coordinate
func (b BBox) Left() float64 { return b.X1 }

// Right returns the right edge X coordinate
func (b BBox) Right() float64 { return b.X2 }

// Top returns the top edge Y coordinate
func (b BBox) Top() float64 { return b.Y1 }

// Bottom returns the bottom edge Y coordinate
func (b BBox) Bottom() float64 { return b.Y2 }

// Width returns x2 - x1
func (b BBox) Width() float64 { return b.X2 - b.X1 }

// Height returns y2 - y1
func (b BBox) Height() float64 { return b.Y2 - b.Y1 }

// Area returns the area of the bounding box. Degenerate boxes have zero area.
func (b BBox) Area() float64 {
	if b.IsDegenerate() {
		return 0
	}
	return b.Width() * b.Height()
}

// IsZero reports whether the box is the zero value, which stands for
// "no bounding box" (text-sourced segments).
func (b BBox) IsZero() bool {
	return b == BBox{}
}

// IsValid returns true if coordinates are non-negative and not inverted
func (b BBox) IsValid() bool {
	return b.X1 >= 0 && b.Y1 >= 0 && b.X2 >= b.X1 && b.Y2 >= b.Y1
}

// IsDegenerate returns true if the box has zero or negative area
func (b BBox) IsDegenerate() bool {
	return b.Width() <= 0 || b.Height() <= 0
}

// Overlaps reports whether two boxes share interior area.
// Touching edges do not count as overlap.
func (b BBox) Overlaps(other BBox) bool {
	return !(b.X2 <= other.X1 ||
		b.X1 >= other.X2 ||
		b.Y2 <= other.Y1 ||
		b.Y1 >= other.Y2)
}

// Overlaps is the free-function form of BBox.Overlaps
func Overlaps(a, b BBox) bool {
	return a.Overlaps(b)
}

// IsAdjacent reports whether two boxes sit next to each other: either the
// vertical gap between one box's bottom and the other's top is at most vGap
// while their horizontal ranges intersect, or the horizontal gap between one
// box's right and the other's left is at most hGap while their vertical
// ranges intersect.
func IsAdjacent(a, b BBox, vGap, hGap float64) bool {
	xIntersect := math.Max(a.X1, b.X1) <= math.Min(a.X2, b.X2)
	yIntersect := math.Max(a.Y1, b.Y1) <= math.Min(a.Y2, b.Y2)

	verticalGap := math.Min(math.Abs(a.Y2-b.Y1), math.Abs(b.Y2-a.Y1))
	if verticalGap <= vGap && xIntersect {
		return true
	}

	horizontalGap := math.Min(math.Abs(a.X2-b.X1), math.Abs(b.X2-a.X1))
	return horizontalGap <= hGap && yIntersect
}

// Union returns the smallest box containing both boxes
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X1: math.Min(b.X1, other.X1),
		Y1: math.Min(b.Y1, other.Y1),
		X2: math.Max(b.X2, other.X2),
		Y2: math.Max(b.Y2, other.Y2),
	}
}

// Envelope returns the componentwise min/max over all boxes.
// The second result is false when boxes is empty.
func Envelope(boxes ...BBox) (BBox, bool) {
	if len(boxes) == 0 {
		return BBox{}, false
	}
	env := boxes[0]
	for _, b := range boxes[1:] {
		env = env.Union(b)
	}
	return env, true
}

// String returns the box in X1,Y1,X2,Y2 order
func (b BBox) String() string {
	return fmt.Sprintf("[%g,%g,%g,%g]", b.X1, b.Y1, b.X2, b.Y2)
}

// MarshalJSON encodes the box as [x1,y1,x2,y2]
func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Array())
}

// UnmarshalJSON accepts [x1,y1,x2,y2], an empty array or null.
// The latter two decode to the zero box.
func (b *BBox) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("decoding bbox: %w", err)
	}
	switch len(coords) {
	case 0:
		*b = BBox{}
		return nil
	case 4:
		*b = BBox{X1: coords[0], Y1: coords[1], X2: coords[2], Y2: coords[3]}
		return nil
	default:
		return fmt.Errorf("invalid bbox length: %d (expected 4)", len(coords))
	}
}
