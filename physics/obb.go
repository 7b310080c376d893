package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/walpurgis/common"
)

// DefaultOrientationEpsilon is the largest orientation difference, in radians,
// for which two boxes are treated as sharing a frame.
const DefaultOrientationEpsilon = 1e-7

var ErrInvalidGeometry = errors.New("physics: invalid geometry")

// BoundingBox is an oriented rectangle in its owner's local space. Pos is the
// pivot corner, Size is (width, height) and Ori rotates the box
// counterclockwise about Pos.
type BoundingBox struct {
	Pos  cp.Vector `json:"pos"`
	Size cp.Vector `json:"size"`
	Ori  float64   `json:"ori"`
}

// NewBoundingBox validates and builds a box. Sizes must be non-negative and
// every component finite.
func NewBoundingBox(pos, size cp.Vector, ori float64) (BoundingBox, error) {
	if !common.Finite(pos.X, pos.Y, size.X, size.Y, ori) {
		return BoundingBox{}, fmt.Errorf("%w: non-finite box pos=%v size=%v ori=%v", ErrInvalidGeometry, pos, size, ori)
	}
	if size.X < 0 || size.Y < 0 {
		return BoundingBox{}, fmt.Errorf("%w: negative size %v", ErrInvalidGeometry, size)
	}
	return BoundingBox{Pos: pos, Size: size, Ori: ori}, nil
}

// MustBoundingBox is NewBoundingBox for literals; it panics on invalid input.
func MustBoundingBox(pos, size cp.Vector, ori float64) BoundingBox {
	b, err := NewBoundingBox(pos, size, ori)
	if err != nil {
		panic(err)
	}
	return b
}

// Validate re-checks a box that was built without NewBoundingBox, e.g. decoded
// from a prefab.
func (b BoundingBox) Validate() error {
	_, err := NewBoundingBox(b.Pos, b.Size, b.Ori)
	return err
}

// Empty reports whether the box has no area.
func (b BoundingBox) Empty() bool {
	return b.Size.X == 0 || b.Size.Y == 0
}

// Rotate turns p counterclockwise by ori radians about the origin.
func Rotate(p cp.Vector, ori float64) cp.Vector {
	sin, cos := math.Sincos(ori)
	return cp.Vector{
		X: cos*p.X - sin*p.Y,
		Y: sin*p.X + cos*p.Y,
	}
}

// baseCorners are the corners before rotation and translation:
//
//	1 (0,h) ---- 3 (w,h)
//	|            |
//	0 (0,0) ---- 2 (w,0)
func (b BoundingBox) baseCorners() [4]cp.Vector {
	return [4]cp.Vector{
		{X: 0, Y: 0},
		{X: 0, Y: b.Size.Y},
		{X: b.Size.X, Y: 0},
		{X: b.Size.X, Y: b.Size.Y},
	}
}

// Corners returns the four corners after rotation by Ori and translation by Pos.
func (b BoundingBox) Corners() [4]cp.Vector {
	corners := b.baseCorners()
	for i, c := range corners {
		corners[i] = Rotate(c, b.Ori).Add(b.Pos)
	}
	return corners
}

// Bounds returns the axis-aligned extent of the corners. L/R hold min/max x
// and B/T hold min/max y.
func (b BoundingBox) Bounds() cp.BB {
	bb := cp.BB{
		L: math.Inf(1),
		B: math.Inf(1),
		R: math.Inf(-1),
		T: math.Inf(-1),
	}
	for _, c := range b.Corners() {
		bb.L = math.Min(bb.L, c.X)
		bb.R = math.Max(bb.R, c.X)
		bb.B = math.Min(bb.B, c.Y)
		bb.T = math.Max(bb.T, c.Y)
	}
	return bb
}

// Translated returns a copy moved by offset.
func (b BoundingBox) Translated(offset cp.Vector) BoundingBox {
	b.Pos = b.Pos.Add(offset)
	return b
}

// NormalizedWRT re-expresses b in basis's local frame, where basis becomes the
// axis-aligned rectangle [0,w]x[0,h].
func (b BoundingBox) NormalizedWRT(basis BoundingBox) BoundingBox {
	return BoundingBox{
		Pos:  Rotate(b.Pos.Sub(basis.Pos), -basis.Ori),
		Size: b.Size,
		Ori:  b.Ori - basis.Ori,
	}
}

// CheckHalfCollision projects b onto basis's two axes and reports whether
// both projections overlap basis. A full test needs both directions.
func (b BoundingBox) CheckHalfCollision(basis BoundingBox) bool {
	bounds := b.NormalizedWRT(basis).Bounds()
	return math.Max(bounds.L, 0) <= math.Min(bounds.R, basis.Size.X) &&
		math.Max(bounds.B, 0) <= math.Min(bounds.T, basis.Size.Y)
}

// CheckCollision reports whether two boxes overlap. Touching edges count; an
// empty box never collides.
func CheckCollision(lhs, rhs BoundingBox) bool {
	return CheckCollisionEpsilon(lhs, rhs, DefaultOrientationEpsilon)
}

// CheckCollisionEpsilon is CheckCollision with a custom fast-path tolerance.
// When the orientations differ by less than eps the boxes share a frame, the
// single half check is already the exact rectangle test and the reverse check
// is skipped. A negative eps always runs both checks.
func CheckCollisionEpsilon(lhs, rhs BoundingBox, eps float64) bool {
	if lhs.Empty() || rhs.Empty() {
		return false
	}
	if !lhs.CheckHalfCollision(rhs) {
		return false
	}
	if AlmostAligned(lhs, rhs, eps) {
		return true
	}
	return rhs.CheckHalfCollision(lhs)
}

// AlmostAligned reports whether the orientations differ by less than eps.
func AlmostAligned(lhs, rhs BoundingBox, eps float64) bool {
	return math.Abs(rhs.Ori-lhs.Ori) < eps
}
