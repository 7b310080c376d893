package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/walpurgis/common"
)

// Collidable is anything the detector can test. Hitboxes are in the entity's
// local space; Offset moves all of them into world space.
type Collidable interface {
	Hitboxes() []BoundingBox
	Offset() cp.Vector
}

// HitboxPair is one overlapping pair of boxes, each a copy in its owner's
// local space.
type HitboxPair struct {
	First  BoundingBox
	Second BoundingBox
}

// Flipped swaps the pair.
func (p HitboxPair) Flipped() HitboxPair {
	return HitboxPair{First: p.Second, Second: p.First}
}

// Collision records two entities with at least one overlapping hitbox pair.
// The indices point into the slices passed to detection and are only valid
// for that snapshot.
type Collision[A, B Collidable] struct {
	FirstIndex  int
	SecondIndex int
	First       A
	Second      B
	Overlaps    []HitboxPair
}

// Flipped returns the same collision seen from the second entity.
func (c Collision[A, B]) Flipped() Collision[B, A] {
	overlaps := make([]HitboxPair, len(c.Overlaps))
	for i, p := range c.Overlaps {
		overlaps[i] = p.Flipped()
	}
	return Collision[B, A]{
		FirstIndex:  c.SecondIndex,
		SecondIndex: c.FirstIndex,
		First:       c.Second,
		Second:      c.First,
		Overlaps:    overlaps,
	}
}

// Detector holds tuning for collision detection.
type Detector struct {
	// OrientationEpsilon is passed to CheckCollisionEpsilon. Negative values
	// force the full two-sided test on every pair.
	OrientationEpsilon float64
}

// DefaultDetector is used by DetectWithin and DetectBetween.
var DefaultDetector = Detector{OrientationEpsilon: DefaultOrientationEpsilon}

// DetectWithin finds every colliding pair inside one collection, each
// unordered pair at most once and never an entity with itself.
func DetectWithin[E Collidable](entities []E) []Collision[E, E] {
	return Within(DefaultDetector, entities)
}

// DetectBetween finds every colliding pair with one entity from each collection.
func DetectBetween[A, B Collidable](as []A, bs []B) []Collision[A, B] {
	return Between(DefaultDetector, as, bs)
}

// Within is DetectWithin with a custom detector.
func Within[E Collidable](d Detector, entities []E) []Collision[E, E] {
	hitboxes := make([][]BoundingBox, len(entities))
	for i, e := range entities {
		hitboxes[i] = e.Hitboxes()
	}

	var out []Collision[E, E]
	for pair := range common.UniqueSquareIndex(len(entities)) {
		i, j := pair[0], pair[1]
		overlaps := d.Overlaps(hitboxes[i], entities[i].Offset(), hitboxes[j], entities[j].Offset())
		if len(overlaps) == 0 {
			continue
		}
		out = append(out, Collision[E, E]{
			FirstIndex:  i,
			SecondIndex: j,
			First:       entities[i],
			Second:      entities[j],
			Overlaps:    overlaps,
		})
	}
	return out
}

// Between is DetectBetween with a custom detector.
func Between[A, B Collidable](d Detector, as []A, bs []B) []Collision[A, B] {
	aBoxes := make([][]BoundingBox, len(as))
	for i, a := range as {
		aBoxes[i] = a.Hitboxes()
	}
	bBoxes := make([][]BoundingBox, len(bs))
	for j, b := range bs {
		bBoxes[j] = b.Hitboxes()
	}

	var out []Collision[A, B]
	for pair := range common.ProductIndex(len(as), len(bs)) {
		i, j := pair[0], pair[1]
		overlaps := d.Overlaps(aBoxes[i], as[i].Offset(), bBoxes[j], bs[j].Offset())
		if len(overlaps) == 0 {
			continue
		}
		out = append(out, Collision[A, B]{
			FirstIndex:  i,
			SecondIndex: j,
			First:       as[i],
			Second:      bs[j],
			Overlaps:    overlaps,
		})
	}
	return out
}

// Overlaps tests every box of a against every box of b. The two lists live in
// frames offset by offsetA and offsetB; only the shorter list is moved into
// the other's frame. Results keep (a, b) order and hold the untranslated boxes.
func (d Detector) Overlaps(a []BoundingBox, offsetA cp.Vector, b []BoundingBox, offsetB cp.Vector) []HitboxPair {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}

	delta := offsetA.Sub(offsetB)
	movedA, movedB := a, b
	if len(a) <= len(b) {
		movedA = translateAll(a, delta)
	} else {
		movedB = translateAll(b, delta.Neg())
	}

	var out []HitboxPair
	for i, ha := range movedA {
		for j, hb := range movedB {
			if CheckCollisionEpsilon(ha, hb, d.OrientationEpsilon) {
				out = append(out, HitboxPair{First: a[i], Second: b[j]})
			}
		}
	}
	return out
}

func translateAll(boxes []BoundingBox, offset cp.Vector) []BoundingBox {
	moved := make([]BoundingBox, len(boxes))
	for i, b := range boxes {
		moved[i] = b.Translated(offset)
	}
	return moved
}
