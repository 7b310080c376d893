package battle

import (
	"fmt"
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/walpurgis/physics"
	"github.com/milk9111/walpurgis/prefabs"
)

// Fighter is a player character. Its hurtboxes are centered on the origin and
// moved into the world by its position. +y points down.
type Fighter struct {
	Name string

	position     cp.Vector
	velocity     cp.Vector
	acceleration cp.Vector

	hurtboxes []physics.BoundingBox

	// Platform ids touched during the last applied tick, sorted.
	touched []int
	// Platforms being fallen through on purpose. An id leaves the set as
	// soon as the fighter stops touching that platform.
	ignored []int
}

func NewFighter(name string, position cp.Vector, hurtboxes []physics.BoundingBox) (*Fighter, error) {
	for i, b := range hurtboxes {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("battle: fighter %s hurtbox %d: %w", name, i, err)
		}
	}
	return &Fighter{
		Name:      name,
		position:  position,
		hurtboxes: slices.Clone(hurtboxes),
	}, nil
}

// NewFighterFromSpec builds a fighter from its prefab.
func NewFighterFromSpec(spec prefabs.FighterSpec) (*Fighter, error) {
	boxes := make([]physics.BoundingBox, 0, len(spec.Hurtboxes))
	for i, hs := range spec.Hurtboxes {
		b, err := boxFromSpec(hs)
		if err != nil {
			return nil, fmt.Errorf("battle: fighter %s hurtbox %d: %w", spec.Name, i, err)
		}
		boxes = append(boxes, b)
	}
	f, err := NewFighter(spec.Name, cp.Vector{X: spec.Spawn.X, Y: spec.Spawn.Y}, boxes)
	if err != nil {
		return nil, err
	}
	f.velocity = cp.Vector{X: spec.Velocity.X, Y: spec.Velocity.Y}
	return f, nil
}

func (f *Fighter) Hitboxes() []physics.BoundingBox { return f.hurtboxes }
func (f *Fighter) Offset() cp.Vector               { return f.position }

func (f *Fighter) Position() cp.Vector     { return f.position }
func (f *Fighter) Velocity() cp.Vector     { return f.velocity }
func (f *Fighter) Acceleration() cp.Vector { return f.acceleration }

func (f *Fighter) SetVelocity(v cp.Vector) { f.velocity = v }

// SetHurtboxes swaps the pose boxes. Call between ticks only.
func (f *Fighter) SetHurtboxes(boxes []physics.BoundingBox) error {
	for i, b := range boxes {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("battle: fighter %s hurtbox %d: %w", f.Name, i, err)
		}
	}
	f.hurtboxes = slices.Clone(boxes)
	return nil
}

// Push adds force to this tick's acceleration.
func (f *Fighter) Push(force cp.Vector) {
	f.acceleration = f.acceleration.Add(force)
}

// Touched returns the platform ids touched last tick.
func (f *Fighter) Touched() []int { return slices.Clone(f.touched) }

// Ignored returns the platform ids currently being fallen through.
func (f *Fighter) Ignored() []int { return slices.Clone(f.ignored) }

// Grounded reports whether the fighter rests on a platform it is not
// falling through.
func (f *Fighter) Grounded() bool {
	return f.blocked()
}

// DropThrough starts falling through every touched platform that allows it.
func (f *Fighter) DropThrough(arena *Arena) {
	for _, id := range f.touched {
		p, ok := arena.Platform(id)
		if !ok || !p.PassThrough {
			continue
		}
		if !slices.Contains(f.ignored, id) {
			f.ignored = append(f.ignored, id)
		}
	}
	slices.Sort(f.ignored)
}

func (f *Fighter) blocked() bool {
	for _, id := range f.touched {
		if !slices.Contains(f.ignored, id) {
			return true
		}
	}
	return false
}

// ApplyChangeSet records this tick's contacts and folds the merged force into
// acceleration. Landing on, or resting on, a platform that is not being
// fallen through cancels downward velocity and downward force; upward pushes
// survive so fighters can still jump off.
func (f *Fighter) ApplyChangeSet(c FighterChanges) {
	force := c.Force
	f.touched = slices.Clone(c.ContactedPlatforms)
	f.ignored = slices.DeleteFunc(f.ignored, func(id int) bool {
		return !slices.Contains(f.touched, id)
	})

	if f.blocked() && f.velocity.Y >= 0 {
		if f.acceleration.Y > 0 {
			f.acceleration.Y = 0
		}
		f.acceleration.Y -= f.velocity.Y
		if force.Y > 0 {
			force.Y = 0
		}
	}
	f.Push(force)
}

// HandlePhysUpdate integrates one tick and clears acceleration.
func (f *Fighter) HandlePhysUpdate() {
	f.velocity = f.velocity.Add(f.acceleration)
	f.position = f.position.Add(f.velocity)
	f.acceleration = cp.Vector{}
}

// FighterState is the persistent part of a fighter.
type FighterState struct {
	Name     string    `json:"name" yaml:"name"`
	Position cp.Vector `json:"position" yaml:"position"`
	Velocity cp.Vector `json:"velocity" yaml:"velocity"`
	Touched  []int     `json:"touched,omitempty" yaml:"touched,omitempty"`
	Ignored  []int     `json:"ignored,omitempty" yaml:"ignored,omitempty"`
}

func (f *Fighter) State() FighterState {
	return FighterState{
		Name:     f.Name,
		Position: f.position,
		Velocity: f.velocity,
		Touched:  f.Touched(),
		Ignored:  f.Ignored(),
	}
}

func (f *Fighter) restore(s FighterState) {
	f.position = s.Position
	f.velocity = s.Velocity
	f.acceleration = cp.Vector{}
	f.touched = slices.Clone(s.Touched)
	f.ignored = slices.Clone(s.Ignored)
}
