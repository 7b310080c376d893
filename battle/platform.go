package battle

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/walpurgis/physics"
	"github.com/milk9111/walpurgis/prefabs"
	"github.com/milk9111/walpurgis/script"
)

var ErrDuplicatePlatform = errors.New("battle: duplicate platform id")

// Platform is a static section of the arena. Its body is already in world
// space, so its offset is zero.
type Platform struct {
	ID   int
	Body physics.BoundingBox
	// PassThrough platforms can be dropped through with Fighter.DropThrough.
	PassThrough bool

	effect       *script.Effect
	lastContacts int
}

func NewPlatform(id int, body physics.BoundingBox, passThrough bool) (*Platform, error) {
	if err := body.Validate(); err != nil {
		return nil, fmt.Errorf("battle: platform %d: %w", id, err)
	}
	return &Platform{ID: id, Body: body, PassThrough: passThrough}, nil
}

// SetEffect attaches a contact script; nil removes it.
func (p *Platform) SetEffect(e *script.Effect) { p.effect = e }

func (p *Platform) Effect() *script.Effect { return p.effect }

func (p *Platform) Hitboxes() []physics.BoundingBox { return []physics.BoundingBox{p.Body} }
func (p *Platform) Offset() cp.Vector               { return cp.Vector{} }

// Contacts is the number of fighter contacts applied last tick.
func (p *Platform) Contacts() int { return p.lastContacts }

func (p *Platform) ApplyChangeSet(c PlatformChanges) {
	p.lastContacts = c.Contacts
}

// HandlePhysUpdate is a no-op; platforms never move.
func (p *Platform) HandlePhysUpdate() {}

// Arena is the static stage a battle is fought on.
type Arena struct {
	Name      string
	Gravity   float64
	Platforms []*Platform

	byID map[int]int
}

func NewArena(name string, gravity float64, platforms []*Platform) (*Arena, error) {
	a := &Arena{
		Name:      name,
		Gravity:   gravity,
		Platforms: platforms,
		byID:      make(map[int]int, len(platforms)),
	}
	for i, p := range platforms {
		if _, ok := a.byID[p.ID]; ok {
			return nil, fmt.Errorf("%w: %d in arena %s", ErrDuplicatePlatform, p.ID, name)
		}
		a.byID[p.ID] = i
	}
	return a, nil
}

// NewArenaFromSpec builds an arena from its prefab, compiling each distinct
// contact script once.
func NewArenaFromSpec(spec *prefabs.ArenaSpec) (*Arena, error) {
	effects := make(map[string]*script.Effect)
	platforms := make([]*Platform, 0, len(spec.Platforms))
	for _, ps := range spec.Platforms {
		body, err := boxFromSpec(ps.Box)
		if err != nil {
			return nil, fmt.Errorf("battle: arena %s platform %d: %w", spec.Name, ps.ID, err)
		}
		p, err := NewPlatform(ps.ID, body, ps.PassThrough)
		if err != nil {
			return nil, err
		}
		if ps.Script != "" {
			e, ok := effects[ps.Script]
			if !ok {
				src, err := prefabs.LoadScript(ps.Script)
				if err != nil {
					return nil, fmt.Errorf("battle: arena %s platform %d: %w", spec.Name, ps.ID, err)
				}
				e, err = script.Compile(ps.Script, src)
				if err != nil {
					return nil, fmt.Errorf("battle: arena %s platform %d: %w", spec.Name, ps.ID, err)
				}
				effects[ps.Script] = e
			}
			p.SetEffect(e)
		}
		platforms = append(platforms, p)
	}
	return NewArena(spec.Name, spec.Gravity, platforms)
}

// Platform looks a platform up by id.
func (a *Arena) Platform(id int) (*Platform, bool) {
	if a == nil {
		return nil, false
	}
	i, ok := a.byID[id]
	if !ok {
		return nil, false
	}
	return a.Platforms[i], true
}

func boxFromSpec(s prefabs.BoxSpec) (physics.BoundingBox, error) {
	return physics.NewBoundingBox(
		cp.Vector{X: s.X, Y: s.Y},
		cp.Vector{X: s.Width, Y: s.Height},
		s.Rotation,
	)
}
