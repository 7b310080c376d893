package script

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
)

// Effect is a compiled contact script. Each run sees the touching fighter's
// velocity_x, velocity_y, the tick number and overlaps (overlapping hitbox
// pairs) and may assign push_x and push_y. An Effect is not safe for
// concurrent use.
type Effect struct {
	name     string
	compiled *tengo.Compiled
}

// Compile builds an effect from tengo source. Only the math module may be
// imported so scripts stay deterministic.
func Compile(name string, src []byte) (*Effect, error) {
	s := tengo.NewScript(src)
	for _, v := range []string{"velocity_x", "velocity_y", "push_x", "push_y"} {
		if err := s.Add(v, 0.0); err != nil {
			return nil, fmt.Errorf("script: %s: %w", name, err)
		}
	}
	if err := s.Add("tick", 0); err != nil {
		return nil, fmt.Errorf("script: %s: %w", name, err)
	}
	if err := s.Add("overlaps", 0); err != nil {
		return nil, fmt.Errorf("script: %s: %w", name, err)
	}
	s.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	return &Effect{name: name, compiled: compiled}, nil
}

// Name is the script's source name.
func (e *Effect) Name() string {
	if e == nil {
		return ""
	}
	return e.name
}

// Push runs the script and returns the force it asks to apply.
func (e *Effect) Push(velocity cp.Vector, tick, overlaps int) (cp.Vector, error) {
	if e == nil || e.compiled == nil {
		return cp.Vector{}, nil
	}
	inputs := map[string]any{
		"velocity_x": velocity.X,
		"velocity_y": velocity.Y,
		"tick":       tick,
		"overlaps":   overlaps,
		"push_x":     0.0,
		"push_y":     0.0,
	}
	for k, v := range inputs {
		if err := e.compiled.Set(k, v); err != nil {
			return cp.Vector{}, fmt.Errorf("script: %s: set %s: %w", e.name, k, err)
		}
	}
	if err := e.compiled.Run(); err != nil {
		return cp.Vector{}, fmt.Errorf("script: run %s: %w", e.name, err)
	}
	return cp.Vector{
		X: e.compiled.Get("push_x").Float(),
		Y: e.compiled.Get("push_y").Float(),
	}, nil
}
