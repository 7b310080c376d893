package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// BoxSpec is an oriented box in its owner's local space.
type BoxSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Rotation float64 `yaml:"rotation"`
}

type VectorSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type PlatformSpec struct {
	ID          int     `yaml:"id"`
	Box         BoxSpec `yaml:"box"`
	PassThrough bool    `yaml:"pass_through"`
	// Script names a file under scripts/ run on every fighter contact.
	Script string `yaml:"script"`
}

type ArenaSpec struct {
	Name      string         `yaml:"name"`
	Gravity   float64        `yaml:"gravity"`
	Platforms []PlatformSpec `yaml:"platforms"`
}

func LoadArenaSpec(filename string) (*ArenaSpec, error) {
	data, err := Load(filename)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	var spec ArenaSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	return &spec, nil
}

type FighterSpec struct {
	Name      string     `yaml:"name"`
	Spawn     VectorSpec `yaml:"spawn"`
	Velocity  VectorSpec `yaml:"velocity"`
	Hurtboxes []BoxSpec  `yaml:"hurtboxes"`
}

// RosterSpec lists the fighters entering a battle.
type RosterSpec struct {
	Fighters []FighterSpec `yaml:"fighters"`
}

func LoadRosterSpec(filename string) (*RosterSpec, error) {
	data, err := Load(filename)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	var spec RosterSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	return &spec, nil
}

// PhysicsSpec tunes collision resolution.
type PhysicsSpec struct {
	// PushStrength is the horizontal force overlapping fighters apply to
	// each other per tick.
	PushStrength float64 `yaml:"push_strength"`
	// OrientationEpsilon controls the aligned-box fast path; negative
	// disables it.
	OrientationEpsilon float64 `yaml:"orientation_epsilon"`
	Ticks              int     `yaml:"ticks"`
}

func LoadPhysicsSpec() (*PhysicsSpec, error) {
	spec, err := LoadSpec[PhysicsSpec]("physics.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}
