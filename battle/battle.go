package battle

import (
	"errors"
	"fmt"
	"log"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/walpurgis/physics"
	"github.com/milk9111/walpurgis/prefabs"
)

var ErrUnknownFighter = errors.New("battle: unknown fighter")

// DefaultPushStrength is used when a Config leaves PushStrength at zero.
const DefaultPushStrength = 0.25

// Config tunes a battle. Zero fields take their defaults; a negative
// OrientationEpsilon turns the aligned-box fast path off.
type Config struct {
	PushStrength       float64
	OrientationEpsilon float64
	Debug              bool
}

// ConfigFromSpec maps the physics prefab onto a Config.
func ConfigFromSpec(spec *prefabs.PhysicsSpec) Config {
	if spec == nil {
		return Config{}
	}
	return Config{
		PushStrength:       spec.PushStrength,
		OrientationEpsilon: spec.OrientationEpsilon,
	}
}

// Report summarizes one tick.
type Report struct {
	Tick            int
	FighterPlatform int
	FighterFighter  int
	Grounded        []string
}

// Battle drives fighters through an arena one fixed tick at a time.
type Battle struct {
	Arena    *Arena
	Fighters []*Fighter

	detector     physics.Detector
	pushStrength float64
	debug        bool

	tick   int
	last   Report
	events EventQueue
	// Grounded state as of the last completed tick.
	grounded map[*Fighter]bool
}

func New(arena *Arena, fighters []*Fighter, cfg Config) *Battle {
	if cfg.PushStrength == 0 {
		cfg.PushStrength = DefaultPushStrength
	}
	if cfg.OrientationEpsilon == 0 {
		cfg.OrientationEpsilon = physics.DefaultOrientationEpsilon
	}
	return &Battle{
		Arena:        arena,
		Fighters:     fighters,
		detector:     physics.Detector{OrientationEpsilon: cfg.OrientationEpsilon},
		pushStrength: cfg.PushStrength,
		debug:        cfg.Debug,
		grounded:     make(map[*Fighter]bool),
	}
}

// Tick is the number of completed ticks.
func (b *Battle) Tick() int { return b.tick }

// Report returns the summary of the last completed tick.
func (b *Battle) Report() Report { return b.last }

// SetArena swaps the stage between ticks. Fighters keep their contact state;
// ids that no longer exist simply stop blocking.
func (b *Battle) SetArena(a *Arena) { b.Arena = a }

// Step runs one tick: detect against the pre-tick snapshot, resolve every
// collision into per-entity changesets, apply them, then integrate. A
// handler error aborts the tick before anything is applied.
func (b *Battle) Step() error {
	tick := b.tick + 1
	report := Report{Tick: tick}

	var fighterChanges physics.ChangeSets[FighterChanges]
	var platformChanges physics.ChangeSets[PlatformChanges]

	gravity := FighterChanges{Force: cp.Vector{Y: b.Arena.Gravity}}
	for i := range b.Fighters {
		fighterChanges.Add(i, gravity)
	}

	for _, c := range physics.Between(b.detector, b.Fighters, b.Arena.Platforms) {
		fc, pc, err := HandleFighterPlatform(c, tick)
		if err != nil {
			return fmt.Errorf("battle: tick %d: fighter %s: %w", tick, c.First.Name, err)
		}
		fighterChanges.Add(c.FirstIndex, fc)
		platformChanges.Add(c.SecondIndex, pc)
		report.FighterPlatform++
	}

	for _, c := range physics.Within(b.detector, b.Fighters) {
		first, second := HandleFighterFighter(c, b.pushStrength)
		fighterChanges.Add(c.FirstIndex, first)
		fighterChanges.Add(c.SecondIndex, second)
		report.FighterFighter++
	}

	physics.ApplyChangeSets(&fighterChanges, b.Fighters)
	physics.ApplyChangeSets(&platformChanges, b.Arena.Platforms)
	physics.Integrate(b.Fighters)
	physics.Integrate(b.Arena.Platforms)

	for _, f := range b.Fighters {
		grounded := f.Grounded()
		if grounded {
			report.Grounded = append(report.Grounded, f.Name)
		}
		switch was := b.grounded[f]; {
		case grounded && !was:
			b.events.Push(Event{Tick: tick, Fighter: f.Name, Kind: EventLanded, Platforms: f.Touched()})
		case !grounded && was:
			b.events.Push(Event{Tick: tick, Fighter: f.Name, Kind: EventLeft})
		}
		b.grounded[f] = grounded
	}
	b.tick = tick
	b.last = report

	if b.debug {
		log.Printf("battle: tick %d fighter/platform=%d fighter/fighter=%d grounded=%v",
			tick, report.FighterPlatform, report.FighterFighter, report.Grounded)
	}
	return nil
}

// Run steps n ticks, stopping at the first error.
func (b *Battle) Run(n int) error {
	for i := 0; i < n; i++ {
		if err := b.Step(); err != nil {
			return err
		}
	}
	return nil
}

// DropThrough makes fighter i fall through the pass-through platforms it is
// standing on.
func (b *Battle) DropThrough(i int) error {
	if i < 0 || i >= len(b.Fighters) {
		return fmt.Errorf("%w: index %d", ErrUnknownFighter, i)
	}
	f := b.Fighters[i]
	before := len(f.ignored)
	f.DropThrough(b.Arena)
	if len(f.ignored) != before {
		b.events.Push(Event{Tick: b.tick, Fighter: f.Name, Kind: EventDrop, Platforms: f.Ignored()})
	}
	return nil
}

// Events drains the contact events emitted since the last call.
func (b *Battle) Events() []Event { return b.events.Drain() }

// Snapshot is the state needed to resume a battle.
type Snapshot struct {
	Arena    string         `json:"arena" yaml:"arena"`
	Tick     int            `json:"tick" yaml:"tick"`
	Fighters []FighterState `json:"fighters" yaml:"fighters"`
}

func (b *Battle) Snapshot() Snapshot {
	s := Snapshot{Arena: b.Arena.Name, Tick: b.tick}
	for _, f := range b.Fighters {
		s.Fighters = append(s.Fighters, f.State())
	}
	return s
}

// Restore loads fighter state by name. Fighters absent from the snapshot are
// left alone; names the battle does not know are an error.
func (b *Battle) Restore(s Snapshot) error {
	byName := make(map[string]*Fighter, len(b.Fighters))
	for _, f := range b.Fighters {
		byName[f.Name] = f
	}
	for _, fs := range s.Fighters {
		if _, ok := byName[fs.Name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownFighter, fs.Name)
		}
	}
	for _, fs := range s.Fighters {
		f := byName[fs.Name]
		f.restore(fs)
		b.grounded[f] = f.Grounded()
	}
	b.tick = s.Tick
	b.last = Report{Tick: s.Tick}
	return nil
}
