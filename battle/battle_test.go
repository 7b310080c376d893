package battle

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/walpurgis/physics"
	"github.com/milk9111/walpurgis/prefabs"
	"github.com/milk9111/walpurgis/script"
)

const testGravity = 0.5

// Fighters in these tests stand on the bottom edge of a 2x2 box.
func standingBox() physics.BoundingBox {
	return physics.MustBoundingBox(cp.Vector{X: -1, Y: -2}, cp.Vector{X: 2, Y: 2}, 0)
}

func newTestFighter(t *testing.T, name string, pos, vel cp.Vector) *Fighter {
	t.Helper()
	f, err := NewFighter(name, pos, []physics.BoundingBox{standingBox()})
	if err != nil {
		t.Fatalf("new fighter: %v", err)
	}
	f.SetVelocity(vel)
	return f
}

// floorArena has one platform covering [0,10]x[10,12].
func floorArena(t *testing.T, id int, passThrough bool) *Arena {
	t.Helper()
	p, err := NewPlatform(id, physics.MustBoundingBox(cp.Vector{X: 0, Y: 10}, cp.Vector{X: 10, Y: 2}, 0), passThrough)
	if err != nil {
		t.Fatalf("new platform: %v", err)
	}
	a, err := NewArena("floor", testGravity, []*Platform{p})
	if err != nil {
		t.Fatalf("new arena: %v", err)
	}
	return a
}

func TestFallingFighterStopsOnPlatform(t *testing.T) {
	arena := floorArena(t, 7, false)
	f := newTestFighter(t, "alien", cp.Vector{X: 5, Y: 10.5}, cp.Vector{Y: 3})

	collisions := physics.DetectBetween([]*Fighter{f}, arena.Platforms)
	if len(collisions) != 1 || len(collisions[0].Overlaps) != 1 {
		t.Fatalf("expected one collision with one overlap, got %+v", collisions)
	}

	changes, _, err := HandleFighterPlatform(collisions[0], 1)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	changes = changes.Merge(FighterChanges{Force: cp.Vector{Y: testGravity}})

	f.ApplyChangeSet(changes)
	f.HandlePhysUpdate()

	if f.Velocity().Y != 0 {
		t.Fatalf("expected vertical velocity cancelled, got %v", f.Velocity())
	}
	if f.Position().Y != 10.5 {
		t.Fatalf("expected no downward motion past contact, got y=%v", f.Position().Y)
	}
	if !reflect.DeepEqual(f.Touched(), []int{7}) || !f.Grounded() {
		t.Fatalf("expected fighter grounded on platform 7, touched=%v", f.Touched())
	}
	if f.Acceleration() != (cp.Vector{}) {
		t.Fatalf("acceleration should reset after integration, got %v", f.Acceleration())
	}
}

func TestStepRestingAndFreeFall(t *testing.T) {
	arena := floorArena(t, 0, false)
	resting := newTestFighter(t, "resting", cp.Vector{X: 5, Y: 10.5}, cp.Vector{})
	falling := newTestFighter(t, "falling", cp.Vector{X: 500, Y: 0}, cp.Vector{})
	b := New(arena, []*Fighter{resting, falling}, Config{})

	for i := 0; i < 5; i++ {
		if err := b.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if resting.Position().Y != 10.5 || resting.Velocity().Y != 0 {
			t.Fatalf("tick %d: resting fighter moved to %v (v=%v)", b.Tick(), resting.Position(), resting.Velocity())
		}
	}

	// 0.5 * (1+2+3+4+5)
	if falling.Position().Y != 7.5 || falling.Velocity().Y != 2.5 {
		t.Fatalf("free fall: got pos=%v vel=%v", falling.Position(), falling.Velocity())
	}

	r := b.Report()
	if r.Tick != 5 || r.FighterPlatform != 1 || r.FighterFighter != 0 {
		t.Fatalf("unexpected report %+v", r)
	}
	if !reflect.DeepEqual(r.Grounded, []string{"resting"}) {
		t.Fatalf("expected only resting grounded, got %v", r.Grounded)
	}
	if arena.Platforms[0].Contacts() != 1 {
		t.Fatalf("expected platform to record one contact, got %d", arena.Platforms[0].Contacts())
	}
}

func TestJumpSurvivesGroundContact(t *testing.T) {
	arena := floorArena(t, 0, false)
	f := newTestFighter(t, "jumper", cp.Vector{X: 5, Y: 10.5}, cp.Vector{})
	b := New(arena, []*Fighter{f}, Config{})

	f.Push(cp.Vector{Y: -5})
	if err := b.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if f.Velocity().Y != -5 || f.Position().Y != 5.5 {
		t.Fatalf("expected jump to carry, got pos=%v vel=%v", f.Position(), f.Velocity())
	}
}

func TestDropThrough(t *testing.T) {
	cases := []struct {
		name        string
		passThrough bool
		wantFall    bool
	}{
		{"pass_through", true, true},
		{"solid", false, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			arena := floorArena(t, 1, c.passThrough)
			f := newTestFighter(t, "alien", cp.Vector{X: 5, Y: 10.5}, cp.Vector{})
			b := New(arena, []*Fighter{f}, Config{})

			if err := b.Step(); err != nil {
				t.Fatalf("step: %v", err)
			}
			if err := b.DropThrough(0); err != nil {
				t.Fatalf("drop: %v", err)
			}
			if err := b.Run(20); err != nil {
				t.Fatalf("run: %v", err)
			}

			fell := f.Position().Y > 14
			if fell != c.wantFall {
				t.Fatalf("fell=%v, expected %v (y=%v)", fell, c.wantFall, f.Position().Y)
			}
			if len(f.Ignored()) != 0 {
				t.Fatalf("ignored platforms should clear once contact ends or never start, got %v", f.Ignored())
			}
		})
	}

	t.Run("unknown_fighter", func(t *testing.T) {
		b := New(floorArena(t, 1, true), nil, Config{})
		if err := b.DropThrough(3); !errors.Is(err, ErrUnknownFighter) {
			t.Fatalf("expected ErrUnknownFighter, got %v", err)
		}
	})
}

func TestDropThroughIgnoredWhileOverlapping(t *testing.T) {
	arena := floorArena(t, 1, true)
	f := newTestFighter(t, "alien", cp.Vector{X: 5, Y: 10.5}, cp.Vector{})
	b := New(arena, []*Fighter{f}, Config{})

	if err := b.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	f.DropThrough(arena)
	if err := b.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if !reflect.DeepEqual(f.Ignored(), []int{1}) || f.Grounded() {
		t.Fatalf("expected platform 1 ignored while still overlapping, ignored=%v", f.Ignored())
	}
	if f.Velocity().Y != testGravity {
		t.Fatalf("expected fighter to accelerate through the platform, v=%v", f.Velocity())
	}
}

func TestFightersPushApart(t *testing.T) {
	arena, err := NewArena("void", 0, nil)
	if err != nil {
		t.Fatalf("arena: %v", err)
	}

	cases := []struct {
		name      string
		x0, x1    float64
		wantSign0 float64
	}{
		{"left_right", 0, 1, -1},
		{"right_left", 1, 0, 1},
		{"stacked", 0, 0, -1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f0 := newTestFighter(t, "a", cp.Vector{X: c.x0}, cp.Vector{})
			f1 := newTestFighter(t, "b", cp.Vector{X: c.x1}, cp.Vector{})
			b := New(arena, []*Fighter{f0, f1}, Config{PushStrength: 0.25})
			if err := b.Step(); err != nil {
				t.Fatalf("step: %v", err)
			}
			if f0.Velocity().X != c.wantSign0*0.25 || f1.Velocity().X != -c.wantSign0*0.25 {
				t.Fatalf("unexpected push: v0=%v v1=%v", f0.Velocity(), f1.Velocity())
			}
			if b.Report().FighterFighter != 1 {
				t.Fatalf("expected one fighter/fighter collision, got %d", b.Report().FighterFighter)
			}
		})
	}
}

func TestBouncePadScript(t *testing.T) {
	src, err := prefabs.LoadScript("bounce.tengo")
	if err != nil {
		t.Fatalf("load script: %v", err)
	}
	effect, err := script.Compile("bounce.tengo", src)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	arena := floorArena(t, 3, false)
	arena.Platforms[0].SetEffect(effect)

	f := newTestFighter(t, "mage", cp.Vector{X: 5, Y: 10.5}, cp.Vector{Y: 3})
	b := New(arena, []*Fighter{f}, Config{})
	if err := b.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	// landing cancels the fall; the pad's -(2*3+4) and gravity merge to -9.5
	if f.Velocity().Y != -9.5 {
		t.Fatalf("expected launch velocity -9.5, got %v", f.Velocity())
	}
}

func TestScriptErrorAbortsTick(t *testing.T) {
	effect, err := script.Compile("broken", []byte(`push_x = "pad" - tick`))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	arena := floorArena(t, 0, false)
	arena.Platforms[0].SetEffect(effect)

	f := newTestFighter(t, "alien", cp.Vector{X: 5, Y: 10.5}, cp.Vector{Y: 1})
	b := New(arena, []*Fighter{f}, Config{})
	if err := b.Step(); err == nil {
		t.Fatalf("expected script error")
	}
	if b.Tick() != 0 || f.Position().Y != 10.5 || f.Velocity().Y != 1 {
		t.Fatalf("failed tick should not change state: tick=%d pos=%v vel=%v", b.Tick(), f.Position(), f.Velocity())
	}
}

func TestSnapshotRestore(t *testing.T) {
	arena := floorArena(t, 0, false)
	f := newTestFighter(t, "alien", cp.Vector{X: 5, Y: 10.5}, cp.Vector{})
	b := New(arena, []*Fighter{f}, Config{})
	if err := b.Run(3); err != nil {
		t.Fatalf("run: %v", err)
	}
	snap := b.Snapshot()

	g := newTestFighter(t, "alien", cp.Vector{}, cp.Vector{X: 9})
	other := New(arena, []*Fighter{g}, Config{})
	if err := other.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if other.Tick() != 3 || !reflect.DeepEqual(g.State(), f.State()) {
		t.Fatalf("restored state differs: %+v vs %+v", g.State(), f.State())
	}

	snap.Fighters = append(snap.Fighters, FighterState{Name: "ghost"})
	if err := other.Restore(snap); !errors.Is(err, ErrUnknownFighter) {
		t.Fatalf("expected ErrUnknownFighter, got %v", err)
	}
}

func TestNewFighterRejectsInvalidBoxes(t *testing.T) {
	bad := physics.BoundingBox{Size: cp.Vector{X: -1, Y: 1}}
	if _, err := NewFighter("bad", cp.Vector{}, []physics.BoundingBox{bad}); !errors.Is(err, physics.ErrInvalidGeometry) {
		t.Fatalf("expected ErrInvalidGeometry, got %v", err)
	}
	f := newTestFighter(t, "ok", cp.Vector{}, cp.Vector{})
	if err := f.SetHurtboxes([]physics.BoundingBox{bad}); !errors.Is(err, physics.ErrInvalidGeometry) {
		t.Fatalf("expected ErrInvalidGeometry, got %v", err)
	}
}

func TestContactEvents(t *testing.T) {
	arena := floorArena(t, 1, true)
	f := newTestFighter(t, "alien", cp.Vector{X: 5, Y: 9}, cp.Vector{})
	b := New(arena, []*Fighter{f}, Config{})

	if err := b.Run(3); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := b.DropThrough(0); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if err := b.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}

	want := []Event{
		{Tick: 3, Fighter: "alien", Kind: EventLanded, Platforms: []int{1}},
		{Tick: 3, Fighter: "alien", Kind: EventDrop, Platforms: []int{1}},
		{Tick: 4, Fighter: "alien", Kind: EventLeft},
	}
	if got := b.Events(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected events %+v, got %+v", want, got)
	}
	if got := b.Events(); got != nil {
		t.Fatalf("expected queue drained, got %+v", got)
	}
}
