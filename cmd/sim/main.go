package main

import (
	"flag"
	"log"
	"path/filepath"
	"time"

	"github.com/milk9111/walpurgis/battle"
	"github.com/milk9111/walpurgis/checkpoint"
	"github.com/milk9111/walpurgis/prefabs"
)

const appName = "walpurgis_sim"

func main() {
	arenaName := flag.String("arena", "arena.yaml", "arena prefab in prefabs/")
	rosterName := flag.String("roster", "roster.yaml", "roster prefab in prefabs/")
	ticks := flag.Int("ticks", 0, "ticks to simulate (0 uses physics.yaml)")
	debug := flag.Bool("debug", false, "log every tick")
	watch := flag.Bool("watch", false, "reload prefabs and scripts from disk while running")
	interval := flag.Duration("interval", time.Second/60, "wall time per tick when -watch is set")
	saveSlot := flag.String("save", "", "checkpoint slot to write when done")
	loadSlot := flag.String("load", "", "checkpoint slot to resume from")
	flag.Parse()

	phys, err := prefabs.LoadPhysicsSpec()
	if err != nil {
		log.Fatal(err)
	}
	cfg := battle.ConfigFromSpec(phys)
	cfg.Debug = *debug
	if *ticks <= 0 {
		*ticks = phys.Ticks
	}

	arena, err := loadArena(*arenaName)
	if err != nil {
		log.Fatal(err)
	}
	fighters, err := loadFighters(*rosterName)
	if err != nil {
		log.Fatal(err)
	}
	b := battle.New(arena, fighters, cfg)

	var store *checkpoint.Store
	if *saveSlot != "" || *loadSlot != "" {
		store, err = checkpoint.Open(appName)
		if err != nil {
			log.Fatal(err)
		}
	}
	if *loadSlot != "" {
		snap, err := store.Load(*loadSlot)
		if err != nil {
			log.Fatal(err)
		}
		if snap.Arena != arena.Name {
			log.Printf("sim: checkpoint %s was taken in arena %s, resuming in %s", *loadSlot, snap.Arena, arena.Name)
		}
		if err := b.Restore(snap); err != nil {
			log.Fatal(err)
		}
		log.Printf("sim: resumed %s at tick %d", *loadSlot, b.Tick())
	}

	if *watch {
		err = runWatched(b, *ticks, *interval, *arenaName, *rosterName)
	} else {
		err = b.Run(*ticks)
	}
	if err != nil {
		log.Fatal(err)
	}

	for _, e := range b.Events() {
		log.Printf("sim: tick %d %s %s %v", e.Tick, e.Fighter, e.Kind, e.Platforms)
	}
	for _, f := range b.Fighters {
		log.Printf("sim: %s pos=(%.2f, %.2f) vel=(%.2f, %.2f) grounded=%v touched=%v",
			f.Name, f.Position().X, f.Position().Y, f.Velocity().X, f.Velocity().Y, f.Grounded(), f.Touched())
	}
	log.Printf("sim: %s finished at tick %d", b.Arena.Name, b.Tick())

	if *saveSlot != "" {
		if err := store.Save(*saveSlot, b.Snapshot()); err != nil {
			log.Fatal(err)
		}
	}
}

func loadArena(name string) (*battle.Arena, error) {
	spec, err := prefabs.LoadArenaSpec(name)
	if err != nil {
		return nil, err
	}
	return battle.NewArenaFromSpec(spec)
}

func loadFighters(name string) ([]*battle.Fighter, error) {
	roster, err := prefabs.LoadRosterSpec(name)
	if err != nil {
		return nil, err
	}
	fighters := make([]*battle.Fighter, 0, len(roster.Fighters))
	for _, fs := range roster.Fighters {
		f, err := battle.NewFighterFromSpec(fs)
		if err != nil {
			return nil, err
		}
		fighters = append(fighters, f)
	}
	return fighters, nil
}

// runWatched paces the battle in wall time and applies prefab edits between
// ticks. A broken edit is logged and the previous version stays live.
func runWatched(b *battle.Battle, ticks int, interval time.Duration, arenaName, rosterName string) error {
	w, err := prefabs.NewWatcher("prefabs", filepath.Join("prefabs", "scripts"))
	if err != nil {
		return err
	}
	defer w.Close()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; i < ticks; i++ {
		<-ticker.C
		for _, c := range w.Drain() {
			reload(b, c, arenaName, rosterName)
		}
		select {
		case err := <-w.Errors:
			log.Printf("sim: watcher: %v", err)
		default:
		}
		if err := b.Step(); err != nil {
			return err
		}
	}
	return nil
}

func reload(b *battle.Battle, c prefabs.Change, arenaName, rosterName string) {
	base := filepath.Base(c.Path)
	switch {
	case c.Kind == prefabs.ChangeScript || base == filepath.Base(arenaName):
		arena, err := loadArena(arenaName)
		if err != nil {
			log.Printf("sim: reload %s: %v", base, err)
			return
		}
		b.SetArena(arena)
		log.Printf("sim: reloaded arena %s after %s changed", arena.Name, base)
	case base == filepath.Base(rosterName):
		roster, err := prefabs.LoadRosterSpec(rosterName)
		if err != nil {
			log.Printf("sim: reload %s: %v", base, err)
			return
		}
		for _, fs := range roster.Fighters {
			updateHurtboxes(b, fs)
		}
	}
}

// updateHurtboxes swaps the boxes of the fighter named in fs. Position and
// velocity carry over.
func updateHurtboxes(b *battle.Battle, fs prefabs.FighterSpec) {
	fresh, err := battle.NewFighterFromSpec(fs)
	if err != nil {
		log.Printf("sim: reload fighter %s: %v", fs.Name, err)
		return
	}
	for _, f := range b.Fighters {
		if f.Name != fs.Name {
			continue
		}
		if err := f.SetHurtboxes(fresh.Hitboxes()); err != nil {
			log.Printf("sim: reload fighter %s: %v", fs.Name, err)
		}
		return
	}
}
