package checkpoint

import (
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/walpurgis/battle"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const snapshotObject = "battle"

var ErrNoCheckpoint = errors.New("checkpoint: no saved battle")

// Store keeps battle snapshots in the per-user data directory, one property
// per slot.
type Store struct {
	manager *gdata.Manager
}

// Open prepares storage for appName.
func Open(appName string) (*Store, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s: %w", appName, err)
	}
	return &Store{manager: m}, nil
}

func (s *Store) Exists(slot string) bool {
	return s.manager.ObjectPropExists(snapshotObject, slot)
}

func (s *Store) Save(slot string, snap battle.Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("checkpoint: marshal %s: %w", slot, err)
	}
	if err := s.manager.SaveObjectProp(snapshotObject, slot, data); err != nil {
		return fmt.Errorf("checkpoint: save %s: %w", slot, err)
	}
	log.Printf("checkpoint: saved %s at tick %d", slot, snap.Tick)
	return nil
}

// Load reads the snapshot in slot, returning ErrNoCheckpoint when the slot
// was never written.
func (s *Store) Load(slot string) (battle.Snapshot, error) {
	if !s.Exists(slot) {
		return battle.Snapshot{}, fmt.Errorf("%w: %s", ErrNoCheckpoint, slot)
	}
	data, err := s.manager.LoadObjectProp(snapshotObject, slot)
	if err != nil {
		return battle.Snapshot{}, fmt.Errorf("checkpoint: load %s: %w", slot, err)
	}
	var snap battle.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return battle.Snapshot{}, fmt.Errorf("checkpoint: unmarshal %s: %w", slot, err)
	}
	return snap, nil
}
