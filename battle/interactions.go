package battle

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/walpurgis/common"
	"github.com/milk9111/walpurgis/physics"
)

// HandleFighterPlatform resolves one fighter/platform contact. The fighter
// learns which platform it touched plus any scripted push; the platform
// counts the contact.
func HandleFighterPlatform(c physics.Collision[*Fighter, *Platform], tick int) (FighterChanges, PlatformChanges, error) {
	fighter, platform := c.First, c.Second
	changes := FighterChanges{ContactedPlatforms: []int{platform.ID}}
	if e := platform.Effect(); e != nil {
		push, err := e.Push(fighter.Velocity(), tick, len(c.Overlaps))
		if err != nil {
			return FighterChanges{}, PlatformChanges{}, fmt.Errorf("platform %d: %w", platform.ID, err)
		}
		changes.Force = push
	}
	return changes, PlatformChanges{Contacts: 1}, nil
}

// HandleFighterFighter pushes two overlapping fighters apart horizontally
// with equal and opposite forces. Fighters at the same x are split by
// index: the first goes left.
func HandleFighterFighter(c physics.Collision[*Fighter, *Fighter], strength float64) (FighterChanges, FighterChanges) {
	dir := common.Sign(c.First.Offset().X - c.Second.Offset().X)
	if dir == 0 {
		dir = -1
	}
	push := cp.Vector{X: dir * strength}
	return FighterChanges{Force: push}, FighterChanges{Force: push.Neg()}
}
