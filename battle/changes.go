package battle

import (
	"slices"

	"github.com/jakecoffman/cp"
)

// FighterChanges accumulates what one tick of collisions does to a fighter.
//
// Forces sum, so opposing pushes cancel. ContactedPlatforms is the sorted
// union of platform ids, so a platform touched by any collision counts as
// touched once. Both rules are order independent; float sums are associative
// up to rounding.
type FighterChanges struct {
	Force              cp.Vector
	ContactedPlatforms []int
}

func (c FighterChanges) Merge(other FighterChanges) FighterChanges {
	return FighterChanges{
		Force:              c.Force.Add(other.Force),
		ContactedPlatforms: unionIDs(c.ContactedPlatforms, other.ContactedPlatforms),
	}
}

// PlatformChanges counts fighter contacts on a platform this tick.
type PlatformChanges struct {
	Contacts int
}

func (c PlatformChanges) Merge(other PlatformChanges) PlatformChanges {
	return PlatformChanges{Contacts: c.Contacts + other.Contacts}
}

func unionIDs(a, b []int) []int {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]int, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.Sort(out)
	return slices.Compact(out)
}
