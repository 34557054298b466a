// Package tick schedules per-frame updates for a large, changing population of entities.
// Entities are grouped into distance based priority tiers around a reference point and each
// tier is ticked on its own frame cadence under a wall clock budget, resuming where a
// truncated pass stopped so nobody starves.
package tick

import (
	"weak"

	"github.com/go-gl/mathgl/mgl64"
)

// Tickable is anything the scheduler can drive.
type Tickable interface {
	// IsActive reports whether the entity should currently be ticked or reclassified.
	IsActive() bool
	// Position is the world position used for distance classification.
	Position() mgl64.Vec3
	// Tick advances the entity by dt seconds.
	Tick(dt float64)
}

// Positioner provides the reference point tiers are measured from, typically the player.
type Positioner interface {
	Position() mgl64.Vec3
}

// EntryID identifies one registration. Zero is never assigned.
type EntryID uint64

// entry is a registered entity. The scheduler never holds a strong reference to it.
type entry struct {
	id      EntryID
	key     any
	resolve func() Tickable
	slot    int
	removed bool
}

func newEntry[T any, P interface {
	*T
	Tickable
}](id EntryID, ptr weak.Pointer[T]) *entry {
	return &entry{
		id:  id,
		key: ptr,
		resolve: func() Tickable {
			if v := ptr.Value(); v != nil {
				return P(v)
			}
			return nil
		},
	}
}
