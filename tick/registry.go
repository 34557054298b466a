package tick

import (
	"fmt"
	"slices"
	"unsafe"
	"weak"

	"github.com/kamstrup/intmap"
	"go.uber.org/zap"
)

// registry owns scheduler membership. Every registered entry is in all; an entry is in at
// most one group, and tiers holds Disabled for exactly the entries in no group.
type registry struct {
	all    []*entry
	byID   *intmap.Map[EntryID, *entry]
	byKey  map[any]*entry
	tiers  *intmap.Map[EntryID, Tier]
	groups [tierCount][]*entry
	resume [tierCount]int
	nextID EntryID

	// versions count membership changes per group.
	versions [tierCount]uint64
}

func newRegistry() *registry {
	return &registry{
		byID:  intmap.New[EntryID, *entry](256),
		byKey: make(map[any]*entry),
		tiers: intmap.New[EntryID, Tier](256),
	}
}

// Register starts scheduling e and returns its id. The scheduler only keeps a weak
// reference; e must stay reachable elsewhere for as long as it should be ticked.
// Registering nil returns 0. Zero-sized types share one address, so they cannot be told
// apart; registering one is refused with a warning and returns 0. Registering the same
// pointer twice returns the existing id and changes nothing.
//
// The entity is classified immediately against the current reference point and is eligible
// for the next dispatch of its tier.
func Register[T any, P interface {
	*T
	Tickable
}](s *Scheduler, e P) EntryID {
	ptr := (*T)(e)
	if ptr == nil {
		return 0
	}
	if unsafe.Sizeof(*ptr) == 0 {
		s.log.Warn("refusing zero-sized tickable", zap.String("type", fmt.Sprintf("%T", e)))
		return 0
	}

	key := weak.Make(ptr)
	if existing, ok := s.reg.byKey[key]; ok {
		return existing.id
	}

	s.reg.nextID++
	ent := newEntry[T, P](s.reg.nextID, key)
	tier := s.classify(e)
	s.reg.insert(ent, tier)

	if s.cfg.Diagnostics {
		s.log.Debug("registered tickable",
			zap.Uint64("id", uint64(ent.id)),
			zap.Stringer("tier", tier),
			zap.Int("total", len(s.reg.all)))
	}
	return ent.id
}

// Unregister stops scheduling e. It reports whether e was registered.
func Unregister[T any, P interface {
	*T
	Tickable
}](s *Scheduler, e P) bool {
	ptr := (*T)(e)
	if ptr == nil {
		return false
	}

	ent, ok := s.reg.byKey[weak.Make(ptr)]
	if !ok {
		return false
	}
	s.unregister(ent)
	return true
}

// Remove stops scheduling the entry with the given id. It reports whether the id was registered.
// Unlike Unregister it also works once the entity itself has been collected.
func (s *Scheduler) Remove(id EntryID) bool {
	ent, ok := s.reg.byID.Get(id)
	if !ok {
		return false
	}
	s.unregister(ent)
	return true
}

func (s *Scheduler) unregister(ent *entry) {
	tier := s.reg.remove(ent)
	if s.cfg.Diagnostics {
		s.log.Debug("unregistered tickable",
			zap.Uint64("id", uint64(ent.id)),
			zap.Stringer("tier", tier),
			zap.Int("total", len(s.reg.all)))
	}
}

// TierOf returns the current tier of a registered entry.
func (s *Scheduler) TierOf(id EntryID) (Tier, bool) {
	return s.reg.tiers.Get(id)
}

// GetGroupCounts returns the member count of each active tier.
func (s *Scheduler) GetGroupCounts() (high, medium, low int) {
	return len(s.reg.groups[High]), len(s.reg.groups[Medium]), len(s.reg.groups[Low])
}

// GetTotalCount returns the number of registered entities, Disabled ones included.
func (s *Scheduler) GetTotalCount() int {
	return len(s.reg.all)
}

func (r *registry) insert(e *entry, t Tier) {
	e.slot = len(r.all)
	r.all = append(r.all, e)
	r.byID.Put(e.id, e)
	r.byKey[e.key] = e
	r.tiers.Put(e.id, t)
	r.attach(t, e)
}

// remove drops e entirely and returns the tier it was in.
func (r *registry) remove(e *entry) Tier {
	tier, ok := r.tiers.Get(e.id)
	if ok {
		r.detach(tier, e)
		r.tiers.Del(e.id)
	} else {
		tier = Disabled
	}

	last := len(r.all) - 1
	moved := r.all[last]
	r.all[e.slot] = moved
	moved.slot = e.slot
	r.all[last] = nil
	r.all = r.all[:last]

	r.byID.Del(e.id)
	delete(r.byKey, e.key)
	e.removed = true
	return tier
}

// move puts e in tier to and returns the tier it was in before.
func (r *registry) move(e *entry, to Tier) Tier {
	from, ok := r.tiers.Get(e.id)
	if !ok {
		from = Disabled
	}
	if ok && from == to {
		return from
	}

	r.detach(from, e)
	r.attach(to, e)
	r.tiers.Put(e.id, to)
	return from
}

func (r *registry) attach(t Tier, e *entry) {
	if t == Disabled {
		return
	}
	r.groups[t] = append(r.groups[t], e)
	r.versions[t]++
}

// detach removes e from the group keeping the order of the remaining members. The resume
// cursor is shifted so it still points at the member that was due next.
func (r *registry) detach(t Tier, e *entry) {
	if t == Disabled {
		return
	}

	group := r.groups[t]
	i := slices.Index(group, e)
	if i < 0 {
		return
	}
	r.groups[t] = slices.Delete(group, i, i+1)
	r.versions[t]++

	n := len(r.groups[t])
	switch {
	case n == 0:
		r.resume[t] = 0
	case i < r.resume[t]:
		r.resume[t]--
	}
	if r.resume[t] >= n {
		r.resume[t] = 0
	}
}
