package tick

import (
	"runtime/debug"
	"slices"
	"time"

	"go.uber.org/zap"
)

// dispatch advances the frame counter of t and runs a pass once it reaches the interval.
func (s *Scheduler) dispatch(t Tier) {
	settings := s.cfg.Settings(t)

	s.frameCounter[t]++
	if s.frameCounter[t] < settings.FrameInterval {
		return
	}
	s.frameCounter[t] = 0
	s.tickGroup(t, settings)
}

// tickGroup runs one budgeted pass over the members of t, resuming the rotation where the
// previous pass stopped.
func (s *Scheduler) tickGroup(t Tier, settings TierSettings) {
	if len(s.reg.groups[t]) == 0 {
		return
	}

	start := s.clock()
	dt := start.Sub(s.lastTick[t]).Seconds()
	s.lastTick[t] = start

	// Ticks may register or unregister; iterate a copy and rely on entry.removed.
	s.pass = append(s.pass[:0], s.reg.groups[t]...)
	count := len(s.pass)

	maxObjects := settings.MaxObjectsPerFrame
	if maxObjects < 0 {
		maxObjects = count
	}
	budget := settings.budget()
	stride := s.cfg.BudgetCheckInterval

	first := s.reg.resume[t] % count
	version := s.reg.versions[t]
	processed := 0
	last := -1
	truncated := false
	var elapsed time.Duration

	for i := 0; i < count && processed < maxObjects; i++ {
		idx := (first + i) % count
		e := s.pass[idx]
		if e.removed {
			continue
		}
		ent := e.resolve()
		if ent == nil || !ent.IsActive() {
			continue
		}

		s.tickOne(t, e, ent, dt)
		processed++
		last = idx

		if processed%stride == 0 {
			elapsed = s.clock().Sub(start)
			if elapsed > budget {
				truncated = true
				break
			}
		}
	}

	if last >= 0 {
		if s.reg.versions[t] == version {
			s.reg.resume[t] = (last + 1) % count
		} else {
			s.reg.resume[t] = s.resumeAfter(t, last)
		}
	}
	clear(s.pass)
	s.pass = s.pass[:0]

	elapsed = s.clock().Sub(start)
	s.perf.recordTier(t, Sample{Duration: elapsed, Processed: processed, Total: count}, truncated)

	if truncated {
		s.emit(BudgetExceeded{Tier: t, Elapsed: elapsed, Processed: processed, Total: count})
		if s.cfg.Diagnostics {
			s.log.Debug("time budget exceeded",
				zap.Stringer("tier", t),
				zap.Duration("elapsed", elapsed),
				zap.Float64("budget_ms", settings.TimeBudgetMs),
				zap.Int("processed", processed),
				zap.Int("total", count))
		}
		return
	}

	if s.cfg.Diagnostics && processed > 0 {
		s.log.Debug("tier updated",
			zap.Stringer("tier", t),
			zap.Duration("elapsed", elapsed),
			zap.Int("processed", processed),
			zap.Int("total", count))
	}
}

// resumeAfter finds the live position of the member due after s.pass[last] once ticks have
// changed the group during the pass.
func (s *Scheduler) resumeAfter(t Tier, last int) int {
	group := s.reg.groups[t]
	n := len(group)
	if n == 0 {
		return 0
	}

	if e := s.pass[last]; !e.removed {
		if i := slices.Index(group, e); i >= 0 {
			return (i + 1) % n
		}
	}
	count := len(s.pass)
	for j := 1; j < count; j++ {
		e := s.pass[(last+j)%count]
		if e.removed {
			continue
		}
		if i := slices.Index(group, e); i >= 0 {
			return i
		}
	}
	return 0
}

func (s *Scheduler) tickOne(t Tier, e *entry, ent Tickable, dt float64) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("tick panicked",
				zap.Stringer("tier", t),
				zap.Uint64("id", uint64(e.id)),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			s.emit(TickPanicked{ID: e.id, Tier: t, Value: r})
		}
	}()
	ent.Tick(dt)
}
