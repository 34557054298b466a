package tick

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// classify computes the tier of t against the current reference point.
// Without a reference point everything is Disabled.
func (s *Scheduler) classify(t Tickable) Tier {
	if s.ref == nil {
		return Disabled
	}
	return s.tierFor(distanceSq(t.Position(), s.ref.Position()))
}

// tierFor maps a squared distance to a tier. Culling takes precedence over the thresholds.
func (s *Scheduler) tierFor(d2 float64) Tier {
	if s.cfg.UseCullingDistance && d2 > s.cullSq {
		return Disabled
	}
	if d2 < s.highSq {
		return High
	}
	if d2 < s.mediumSq {
		return Medium
	}
	return Low
}

func distanceSq(a, b mgl64.Vec3) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}

// Reclassify runs a classification pass now, independent of the sort interval.
// Its events are returned by the next Update.
func (s *Scheduler) Reclassify() {
	s.reclassify()
}

// reclassify recomputes the tier of every active entity. Inactive entities keep their
// tier; entities collected without being unregistered are purged.
func (s *Scheduler) reclassify() {
	if s.ref == nil {
		return
	}

	start := s.clock()
	origin := s.ref.Position()
	classified := 0

	for _, e := range s.reg.all {
		t := e.resolve()
		if t == nil {
			s.stale = append(s.stale, e)
			continue
		}
		if !t.IsActive() {
			continue
		}
		classified++

		to := s.tierFor(distanceSq(t.Position(), origin))
		if from := s.reg.move(e, to); from != to {
			s.emit(TierChanged{ID: e.id, From: from, To: to})
		}
	}

	for i, e := range s.stale {
		tier := s.reg.remove(e)
		s.emit(StalePurged{ID: e.id, Tier: tier})
		if s.cfg.Diagnostics {
			s.log.Debug("purged stale tickable", zap.Uint64("id", uint64(e.id)), zap.Stringer("tier", tier))
		}
		s.stale[i] = nil
	}
	s.stale = s.stale[:0]

	elapsed := s.clock().Sub(start)
	total := len(s.reg.all)
	s.perf.recordSort(Sample{Duration: elapsed, Processed: classified, Total: total})

	if s.cfg.Diagnostics {
		high, medium, low := s.GetGroupCounts()
		s.log.Debug("groups sorted",
			zap.Duration("elapsed", elapsed),
			zap.Int("high", high),
			zap.Int("medium", medium),
			zap.Int("low", low),
			zap.Int("total", total))
	}
}
