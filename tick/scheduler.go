package tick

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler decides which registered entities are ticked each frame.
// It is not safe for concurrent use; drive it and mutate it from one goroutine.
type Scheduler struct {
	cfg   Config
	log   *zap.Logger
	clock func() time.Time
	ref   Positioner

	highSq   float64
	mediumSq float64
	cullSq   float64

	reg          *registry
	perf         performanceTracker
	frameCounter [tierCount]int
	lastTick     [tierCount]time.Time
	lastSort     time.Time
	frame        uint64

	pass      []*entry
	stale     []*entry
	events    []Event
	delivered bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used for configuration warnings and diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(s *Scheduler) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock replaces time.Now as the scheduler's wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithReference sets the point tiers are measured from.
func WithReference(p Positioner) Option {
	return func(s *Scheduler) {
		s.ref = p
	}
}

// New creates a scheduler. Invalid settings in cfg are replaced by defaults and logged.
func New(cfg Config, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:   cfg,
		log:   zap.NewNop(),
		clock: time.Now,
		reg:   newRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cfg.normalize(s.log)
	s.highSq = s.cfg.HighPriorityDistance * s.cfg.HighPriorityDistance
	s.mediumSq = s.cfg.MediumPriorityDistance * s.cfg.MediumPriorityDistance
	s.cullSq = s.cfg.CullingDistance * s.cfg.CullingDistance

	now := s.clock()
	s.lastSort = now
	for i := range s.lastTick {
		s.lastTick[i] = now
	}

	if s.cfg.Diagnostics {
		s.logSettings()
	}
	return s
}

// SetReference replaces the reference point. With nil, classification passes are skipped
// and new registrations start Disabled.
func (s *Scheduler) SetReference(p Positioner) {
	s.ref = p
}

// Config returns the configuration in effect, after corrections.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Frame returns the number of Update calls so far.
func (s *Scheduler) Frame() uint64 {
	return s.frame
}

// Update runs one scheduler frame: a classification pass when the sort interval has elapsed,
// then the High, Medium and Low dispatch passes that are due. The returned events are only
// valid until the next call to Update or Reclassify.
func (s *Scheduler) Update() []Event {
	s.resetEvents()
	s.frame++

	now := s.clock()
	if now.Sub(s.lastSort) > s.cfg.SortInterval {
		s.reclassify()
		s.lastSort = now
	}

	for _, t := range ActiveTiers {
		s.dispatch(t)
	}

	s.delivered = true
	return s.events
}

// Run calls Update every interval until ctx is cancelled, passing each event to handle.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration, handle func(Event)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			events := s.Update()
			if handle == nil {
				continue
			}
			for _, ev := range events {
				handle(ev)
			}
		}
	}
}

// GetPerformanceStats returns a snapshot of the rolling pass statistics.
func (s *Scheduler) GetPerformanceStats() PerformanceStats {
	return s.perf.snapshot()
}

func (s *Scheduler) emit(ev Event) {
	s.resetEvents()
	s.events = append(s.events, ev)
}

func (s *Scheduler) resetEvents() {
	if !s.delivered {
		return
	}
	clear(s.events)
	s.events = s.events[:0]
	s.delivered = false
}

func (s *Scheduler) logSettings() {
	for _, t := range ActiveTiers {
		ts := s.cfg.Settings(t)
		s.log.Debug("tier settings",
			zap.Stringer("tier", t),
			zap.Int("frame_interval", ts.FrameInterval),
			zap.Float64("time_budget_ms", ts.TimeBudgetMs),
			zap.Int("max_objects_per_frame", ts.MaxObjectsPerFrame))
	}
	s.log.Debug("classifier settings",
		zap.Float64("high_priority_distance", s.cfg.HighPriorityDistance),
		zap.Float64("medium_priority_distance", s.cfg.MediumPriorityDistance),
		zap.Bool("use_culling_distance", s.cfg.UseCullingDistance),
		zap.Float64("culling_distance", s.cfg.CullingDistance),
		zap.Duration("sort_interval", s.cfg.SortInterval))
}
