package tick_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/plus3/tiered/tick"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCadence(t *testing.T) {
	t.Run("low tier every fifth frame", func(t *testing.T) {
		cfg := tick.DefaultConfig()
		cfg.Low = tick.TierSettings{FrameInterval: 5, TimeBudgetMs: 3, MaxObjectsPerFrame: 25}
		s := tick.New(cfg, tick.WithReference(&point{}))

		a := newAgent("far", 100, 0, 0)
		tick.Register(s, a)

		for i := 0; i < 4; i++ {
			s.Update()
		}
		assert.Equal(t, 0, a.ticks)

		s.Update()
		assert.Equal(t, 1, a.ticks)
		assert.Equal(t, int64(1), s.GetPerformanceStats().Low.Passes)
	})

	for n := 1; n <= 6; n++ {
		t.Run(fmt.Sprintf("interval=%d", n), func(t *testing.T) {
			s := tick.New(highOnlyConfig(tick.TierSettings{FrameInterval: n, TimeBudgetMs: 100, MaxObjectsPerFrame: -1}),
				tick.WithReference(&point{}))
			a := newAgent("a", 0, 0, 0)
			tick.Register(s, a)

			for call := 1; call <= 30; call++ {
				before := a.ticks
				s.Update()
				if call%n == 0 {
					assert.Equal(t, before+1, a.ticks, "call %d", call)
				} else {
					assert.Equal(t, before, a.ticks, "call %d", call)
				}
			}
		})
	}

	t.Run("tiers dispatch high before medium before low", func(t *testing.T) {
		cfg := tick.DefaultConfig()
		cfg.Medium.FrameInterval = 1
		cfg.Low.FrameInterval = 1
		s := tick.New(cfg, tick.WithReference(&point{}))

		var trace []string
		for _, a := range []*agent{newAgent("low", 100, 0, 0), newAgent("medium", 20, 0, 0), newAgent("high", 1, 0, 0)} {
			a.trace = &trace
			tick.Register(s, a)
		}

		s.Update()
		assert.Equal(t, []string{"high", "medium", "low"}, trace)
	})
}

func TestRotation(t *testing.T) {
	t.Run("object cap rotates through members", func(t *testing.T) {
		s := tick.New(highOnlyConfig(tick.TierSettings{FrameInterval: 1, TimeBudgetMs: 1e6, MaxObjectsPerFrame: 2}),
			tick.WithReference(&point{}))

		var trace []string
		spawnAgents(s, 5, &trace)

		var passes [][]string
		for i := 0; i < 3; i++ {
			trace = trace[:0]
			s.Update()
			passes = append(passes, append([]string(nil), trace...))
		}

		assert.Equal(t, [][]string{{"a0", "a1"}, {"a2", "a3"}, {"a4", "a0"}}, passes)
	})

	t.Run("inactive members are skipped", func(t *testing.T) {
		s := tick.New(highOnlyConfig(tick.TierSettings{FrameInterval: 1, TimeBudgetMs: 1e6, MaxObjectsPerFrame: 2}),
			tick.WithReference(&point{}))

		var trace []string
		agents := spawnAgents(s, 4, &trace)
		agents[1].active = false

		s.Update()
		assert.Equal(t, []string{"a0", "a2"}, trace)

		trace = trace[:0]
		s.Update()
		assert.Equal(t, []string{"a3", "a0"}, trace)
	})

	t.Run("unregister before the cursor keeps the rotation", func(t *testing.T) {
		s := tick.New(highOnlyConfig(tick.TierSettings{FrameInterval: 1, TimeBudgetMs: 1e6, MaxObjectsPerFrame: 2}),
			tick.WithReference(&point{}))

		var trace []string
		agents := spawnAgents(s, 5, &trace)

		s.Update()
		require.Equal(t, []string{"a0", "a1"}, trace)

		tick.Unregister(s, agents[0])
		trace = trace[:0]
		s.Update()
		assert.Equal(t, []string{"a2", "a3"}, trace)
	})

	t.Run("unregister during a pass", func(t *testing.T) {
		s := tick.New(highOnlyConfig(tick.TierSettings{FrameInterval: 1, TimeBudgetMs: 1e6, MaxObjectsPerFrame: -1}),
			tick.WithReference(&point{}))

		var trace []string
		agents := spawnAgents(s, 3, &trace)
		agents[0].onTick = func() { tick.Unregister(s, agents[2]) }

		s.Update()
		assert.Equal(t, []string{"a0", "a1"}, trace)
		assert.Equal(t, 2, s.GetTotalCount())

		trace = trace[:0]
		s.Update()
		assert.Equal(t, []string{"a0", "a1"}, trace)
	})

	t.Run("tick unregistering an earlier member keeps the rotation", func(t *testing.T) {
		s := tick.New(highOnlyConfig(tick.TierSettings{FrameInterval: 1, TimeBudgetMs: 1e6, MaxObjectsPerFrame: 2}),
			tick.WithReference(&point{}))

		var trace []string
		agents := spawnAgents(s, 5, &trace)
		agents[1].onTick = func() { tick.Unregister(s, agents[0]) }

		s.Update()
		require.Equal(t, []string{"a0", "a1"}, trace)

		trace = trace[:0]
		s.Update()
		assert.Equal(t, []string{"a2", "a3"}, trace)

		trace = trace[:0]
		s.Update()
		assert.Equal(t, []string{"a4", "a1"}, trace)
	})

	t.Run("tick unregistering itself keeps the rotation", func(t *testing.T) {
		s := tick.New(highOnlyConfig(tick.TierSettings{FrameInterval: 1, TimeBudgetMs: 1e6, MaxObjectsPerFrame: 2}),
			tick.WithReference(&point{}))

		var trace []string
		agents := spawnAgents(s, 5, &trace)
		agents[1].onTick = func() { tick.Unregister(s, agents[1]) }

		s.Update()
		require.Equal(t, []string{"a0", "a1"}, trace)

		trace = trace[:0]
		s.Update()
		assert.Equal(t, []string{"a2", "a3"}, trace)

		trace = trace[:0]
		s.Update()
		assert.Equal(t, []string{"a4", "a0"}, trace)
	})

	t.Run("removals during a pass never starve a member", func(t *testing.T) {
		s := tick.New(highOnlyConfig(tick.TierSettings{FrameInterval: 1, TimeBudgetMs: 1e6, MaxObjectsPerFrame: 3}),
			tick.WithReference(&point{}))

		agents := spawnAgents(s, 12, nil)
		victims := agents[8:]
		for i := range 4 {
			agents[i].onTick = func() {
				if len(victims) > 0 {
					tick.Unregister(s, victims[0])
					victims = victims[1:]
				}
			}
		}

		// 8 survivors at 3 per pass are all reached within ceil(8/3) passes.
		for i := 0; i < 3; i++ {
			s.Update()
		}
		for i, n := range ticksOf(agents[:8]) {
			assert.GreaterOrEqual(t, n, 1, "agent %d starved", i)
		}
	})

	t.Run("empty tier records nothing", func(t *testing.T) {
		s := tick.New(tick.DefaultConfig(), tick.WithReference(&point{}))
		for i := 0; i < 15; i++ {
			s.Update()
		}
		stats := s.GetPerformanceStats()
		assert.Zero(t, stats.High.Passes)
		assert.Zero(t, stats.Medium.Passes)
		assert.Zero(t, stats.Low.Passes)
	})
}

func TestTimeBudget(t *testing.T) {
	t.Run("pass stops once the budget is exceeded", func(t *testing.T) {
		clock := newFakeClock()
		cfg := highOnlyConfig(tick.TierSettings{FrameInterval: 1, TimeBudgetMs: 3, MaxObjectsPerFrame: -1})
		cfg.BudgetCheckInterval = 1
		s := tick.New(cfg, tick.WithReference(&point{}), tick.WithClock(clock.Now))

		var trace []string
		agents := spawnAgents(s, 10, &trace)
		for _, a := range agents {
			a.clock = clock
			a.cost = time.Millisecond
		}

		events := s.Update()
		assert.Equal(t, []string{"a0", "a1", "a2", "a3"}, trace)
		require.Len(t, events, 1)
		assert.Equal(t, tick.BudgetExceeded{Tier: tick.High, Elapsed: 4 * time.Millisecond, Processed: 4, Total: 10}, events[0])

		high := s.GetPerformanceStats().High
		assert.Equal(t, int64(1), high.Truncated)
		assert.InDelta(t, 4.0, high.LastTimeMs, 1e-9)
		assert.LessOrEqual(t, high.LastTimeMs, 3.0+1.0, "overshoot is at most one tick")

		trace = trace[:0]
		s.Update()
		assert.Equal(t, []string{"a4", "a5", "a6", "a7"}, trace)
	})

	t.Run("budget is checked every ten ticks by default", func(t *testing.T) {
		clock := newFakeClock()
		s := tick.New(highOnlyConfig(tick.TierSettings{FrameInterval: 1, TimeBudgetMs: 3, MaxObjectsPerFrame: 15}),
			tick.WithReference(&point{}), tick.WithClock(clock.Now))

		agents := spawnAgents(s, 25, nil)
		for _, a := range agents {
			a.clock = clock
			a.cost = time.Millisecond
		}

		s.Update()
		high := s.GetPerformanceStats().High
		assert.InDelta(t, 10.0, high.AverageProcessed, 1e-9)
		assert.Equal(t, int64(1), high.Truncated)
	})

	t.Run("object cap bounds an untruncated pass", func(t *testing.T) {
		clock := newFakeClock()
		s := tick.New(highOnlyConfig(tick.TierSettings{FrameInterval: 1, TimeBudgetMs: 1000, MaxObjectsPerFrame: 7}),
			tick.WithReference(&point{}), tick.WithClock(clock.Now))
		spawnAgents(s, 20, nil)

		events := s.Update()
		assert.Empty(t, events)
		high := s.GetPerformanceStats().High
		assert.InDelta(t, 7.0, high.AverageProcessed, 1e-9)
		assert.InDelta(t, 20.0, high.AverageTotal, 1e-9)
		assert.Zero(t, high.Truncated)
	})

	t.Run("no member starves under pressure", func(t *testing.T) {
		clock := newFakeClock()
		cfg := highOnlyConfig(tick.TierSettings{FrameInterval: 1, TimeBudgetMs: 3.5, MaxObjectsPerFrame: -1})
		cfg.BudgetCheckInterval = 1
		s := tick.New(cfg, tick.WithReference(&point{}), tick.WithClock(clock.Now))

		agents := spawnAgents(s, 10, nil)
		for _, a := range agents {
			a.clock = clock
			a.cost = time.Millisecond
		}

		// 4 per pass, so everyone is reached within ceil(10/4) passes.
		for i := 0; i < 3; i++ {
			s.Update()
		}
		for i, n := range ticksOf(agents) {
			assert.GreaterOrEqual(t, n, 1, "agent %d starved", i)
		}
	})
}

func TestDeltaTime(t *testing.T) {
	clock := newFakeClock()
	cfg := tick.DefaultConfig()
	cfg.Medium = tick.TierSettings{FrameInterval: 3, TimeBudgetMs: 5, MaxObjectsPerFrame: 50}
	s := tick.New(cfg, tick.WithReference(&point{}), tick.WithClock(clock.Now))

	high := newAgent("high", 1, 0, 0)
	medium := newAgent("medium", 20, 0, 0)
	tick.Register(s, high)
	tick.Register(s, medium)

	for i := 0; i < 6; i++ {
		clock.Advance(16 * time.Millisecond)
		s.Update()
	}

	assert.Equal(t, 6, high.ticks)
	assert.InDelta(t, 0.016, high.lastDT, 1e-9)
	assert.Equal(t, 2, medium.ticks)
	assert.InDelta(t, 0.048, medium.lastDT, 1e-9)
}

type panicky struct {
	agent
}

func (p *panicky) Tick(dt float64) {
	p.ticks++
	panic("boom")
}

func TestTickPanic(t *testing.T) {
	s := tick.New(highOnlyConfig(tick.TierSettings{FrameInterval: 1, TimeBudgetMs: 1000, MaxObjectsPerFrame: -1}),
		tick.WithReference(&point{}))

	bad := &panicky{agent: *newAgent("bad", 0, 0, 0)}
	good := newAgent("good", 0, 0, 0)
	badID := tick.Register(s, bad)
	tick.Register(s, good)

	var events []tick.Event
	assert.NotPanics(t, func() { events = s.Update() })

	assert.Equal(t, 1, bad.ticks)
	assert.Equal(t, 1, good.ticks)
	require.Len(t, events, 1)
	assert.Equal(t, tick.TickPanicked{ID: badID, Tier: tick.High, Value: "boom"}, events[0])
	assert.InDelta(t, 2.0, s.GetPerformanceStats().High.AverageProcessed, 1e-9)
}
