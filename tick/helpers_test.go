package tick_test

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/tiered/tick"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type point struct {
	pos mgl64.Vec3
}

func (p *point) Position() mgl64.Vec3 {
	return p.pos
}

// agent is a tickable that records every tick it receives.
type agent struct {
	name   string
	pos    mgl64.Vec3
	active bool
	ticks  int
	lastDT float64

	cost   time.Duration
	clock  *fakeClock
	trace  *[]string
	onTick func()
}

func newAgent(name string, x, y, z float64) *agent {
	return &agent{name: name, pos: mgl64.Vec3{x, y, z}, active: true}
}

func (a *agent) IsActive() bool {
	return a.active
}

func (a *agent) Position() mgl64.Vec3 {
	return a.pos
}

func (a *agent) Tick(dt float64) {
	a.ticks++
	a.lastDT = dt
	if a.clock != nil {
		a.clock.Advance(a.cost)
	}
	if a.trace != nil {
		*a.trace = append(*a.trace, a.name)
	}
	if a.onTick != nil {
		a.onTick()
	}
}

// highOnlyConfig puts everything within 1000 units into High and never culls.
func highOnlyConfig(settings tick.TierSettings) tick.Config {
	cfg := tick.DefaultConfig()
	cfg.HighPriorityDistance = 1000
	cfg.MediumPriorityDistance = 2000
	cfg.High = settings
	return cfg
}

// spawnAgents registers n agents at the origin sharing one trace.
func spawnAgents(s *tick.Scheduler, n int, trace *[]string) []*agent {
	agents := make([]*agent, n)
	for i := range agents {
		agents[i] = newAgent(fmt.Sprintf("a%d", i), 0, 0, 0)
		agents[i].trace = trace
		tick.Register(s, agents[i])
	}
	return agents
}

func ticksOf(agents []*agent) []int {
	out := make([]int, len(agents))
	for i, a := range agents {
		out[i] = a.ticks
	}
	return out
}
