package main

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/tiered/tick"
)

// Agent drifts inside its spawn box and burns a fixed amount of CPU per tick.
type Agent struct {
	pos    mgl64.Vec3
	vel    mgl64.Vec3
	min    mgl64.Vec3
	max    mgl64.Vec3
	work   int
	active bool

	acc   float64
	Ticks int
}

func (a *Agent) IsActive() bool       { return a.active }
func (a *Agent) Position() mgl64.Vec3 { return a.pos }

func (a *Agent) Tick(dt float64) {
	a.Ticks++
	a.pos = a.pos.Add(a.vel.Mul(dt))
	for i := 0; i < 3; i++ {
		if a.pos[i] < a.min[i] || a.pos[i] > a.max[i] {
			a.vel[i] = -a.vel[i]
			a.pos[i] = max(a.min[i], min(a.pos[i], a.max[i]))
		}
	}
	for i := 0; i < a.work; i++ {
		a.acc += math.Sin(float64(i) * dt)
	}
}

// Player is the reference point, moving on a circle.
type Player struct {
	path  PlayerPath
	angle float64
	pos   mgl64.Vec3
}

func (p *Player) Position() mgl64.Vec3 { return p.pos }

func (p *Player) Advance(dt float64) {
	p.angle += p.path.Speed * dt
	p.pos = mgl64.Vec3{p.path.Radius * math.Cos(p.angle), p.path.Radius * math.Sin(p.angle), 0}
}

// SpawnAgents creates and registers the scenario's agents. The returned slice keeps them alive.
func SpawnAgents(s *tick.Scheduler, sc Scenario, rng *rand.Rand) []*Agent {
	agents := make([]*Agent, 0, sc.Total())
	for _, g := range sc.Spawns {
		center := mgl64.Vec3{g.Center[0], g.Center[1], g.Center[2]}
		extent := mgl64.Vec3{g.Spread, g.Spread, g.Spread}
		for i := 0; i < g.Count; i++ {
			a := &Agent{
				pos:    center.Add(randomIn(rng, g.Spread)),
				vel:    randomDirection(rng).Mul(g.Speed),
				min:    center.Sub(extent),
				max:    center.Add(extent),
				work:   g.Work,
				active: rng.Float64() >= g.InactiveRatio,
			}
			agents = append(agents, a)
			tick.Register(s, a)
		}
	}
	return agents
}

func randomIn(rng *rand.Rand, spread float64) mgl64.Vec3 {
	return mgl64.Vec3{
		(rng.Float64()*2 - 1) * spread,
		(rng.Float64()*2 - 1) * spread,
		(rng.Float64()*2 - 1) * spread,
	}
}

func randomDirection(rng *rand.Rand) mgl64.Vec3 {
	v := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
	if l := v.Len(); l > 0 {
		return v.Mul(1 / l)
	}
	return mgl64.Vec3{1, 0, 0}
}
