package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario describes the population a stress run spawns and how the player moves.
type Scenario struct {
	Player PlayerPath   `yaml:"player"`
	Spawns []SpawnGroup `yaml:"spawns"`
}

// PlayerPath moves the reference point on a circle around the origin.
type PlayerPath struct {
	Radius float64 `yaml:"radius"`
	Speed  float64 `yaml:"speed"` // radians per second
}

// SpawnGroup spawns Count agents uniformly inside a cube of half size Spread around Center.
type SpawnGroup struct {
	Name          string     `yaml:"name"`
	Count         int        `yaml:"count"`
	Center        [3]float64 `yaml:"center"`
	Spread        float64    `yaml:"spread"`
	Speed         float64    `yaml:"speed"`
	Work          int        `yaml:"work"` // busy iterations per tick
	InactiveRatio float64    `yaml:"inactive_ratio"`
}

type scenarioFile struct {
	Scenario Scenario `yaml:"scenario"`
}

// DefaultScenario spawns entities agents in one group around the origin.
func DefaultScenario(entities int) Scenario {
	return Scenario{
		Player: PlayerPath{Radius: 20, Speed: 0.5},
		Spawns: []SpawnGroup{{
			Name:   "swarm",
			Count:  entities,
			Spread: 80,
			Speed:  3,
			Work:   200,
		}},
	}
}

// LoadScenario reads a yaml scenario file.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := f.Scenario.validate(); err != nil {
		return Scenario{}, fmt.Errorf("scenario %s: %w", path, err)
	}
	return f.Scenario, nil
}

// Total returns the number of agents the scenario spawns.
func (s Scenario) Total() int {
	total := 0
	for _, g := range s.Spawns {
		total += g.Count
	}
	return total
}

func (s Scenario) validate() error {
	if len(s.Spawns) == 0 {
		return fmt.Errorf("no spawn groups")
	}
	for i, g := range s.Spawns {
		if g.Count < 0 {
			return fmt.Errorf("spawn group %d (%s): negative count %d", i, g.Name, g.Count)
		}
		if g.Spread < 0 {
			return fmt.Errorf("spawn group %d (%s): negative spread %v", i, g.Name, g.Spread)
		}
		if g.InactiveRatio < 0 || g.InactiveRatio > 1 {
			return fmt.Errorf("spawn group %d (%s): inactive_ratio %v outside [0, 1]", i, g.Name, g.InactiveRatio)
		}
	}
	return nil
}
