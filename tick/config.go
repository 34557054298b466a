package tick

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is the scheduler configuration consumed by New.
type Config struct {
	HighPriorityDistance   float64       `toml:"high_priority_distance" yaml:"high_priority_distance"`
	MediumPriorityDistance float64       `toml:"medium_priority_distance" yaml:"medium_priority_distance"`
	SortInterval           time.Duration `toml:"sort_interval" yaml:"sort_interval"`
	UseCullingDistance     bool          `toml:"use_culling_distance" yaml:"use_culling_distance"`
	CullingDistance        float64       `toml:"culling_distance" yaml:"culling_distance"`

	// BudgetCheckInterval is how many processed entities pass between time budget checks.
	BudgetCheckInterval int `toml:"budget_check_interval" yaml:"budget_check_interval"`

	// Diagnostics enables per pass debug logging.
	Diagnostics bool `toml:"diagnostics" yaml:"diagnostics"`

	High   TierSettings `toml:"high" yaml:"high"`
	Medium TierSettings `toml:"medium" yaml:"medium"`
	Low    TierSettings `toml:"low" yaml:"low"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		HighPriorityDistance:   10,
		MediumPriorityDistance: 30,
		SortInterval:           time.Second,
		UseCullingDistance:     false,
		CullingDistance:        60,
		BudgetCheckInterval:    10,
		High:                   DefaultTierSettings(High),
		Medium:                 DefaultTierSettings(Medium),
		Low:                    DefaultTierSettings(Low),
	}
}

// LoadConfig reads a toml file, or a yaml file when the extension is .yaml or .yml,
// over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = toml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Settings returns the tier settings for t. Disabled has none and yields the zero value.
func (c *Config) Settings(t Tier) TierSettings {
	switch t {
	case High:
		return c.High
	case Medium:
		return c.Medium
	case Low:
		return c.Low
	}
	return TierSettings{}
}

func (c *Config) setSettings(t Tier, ts TierSettings) {
	switch t {
	case High:
		c.High = ts
	case Medium:
		c.Medium = ts
	case Low:
		c.Low = ts
	}
}

// normalize replaces invalid values with their defaults, logging each correction.
func (c *Config) normalize(log *zap.Logger) {
	def := DefaultConfig()

	for _, t := range ActiveTiers {
		ts := c.Settings(t)
		if ts.Valid() {
			continue
		}
		log.Warn("invalid tier settings, using defaults",
			zap.Stringer("tier", t),
			zap.Int("frame_interval", ts.FrameInterval),
			zap.Float64("time_budget_ms", ts.TimeBudgetMs))
		c.setSettings(t, DefaultTierSettings(t))
	}

	if c.HighPriorityDistance < 0 {
		log.Warn("negative high priority distance, using default", zap.Float64("value", c.HighPriorityDistance))
		c.HighPriorityDistance = def.HighPriorityDistance
	}
	if c.MediumPriorityDistance < 0 {
		log.Warn("negative medium priority distance, using default", zap.Float64("value", c.MediumPriorityDistance))
		c.MediumPriorityDistance = def.MediumPriorityDistance
	}
	if c.MediumPriorityDistance < c.HighPriorityDistance {
		log.Warn("medium priority distance below high priority distance, medium tier is unreachable",
			zap.Float64("high", c.HighPriorityDistance),
			zap.Float64("medium", c.MediumPriorityDistance))
	}
	if c.CullingDistance < 0 {
		log.Warn("negative culling distance, using default", zap.Float64("value", c.CullingDistance))
		c.CullingDistance = def.CullingDistance
	}
	if c.SortInterval < 0 {
		log.Warn("negative sort interval, using default", zap.Duration("value", c.SortInterval))
		c.SortInterval = def.SortInterval
	}
	if c.BudgetCheckInterval <= 0 {
		log.Warn("non-positive budget check interval, using default", zap.Int("value", c.BudgetCheckInterval))
		c.BudgetCheckInterval = def.BudgetCheckInterval
	}
}
