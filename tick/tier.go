package tick

import "time"

// Tier is the priority class an entity is scheduled under.
type Tier uint8

const (
	High Tier = iota
	Medium
	Low
	// Disabled entities are known to the scheduler but never ticked.
	Disabled
)

// tierCount is the number of tiers that own a member list.
const tierCount = 3

// ActiveTiers lists the dispatched tiers in dispatch order.
var ActiveTiers = [tierCount]Tier{High, Medium, Low}

func (t Tier) String() string {
	switch t {
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	case Disabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// TierSettings controls how often and how much of a tier is ticked.
type TierSettings struct {
	// FrameInterval ticks the tier once every N scheduler frames.
	FrameInterval int `toml:"frame_interval" yaml:"frame_interval"`
	// TimeBudgetMs is the wall clock ceiling for one dispatch pass.
	TimeBudgetMs float64 `toml:"time_budget_ms" yaml:"time_budget_ms"`
	// MaxObjectsPerFrame caps the entities ticked in one pass, -1 for no cap.
	MaxObjectsPerFrame int `toml:"max_objects_per_frame" yaml:"max_objects_per_frame"`
}

// Valid reports whether both the frame interval and the time budget are positive.
func (ts TierSettings) Valid() bool {
	return ts.FrameInterval > 0 && ts.TimeBudgetMs > 0
}

func (ts TierSettings) budget() time.Duration {
	return time.Duration(ts.TimeBudgetMs * float64(time.Millisecond))
}

// DefaultTierSettings returns the settings used for a tier when none, or invalid ones, are given.
func DefaultTierSettings(t Tier) TierSettings {
	switch t {
	case High:
		return TierSettings{FrameInterval: 1, TimeBudgetMs: 8, MaxObjectsPerFrame: 100}
	case Medium:
		return TierSettings{FrameInterval: 3, TimeBudgetMs: 5, MaxObjectsPerFrame: 50}
	default:
		return TierSettings{FrameInterval: 5, TimeBudgetMs: 3, MaxObjectsPerFrame: 25}
	}
}
