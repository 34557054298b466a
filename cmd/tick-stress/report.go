package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/tiered/tick"
)

type Report struct {
	// Configuration
	Duration   time.Duration
	Entities   int
	Groups     int
	ConfigPath string
	Config     tick.Config

	// Results
	TotalUpdates   int64
	TotalTime      time.Duration
	UpdateTime     Stats
	Tiers          []TierReport
	Sort           tick.GroupStats
	Events         EventCounts
	TotalTicks     int64
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type TierReport struct {
	Tier     tick.Tier
	Members  int
	Settings tick.TierSettings
	Stats    tick.GroupStats
}

type EventCounts struct {
	TierChanged    int64
	BudgetExceeded int64
	StalePurged    int64
	TickPanicked   int64
}

func (c *EventCounts) Add(ev tick.Event) {
	switch ev.(type) {
	case tick.TierChanged:
		c.TierChanged++
	case tick.BudgetExceeded:
		c.BudgetExceeded++
	case tick.StalePurged:
		c.StalePurged++
	case tick.TickPanicked:
		c.TickPanicked++
	}
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

// CollectTiers fills the tier section from the scheduler's current state.
func (r *Report) CollectTiers(s *tick.Scheduler) {
	high, medium, low := s.GetGroupCounts()
	members := [...]int{high, medium, low}
	stats := s.GetPerformanceStats()
	cfg := s.Config()

	r.Config = cfg
	r.Sort = stats.Sort
	r.Tiers = r.Tiers[:0]
	for i, t := range tick.ActiveTiers {
		r.Tiers = append(r.Tiers, TierReport{
			Tier:     t,
			Members:  members[i],
			Settings: cfg.Settings(t),
			Stats:    stats.Tier(t),
		})
	}
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Tick Scheduler Stress Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Entities:** {{.Entities}} in {{.Groups}} spawn group(s)
- **Config:** {{if .ConfigPath}}{{.ConfigPath}}{{else}}defaults{{end}}
- **Distances:** high < {{.Config.HighPriorityDistance}}, medium < {{.Config.MediumPriorityDistance}}{{if .Config.UseCullingDistance}}, culled > {{.Config.CullingDistance}}{{end}}
- **Sort Interval:** {{.Config.SortInterval}}

## Performance Results
- **Total Updates:** {{.TotalUpdates}}
- **Total Ticks:** {{.TotalTicks}}
- **Total Test Time:** {{.TotalTime}}
- **Update Time (Frame):**
  - **Avg:** {{.UpdateTime.Avg}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}

## Tiers (last {{.Sort.Samples}} sort passes avg {{ms .Sort.AverageTimeMs}})
| Tier | Members | Interval | Budget | Cap | Avg | Max | Avg Ticked | Truncated |
|---|---|---|---|---|---|---|---|---|
{{- range .Tiers}}
| {{.Tier}} | {{.Members}} | {{.Settings.FrameInterval}} | {{ms .Settings.TimeBudgetMs}} | {{.Settings.MaxObjectsPerFrame}} | {{ms .Stats.AverageTimeMs}} | {{ms .Stats.MaxTimeMs}} | {{printf "%.1f" .Stats.AverageProcessed}} | {{.Stats.Truncated}}/{{.Stats.Passes}} |
{{- end}}

## Events
- Tier changes: {{.Events.TierChanged}}
- Budget exceeded: {{.Events.BudgetExceeded}}
- Stale purged: {{.Events.StalePurged}}
- Tick panics: {{.Events.TickPanicked}}

## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"ms": func(v float64) string {
			return fmt.Sprintf("%.2fms", v)
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
