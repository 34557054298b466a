package tick

import "time"

// statsWindow is the number of samples the rolling averages are computed over.
const statsWindow = 60

// Sample is one recorded pass.
type Sample struct {
	Duration  time.Duration
	Processed int
	Total     int
}

// GroupStats summarizes the recent passes of one tier, or of the classifier.
type GroupStats struct {
	AverageTimeMs    float64
	AverageProcessed float64
	AverageTotal     float64
	LastTimeMs       float64
	MaxTimeMs        float64
	// Samples is how many passes the averages include, at most 60.
	Samples int
	// Passes and Truncated count over the scheduler's lifetime.
	Passes    int64
	Truncated int64
}

// PerformanceStats is a snapshot of the scheduler's rolling statistics.
type PerformanceStats struct {
	Sort   GroupStats
	High   GroupStats
	Medium GroupStats
	Low    GroupStats
}

// Tier returns the stats of an active tier, or the zero value for Disabled.
func (p PerformanceStats) Tier(t Tier) GroupStats {
	switch t {
	case High:
		return p.High
	case Medium:
		return p.Medium
	case Low:
		return p.Low
	}
	return GroupStats{}
}

type sampleRing struct {
	samples   [statsWindow]Sample
	next      int
	count     int
	passes    int64
	truncated int64
}

func (r *sampleRing) record(s Sample, truncated bool) {
	r.samples[r.next] = s
	r.next = (r.next + 1) % statsWindow
	if r.count < statsWindow {
		r.count++
	}
	r.passes++
	if truncated {
		r.truncated++
	}
}

func (r *sampleRing) last() Sample {
	return r.samples[(r.next+statsWindow-1)%statsWindow]
}

func (r *sampleRing) summary() GroupStats {
	gs := GroupStats{
		Samples:   r.count,
		Passes:    r.passes,
		Truncated: r.truncated,
	}
	if r.count == 0 {
		return gs
	}

	var total time.Duration
	var processed, size int
	var maxDur time.Duration
	for i := 0; i < r.count; i++ {
		s := r.samples[i]
		total += s.Duration
		processed += s.Processed
		size += s.Total
		if s.Duration > maxDur {
			maxDur = s.Duration
		}
	}

	n := float64(r.count)
	gs.AverageTimeMs = durationMs(total) / n
	gs.AverageProcessed = float64(processed) / n
	gs.AverageTotal = float64(size) / n
	gs.LastTimeMs = durationMs(r.last().Duration)
	gs.MaxTimeMs = durationMs(maxDur)
	return gs
}

type performanceTracker struct {
	sort  sampleRing
	tiers [tierCount]sampleRing
}

func (p *performanceTracker) recordSort(s Sample) {
	p.sort.record(s, false)
}

func (p *performanceTracker) recordTier(t Tier, s Sample, truncated bool) {
	p.tiers[t].record(s, truncated)
}

func (p *performanceTracker) snapshot() PerformanceStats {
	return PerformanceStats{
		Sort:   p.sort.summary(),
		High:   p.tiers[High].summary(),
		Medium: p.tiers[Medium].summary(),
		Low:    p.tiers[Low].summary(),
	}
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
