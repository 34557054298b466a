package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tiered/tick"
)

// TierRow is one line of the tier table.
type TierRow struct {
	Tier      tick.Tier
	Members   int
	AvgMs     float64
	MaxMs     float64
	AvgTicked float64
	Passes    int64
	Truncated int64
}

// TierRows builds the tier table of a scheduler in dispatch order.
func TierRows(s *tick.Scheduler) []TierRow {
	stats := s.GetPerformanceStats()
	high, medium, low := s.GetGroupCounts()
	members := [...]int{high, medium, low}

	rows := make([]TierRow, 0, len(tick.ActiveTiers))
	for i, t := range tick.ActiveTiers {
		gs := stats.Tier(t)
		rows = append(rows, TierRow{
			Tier:      t,
			Members:   members[i],
			AvgMs:     gs.AverageTimeMs,
			MaxMs:     gs.MaxTimeMs,
			AvgTicked: gs.AverageProcessed,
			Passes:    gs.Passes,
			Truncated: gs.Truncated,
		})
	}
	return rows
}

// PerformanceStats is a Dear ImGui window showing a scheduler's tiers and frame times.
type PerformanceStats struct {
	scheduler     *tick.Scheduler
	historyFrames int
	frameHistory  []float32
	frameIndex    int

	now       func() time.Time
	lastFrame time.Time
}

// NewPerformanceStats creates the window for s keeping historyFrames frame time samples.
func NewPerformanceStats(s *tick.Scheduler, historyFrames int) *PerformanceStats {
	if historyFrames < 1 {
		historyFrames = 1
	}
	return &PerformanceStats{
		scheduler:     s,
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
		now:           time.Now,
		lastFrame:     time.Now(),
	}
}

// Push records one frame time given in seconds.
func (ps *PerformanceStats) Push(deltaTime float32) {
	ps.frameHistory[ps.frameIndex] = deltaTime * 1000.0
	ps.frameIndex = (ps.frameIndex + 1) % ps.historyFrames
}

// AverageFrameMs returns the mean of the frame time history in milliseconds.
func (ps *PerformanceStats) AverageFrameMs() float32 {
	var sum float32
	for _, ft := range ps.frameHistory {
		sum += ft
	}
	return sum / float32(ps.historyFrames)
}

// RenderFrame draws the window, timing the frame from the previous RenderFrame call.
// It fits Layer.Add directly.
func (ps *PerformanceStats) RenderFrame() {
	ps.Render(ps.frameDelta())
}

// frameDelta returns the seconds since the previous call, or since construction.
func (ps *PerformanceStats) frameDelta() float32 {
	now := ps.now()
	delta := float32(now.Sub(ps.lastFrame).Seconds())
	ps.lastFrame = now
	return delta
}

// Render records deltaTime and draws the window.
func (ps *PerformanceStats) Render(deltaTime float32) {
	if !imgui.BeginV("Tick Performance", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ps.Push(deltaTime)

	high, medium, low := ps.scheduler.GetGroupCounts()
	stats := ps.scheduler.GetPerformanceStats()

	imgui.Text(fmt.Sprintf("Total Objects: %d", ps.scheduler.GetTotalCount()))
	imgui.Text(fmt.Sprintf("High: %d | Med: %d | Low: %d", high, medium, low))
	imgui.Text(fmt.Sprintf("Avg Sort Time: %.2f ms", stats.Sort.AverageTimeMs))

	avgFrameTime := ps.AverageFrameMs()
	fps := float32(0)
	if avgFrameTime > 0 {
		fps = 1000.0 / avgFrameTime
	}
	imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgFrameTime, fps))

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	if imgui.TreeNodeStr("Tier Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("TierStatsTable", 6, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Tier")
			imgui.TableSetupColumn("Members")
			imgui.TableSetupColumn("Avg ms")
			imgui.TableSetupColumn("Max ms")
			imgui.TableSetupColumn("Avg Ticked")
			imgui.TableSetupColumn("Truncated")
			imgui.TableHeadersRow()

			for _, row := range TierRows(ps.scheduler) {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(row.Tier.String())
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", row.Members))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%.2f", row.AvgMs))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%.2f", row.MaxMs))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%.1f", row.AvgTicked))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d/%d", row.Truncated, row.Passes))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}
