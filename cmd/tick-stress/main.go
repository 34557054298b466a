package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/plus3/tiered/tick"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The number of agents to spawn when no scenario is given.")
	configPath := flag.String("config", "", "Scheduler config file (toml, or yaml by extension).")
	scenarioPath := flag.String("scenario", "", "Yaml scenario file describing spawn groups.")
	seed := flag.Uint64("seed", 1, "Seed for agent placement.")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error).")
	logFormat := flag.String("log-format", "console", "Log format (console or json).")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	log, err := newLogger(*logLevel, *logFormat)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	cfg := tick.DefaultConfig()
	if *configPath != "" {
		if cfg, err = tick.LoadConfig(*configPath); err != nil {
			return err
		}
	}

	scenario := DefaultScenario(*entityCount)
	if *scenarioPath != "" {
		if scenario, err = LoadScenario(*scenarioPath); err != nil {
			return err
		}
	}

	log.Info("starting tick stress test",
		zap.Duration("duration", *duration),
		zap.Int("entities", scenario.Total()),
		zap.Int("groups", len(scenario.Spawns)))

	// 1. Setup reference point and scheduler
	player := &Player{path: scenario.Player}
	player.Advance(0)
	scheduler := tick.New(cfg, tick.WithLogger(log.Named("tick")), tick.WithReference(player))

	// 2. Populate the scheduler
	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	agents := SpawnAgents(scheduler, scenario, rng)
	high, medium, low := scheduler.GetGroupCounts()
	log.Info("population complete",
		zap.Int("high", high),
		zap.Int("medium", medium),
		zap.Int("low", low),
		zap.Int("total", scheduler.GetTotalCount()))

	// 3. Run the simulation loop
	report := &Report{
		Duration:       *duration,
		Entities:       scenario.Total(),
		Groups:         len(scenario.Spawns),
		ConfigPath:     *configPath,
		GCPauseMetrics: *gcPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()
			player.Advance(deltaTime.Seconds())

			updateStart := time.Now()
			events := scheduler.Update()
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))

			for _, ev := range events {
				report.Events.Add(ev)
			}
			report.TotalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	report.CollectTiers(scheduler)
	for _, a := range agents {
		report.TotalTicks += int64(a.Ticks)
	}
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Info("simulation finished",
		zap.Int64("updates", report.TotalUpdates),
		zap.Duration("avg_update", report.UpdateTime.Avg))

	// 4. Generate Report to Console
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	fmt.Println("--- End of Report ---")
	return nil
}

func newLogger(levelName, format string) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
