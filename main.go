package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/avatar/config"
	"github.com/pthm-cable/avatar/game"
	"github.com/pthm-cable/avatar/logging"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	frames := flag.Int("frames", 0, "Frames to simulate (0 = run until the scenario ends, plus one second)")
	logLevel := flag.String("log-level", "", "Log level override (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "Log format override (json, text)")
	logStats := flag.Bool("log-stats", false, "Log frame timing stats once per second of simulated time")
	dumpConfig := flag.String("dump-config", "", "Write the effective config to this path and exit")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}
	logger, err := logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}

	if *dumpConfig != "" {
		if err := cfg.WriteYAML(*dumpConfig); err != nil {
			logger.Error("failed to write config", "error", err)
			os.Exit(1)
		}
		logger.Info("config written", "path", *dumpConfig)
		return
	}

	fps := int(1/cfg.Physics.DT + 0.5)
	maxFrames := *frames
	if maxFrames <= 0 {
		maxFrames = lastScenarioFrame(cfg) + fps
	}

	g, err := game.NewGameWithOptions(cfg, game.Options{
		OutputDir:  *outputDir,
		LogStats:   *logStats,
		PerfWindow: fps,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to set up run", "error", err)
		os.Exit(1)
	}

	logger.Info("starting headless run",
		"frames", maxFrames,
		"avatar", cfg.Scene.AvatarName,
		"scenario_events", len(cfg.Scenario),
		"output_dir", *outputDir,
	)

	for g.Tick() < maxFrames {
		g.UpdateHeadless()
	}

	summary, err := g.Unload()
	logger.Info("run complete", "summary", summary)
	if err != nil {
		logger.Error("failed to write output", "error", err)
		os.Exit(1)
	}
}

func lastScenarioFrame(cfg *config.Config) int {
	last := 0
	for _, ev := range cfg.Scenario {
		if ev.Frame > last {
			last = ev.Frame
		}
	}
	return last
}
