package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/experiment"
	"github.com/pthm-cable/physarum/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "output", "Output directory for genome records, trajectories and config snapshot (empty = no files)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	generations := flag.Int("generations", 0, "Generations to evolve (0 = use config)")
	replay := flag.Bool("replay", false, "Replay a recorded genome instead of evolving")
	replayGen := flag.Int("replay-gen", -1, "Generation to replay (-1 = last recorded)")
	genomeFile := flag.String("genome", "", "Genome record file to replay (empty = the one in -output-dir)")
	resume := flag.String("resume", "", "Seed the population from the best genomes of this record file")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (empty = disabled)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metrics *telemetry.Metrics
	if *metricsAddr != "" && !*replay {
		metrics = telemetry.NewMetrics()
		go serveMetrics(*metricsAddr, metrics)
	}

	exp, err := experiment.New(cfg, experiment.Options{
		Seed:             rngSeed,
		OutputDir:        *outputDir,
		Generations:      *generations,
		ResumeFile:       *resume,
		GenomeFile:       *genomeFile,
		ReplayGeneration: *replayGen,
		Metrics:          metrics,
		Logger:           logger,
	})
	if err != nil {
		slog.Error("failed to set up run", "error", err)
		os.Exit(1)
	}

	if *replay {
		_, err = exp.Replay(ctx)
	} else {
		_, err = exp.Evolve(ctx)
	}
	if cerr := exp.Close(); cerr != nil && err == nil {
		err = cerr
	}

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		slog.Info("interrupted")
	default:
		slog.Error("run failed", "replay", *replay, "error", err)
		os.Exit(1)
	}
}

func serveMetrics(addr string, m *telemetry.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	slog.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics server stopped", "error", err)
	}
}
