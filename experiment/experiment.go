// Package experiment wires configuration, evolution, persistence and
// metrics into the two run modes of the CLI: evolve and replay.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/evolution"
	"github.com/pthm-cable/physarum/neural"
	"github.com/pthm-cable/physarum/rng"
	"github.com/pthm-cable/physarum/telemetry"
	"github.com/pthm-cable/physarum/world"
)

// Options holds run settings that are not part of the simulation config.
type Options struct {
	Seed        int64
	OutputDir   string // empty disables file output
	Generations int    // 0 = use config
	ResumeFile  string // genome records whose best genomes seed the population

	// Replay settings
	GenomeFile       string // empty = genome file in OutputDir
	ReplayGeneration int    // negative = last recorded

	Metrics *telemetry.Metrics // optional
	Logger  *slog.Logger       // nil = slog.Default()
}

// Experiment is one CLI run.
type Experiment struct {
	cfg    *config.Config
	opts   Options
	out    *telemetry.OutputManager
	logger *slog.Logger
}

// New prepares the output directory.
func New(cfg *config.Config, opts Options) (*Experiment, error) {
	out, err := telemetry.NewOutputManager(opts.OutputDir, cfg.Telemetry)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Experiment{cfg: cfg, opts: opts, out: out, logger: logger}, nil
}

// Close flushes output files.
func (e *Experiment) Close() error {
	return e.out.Close()
}

// Output returns the output manager, nil when output is disabled.
func (e *Experiment) Output() *telemetry.OutputManager { return e.out }

// Evolve runs the genetic algorithm, recording every generation, and returns
// the final sorted population.
func (e *Experiment) Evolve(ctx context.Context) (*evolution.Population, error) {
	if err := e.out.WriteConfig(e.cfg); err != nil {
		return nil, err
	}

	generations := e.cfg.Evolution.Generations
	if e.opts.Generations > 0 {
		generations = e.opts.Generations
	}

	pop, err := evolution.NewPopulation(e.cfg, rng.New(e.opts.Seed))
	if err != nil {
		return nil, err
	}
	if e.opts.ResumeFile != "" {
		genomes, err := e.resumeGenomes(e.opts.ResumeFile, pop.Architecture())
		if err != nil {
			return nil, err
		}
		pop.Seed(genomes...)
		e.logger.Info("resuming", "file", e.opts.ResumeFile, "genomes", len(genomes))
	}

	e.logger.Info("starting evolution",
		"seed", e.opts.Seed,
		"generations", generations,
		"population", e.cfg.Evolution.PopulationSize,
		"tries", e.cfg.Evolution.NumTries,
		"steps", e.cfg.Evolution.NumSteps,
		"params", pop.Architecture().NumParams(),
		"output_dir", e.out.Dir(),
	)

	eta := telemetry.NewETA(generations)
	err = pop.Run(ctx, generations, func(s telemetry.GenerationStats) error {
		e.opts.Metrics.Observe(s)
		left := eta.Observe(s.Duration)
		e.logger.Info("generation", "stats", s, "eta", left.Round(time.Second).String())
		return e.out.WriteGeneration(s)
	})
	if err != nil {
		return pop, err
	}

	best := pop.Best()
	e.logger.Info("evolution finished", "best_fitness", best.Fitness, "trials", best.Trials)
	return pop, nil
}

// Replay rebuilds the recorded genome of one generation, runs a single trial
// of NumSteps and writes every frame to the trajectory file, starting with
// the initial state. It returns the final fitness.
func (e *Experiment) Replay(ctx context.Context) (float64, error) {
	path := e.opts.GenomeFile
	if path == "" {
		path = e.out.GenomePath()
	}
	if path == "" {
		return 0, fmt.Errorf("replay needs a genome file or an output directory")
	}
	if e.out == nil {
		return 0, fmt.Errorf("replay needs an output directory for the trajectory")
	}

	g, rec, err := e.loadGenome(path)
	if err != nil {
		return 0, err
	}

	w := world.New(e.cfg, g, rng.New(e.opts.Seed))
	if err := e.out.WriteFrame(w.Snapshot()); err != nil {
		return 0, err
	}
	for i := 0; i < e.cfg.Evolution.NumSteps; i++ {
		if err := ctx.Err(); err != nil {
			return w.Fitness(), err
		}
		w.Step()
		if err := e.out.WriteFrame(w.Snapshot()); err != nil {
			return w.Fitness(), err
		}
	}

	e.logger.Info("replay finished",
		"generation", rec.Generation,
		"recorded_fitness", rec.BestFitness,
		"fitness", w.Fitness(),
		"nodes", w.NodeCount(),
		"edges", w.EdgeCount(),
		"foods", w.FoodCount(),
	)
	return w.Fitness(), nil
}

// resumeGenomes decodes the best genomes of the most recent records, newest
// first, one per elite slot.
func (e *Experiment) resumeGenomes(path string, arch neural.Architecture) ([]*neural.Genome, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: no genome records", path)
	}
	n := min(e.cfg.Derived.NumElite, len(records))
	genomes := make([]*neural.Genome, 0, n)
	for i := len(records) - 1; i >= len(records)-n; i-- {
		g, err := telemetry.DecodeGenome(arch, records[i])
		if err != nil {
			return nil, err
		}
		genomes = append(genomes, g)
	}
	return genomes, nil
}

func readRecords(path string) ([]telemetry.GenomeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening genome file: %w", err)
	}
	defer f.Close()
	return telemetry.ReadGenomeRecords(f)
}

func (e *Experiment) loadGenome(path string) (*neural.Genome, telemetry.GenomeRecord, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, telemetry.GenomeRecord{}, err
	}
	rec, err := telemetry.FindRecord(records, e.opts.ReplayGeneration)
	if err != nil {
		return nil, telemetry.GenomeRecord{}, err
	}
	arch, err := neural.NewArchitecture(e.cfg.Neural)
	if err != nil {
		return nil, telemetry.GenomeRecord{}, err
	}
	g, err := telemetry.DecodeGenome(arch, rec)
	if err != nil {
		return nil, telemetry.GenomeRecord{}, err
	}
	return g, rec, nil
}
