package telemetry

import (
	"os"
	"strings"
	"testing"

	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/neural"
	"github.com/pthm-cable/physarum/rng"
)

func TestWeightsFormat(t *testing.T) {
	got, err := Weights{1, -0.5, 2e-7}.MarshalCSV()
	if err != nil {
		t.Fatal(err)
	}
	if want := "1 -0.5 2e-07"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	var w Weights
	if err := w.UnmarshalCSV("1  -0.5 2e-07 "); err != nil {
		t.Fatal(err)
	}
	if len(w) != 3 || w[1] != -0.5 || w[2] != 2e-7 {
		t.Errorf("got %v", w)
	}
	if err := w.UnmarshalCSV("1 two"); err == nil {
		t.Error("expected error for non-numeric weight")
	}
}

func TestGenomeFileFormat(t *testing.T) {
	cfg := config.Default()
	om, err := NewOutputManager(t.TempDir(), cfg.Telemetry)
	if err != nil {
		t.Fatal(err)
	}
	stats := []GenerationStats{
		{Generation: 0, BestFitness: 1.5, AverageFitness: 0.5, BestGenome: []float64{1, 2, 3}},
		{Generation: 1, BestFitness: 2, AverageFitness: 1.25, BestGenome: []float64{-1, 0.5, 3}},
	}
	for _, s := range stats {
		if err := om.WriteGeneration(s); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(om.GenomePath())
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{
		"generation;best_fitness;average_fitness;genome",
		"0;1.5;0.5;1 2 3",
		"1;2;1.25;-1 0.5 3",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), data)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}

	records, err := ReadGenomeRecords(strings.NewReader(string(data)))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[1].AverageFitness != 1.25 || records[1].Genome[0] != -1 {
		t.Errorf("got %+v", records)
	}
}

func TestConfigSnapshot(t *testing.T) {
	cfg := config.Default()
	cfg.Evolution.PopulationSize = 7
	dir := t.TempDir()
	om, err := NewOutputManager(dir, cfg.Telemetry)
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := config.Load(om.Path("config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Evolution.PopulationSize != 7 {
		t.Errorf("population size = %d, want 7", loaded.Evolution.PopulationSize)
	}
	if _, err := os.Stat(om.Path(cfg.Telemetry.TrajectoryFile)); !os.IsNotExist(err) {
		t.Error("trajectory file should not exist before the first frame")
	}
}

func TestNilOutputManager(t *testing.T) {
	var om *OutputManager
	if err := om.WriteGeneration(GenerationStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" || om.GenomePath() != "" {
		t.Error("nil manager should report no paths")
	}
}

func TestDecodeGenome(t *testing.T) {
	cfg := config.Default()
	arch := neural.MustArchitecture(cfg.Neural)
	g := neural.NewGenome(arch, rng.New(3))

	rec := GenomeRecord{Generation: 2, Genome: g.Flatten()}
	decoded, err := DecodeGenome(arch, rec)
	if err != nil {
		t.Fatal(err)
	}
	want := g.Flatten()
	got := decoded.Flatten()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("param %d: got %v, want %v", i, got[i], want[i])
		}
	}

	rec.Genome = rec.Genome[:len(rec.Genome)-1]
	if _, err := DecodeGenome(arch, rec); err == nil {
		t.Error("expected error for truncated genome")
	}
}

func TestFindRecord(t *testing.T) {
	records := []GenomeRecord{{Generation: 0}, {Generation: 1}, {Generation: 2}}
	if rec, err := FindRecord(records, -1); err != nil || rec.Generation != 2 {
		t.Errorf("latest: got %v, %v", rec.Generation, err)
	}
	if rec, err := FindRecord(records, 1); err != nil || rec.Generation != 1 {
		t.Errorf("gen 1: got %v, %v", rec.Generation, err)
	}
	if _, err := FindRecord(records, 5); err == nil {
		t.Error("expected error for missing generation")
	}
	if _, err := FindRecord(nil, -1); err == nil {
		t.Error("expected error for empty records")
	}
}

func TestReadGenomeRecordsMalformed(t *testing.T) {
	in := "generation;best_fitness;average_fitness;genome\n0;abc;1;1 2\n"
	if _, err := ReadGenomeRecords(strings.NewReader(in)); err == nil {
		t.Error("expected error for malformed fitness")
	}
}
