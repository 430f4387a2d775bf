package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/world"
)

// OutputManager handles the experiment output directory: the run config,
// the genome record file and the trajectory file.
type OutputManager struct {
	dir            string
	genomeName     string
	trajectoryName string

	genomeFile     *os.File
	trajectoryFile *os.File

	// Track if headers have been written
	genomeHeaderWritten     bool
	trajectoryHeaderWritten bool
}

// NewOutputManager creates the output directory. Files are created on first
// write, so an evolve run never leaves an empty trajectory file behind.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string, cfg config.TelemetryConfig) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &OutputManager{
		dir:            dir,
		genomeName:     cfg.GenomeFile,
		trajectoryName: cfg.TrajectoryFile,
	}, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteGeneration appends the best genome of a generation to the genome
// record file.
func (om *OutputManager) WriteGeneration(stats GenerationStats) error {
	if om == nil {
		return nil
	}
	if om.genomeFile == nil {
		f, err := om.create(om.genomeName)
		if err != nil {
			return err
		}
		om.genomeFile = f
	}

	records := []GenomeRecord{NewGenomeRecord(stats)}
	w := genomeWriter(om.genomeFile)

	if !om.genomeHeaderWritten {
		// First write includes headers
		if err := gocsv.MarshalCSV(records, w); err != nil {
			return fmt.Errorf("writing genome record: %w", err)
		}
		om.genomeHeaderWritten = true
	} else {
		if err := gocsv.MarshalCSVWithoutHeaders(records, w); err != nil {
			return fmt.Errorf("writing genome record: %w", err)
		}
	}
	return nil
}

// WriteFrame appends one snapshot to the trajectory file.
func (om *OutputManager) WriteFrame(s world.Snapshot) error {
	if om == nil {
		return nil
	}
	if om.trajectoryFile == nil {
		f, err := om.create(om.trajectoryName)
		if err != nil {
			return err
		}
		om.trajectoryFile = f
	}

	rows := Rows(s)

	if !om.trajectoryHeaderWritten {
		if err := gocsv.Marshal(rows, om.trajectoryFile); err != nil {
			return fmt.Errorf("writing trajectory: %w", err)
		}
		om.trajectoryHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(rows, om.trajectoryFile); err != nil {
			return fmt.Errorf("writing trajectory: %w", err)
		}
	}
	return nil
}

func (om *OutputManager) create(name string) (*os.File, error) {
	f, err := os.Create(om.Path(name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return f, nil
}

// Path returns the location of a file inside the output directory.
func (om *OutputManager) Path(name string) string {
	if om == nil {
		return name
	}
	return filepath.Join(om.dir, name)
}

// GenomePath returns the location of the genome record file.
func (om *OutputManager) GenomePath() string {
	if om == nil {
		return ""
	}
	return om.Path(om.genomeName)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error

	if om.genomeFile != nil {
		if err := om.genomeFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.trajectoryFile != nil {
		if err := om.trajectoryFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
