package telemetry

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/physarum/neural"
)

// GenomeSeparator is the column separator of the genome record file.
const GenomeSeparator = ';'

// Weights is a flattened genome stored as one space separated column.
type Weights []float64

// MarshalCSV implements gocsv.TypeMarshaller.
func (w Weights) MarshalCSV() (string, error) {
	var b strings.Builder
	for i, v := range w {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String(), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (w *Weights) UnmarshalCSV(s string) error {
	fields := strings.Fields(s)
	out := make(Weights, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return fmt.Errorf("weight %d: %w", i, err)
		}
		out[i] = v
	}
	*w = out
	return nil
}

// GenomeRecord is one row of the genome record file: the best genome of a
// generation.
type GenomeRecord struct {
	Generation     int     `csv:"generation"`
	BestFitness    float64 `csv:"best_fitness"`
	AverageFitness float64 `csv:"average_fitness"`
	Genome         Weights `csv:"genome"`
}

// NewGenomeRecord converts generation stats to a record.
func NewGenomeRecord(s GenerationStats) GenomeRecord {
	return GenomeRecord{
		Generation:     s.Generation,
		BestFitness:    s.BestFitness,
		AverageFitness: s.AverageFitness,
		Genome:         Weights(s.BestGenome),
	}
}

func genomeWriter(w io.Writer) *gocsv.SafeCSVWriter {
	cw := csv.NewWriter(w)
	cw.Comma = GenomeSeparator
	return gocsv.NewSafeCSVWriter(cw)
}

// ReadGenomeRecords parses a genome record file.
func ReadGenomeRecords(r io.Reader) ([]GenomeRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = GenomeSeparator
	var records []GenomeRecord
	if err := gocsv.UnmarshalCSV(cr, &records); err != nil {
		return nil, fmt.Errorf("reading genome records: %w", err)
	}
	return records, nil
}

// FindRecord returns the record of the given generation, or the last record
// when generation is negative.
func FindRecord(records []GenomeRecord, generation int) (GenomeRecord, error) {
	if len(records) == 0 {
		return GenomeRecord{}, fmt.Errorf("no genome records")
	}
	if generation < 0 {
		return records[len(records)-1], nil
	}
	for _, rec := range records {
		if rec.Generation == generation {
			return rec, nil
		}
	}
	return GenomeRecord{}, fmt.Errorf("generation %d not recorded", generation)
}

// DecodeGenome builds a genome from a record. The weights are split at the
// growth parameter count and each block is loaded separately.
func DecodeGenome(arch neural.Architecture, rec GenomeRecord) (*neural.Genome, error) {
	growth, flow, err := arch.Split(rec.Genome)
	if err != nil {
		return nil, fmt.Errorf("generation %d: %w", rec.Generation, err)
	}
	g, err := neural.NewGenomeFrom(arch, make([]float64, arch.NumParams()))
	if err != nil {
		return nil, err
	}
	if err := g.LoadBlock(neural.GrowthBlock, growth); err != nil {
		return nil, fmt.Errorf("generation %d: %w", rec.Generation, err)
	}
	if err := g.LoadBlock(neural.FlowBlock, flow); err != nil {
		return nil, fmt.Errorf("generation %d: %w", rec.Generation, err)
	}
	return g, nil
}
