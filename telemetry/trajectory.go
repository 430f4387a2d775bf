package telemetry

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/physarum/world"
)

// Float is a trajectory cell that may be empty.
type Float struct {
	V     float64
	Valid bool
}

// F returns a populated Float.
func F(v float64) Float { return Float{V: v, Valid: true} }

// MarshalCSV implements gocsv.TypeMarshaller.
func (f Float) MarshalCSV() (string, error) {
	if !f.Valid {
		return "", nil
	}
	return strconv.FormatFloat(f.V, 'g', -1, 64), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (f *Float) UnmarshalCSV(s string) error {
	if s == "" {
		*f = Float{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = F(v)
	return nil
}

// Int is an integer trajectory cell that may be empty.
type Int struct {
	V     int
	Valid bool
}

// I returns a populated Int.
func I(v int) Int { return Int{V: v, Valid: true} }

// MarshalCSV implements gocsv.TypeMarshaller.
func (i Int) MarshalCSV() (string, error) {
	if !i.Valid {
		return "", nil
	}
	return strconv.Itoa(i.V), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (i *Int) UnmarshalCSV(s string) error {
	if s == "" {
		*i = Int{}
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*i = I(v)
	return nil
}

// TrajectoryRow is one entity of one frame. Exactly one of the node, edge
// and food column groups is populated; a frame without entities is written
// as a single row with only step and fitness.
type TrajectoryRow struct {
	Step    int     `csv:"step"`
	Fitness float64 `csv:"fitness"`

	NodeX            Float `csv:"n_x"`
	NodeY            Float `csv:"n_y"`
	NodeEnergy       Float `csv:"n_energy"`
	NodeTouchingFood Int   `csv:"n_touching_food"`
	NodeSignal       Int   `csv:"n_signal"`
	NodeHist0        Int   `csv:"n_signal_hist_0"`
	NodeHist1        Int   `csv:"n_signal_hist_1"`
	NodeHist2        Int   `csv:"n_signal_hist_2"`
	NodeHist3        Int   `csv:"n_signal_hist_3"`

	EdgeX1       Float `csv:"e_x1"`
	EdgeY1       Float `csv:"e_y1"`
	EdgeX2       Float `csv:"e_x2"`
	EdgeY2       Float `csv:"e_y2"`
	EdgeFlowRate Float `csv:"e_flow_rate"`

	FoodX      Float `csv:"f_x"`
	FoodY      Float `csv:"f_y"`
	FoodRadius Float `csv:"f_radius"`
	FoodEnergy Float `csv:"f_energy"`
}

// history returns the signal history cells, oldest first.
func (r *TrajectoryRow) history() []*Int {
	return []*Int{&r.NodeHist0, &r.NodeHist1, &r.NodeHist2, &r.NodeHist3}
}

func (r *TrajectoryRow) isNode() bool { return r.NodeX.Valid }
func (r *TrajectoryRow) isEdge() bool { return r.EdgeX1.Valid }
func (r *TrajectoryRow) isFood() bool { return r.FoodX.Valid }

// Rows flattens a snapshot into trajectory rows: nodes, then edges, then
// food sources.
func Rows(s world.Snapshot) []TrajectoryRow {
	rows := make([]TrajectoryRow, 0, len(s.Nodes)+len(s.Edges)+len(s.Foods))
	base := TrajectoryRow{Step: s.Step, Fitness: s.Fitness}

	for _, n := range s.Nodes {
		row := base
		row.NodeX, row.NodeY = F(n.X), F(n.Y)
		row.NodeEnergy = F(n.Energy)
		row.NodeTouchingFood = I(0)
		if n.TouchingFood {
			row.NodeTouchingFood = I(1)
		}
		row.NodeSignal = I(n.Signal)
		for i, cell := range row.history() {
			if i < len(n.History) {
				*cell = I(n.History[i])
			}
		}
		rows = append(rows, row)
	}
	for _, e := range s.Edges {
		row := base
		row.EdgeX1, row.EdgeY1 = F(e.X1), F(e.Y1)
		row.EdgeX2, row.EdgeY2 = F(e.X2), F(e.Y2)
		row.EdgeFlowRate = F(e.FlowRate)
		rows = append(rows, row)
	}
	for _, f := range s.Foods {
		row := base
		row.FoodX, row.FoodY = F(f.X), F(f.Y)
		row.FoodRadius = F(f.Radius)
		row.FoodEnergy = F(f.Energy)
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		rows = append(rows, base)
	}
	return rows
}

// Frames groups rows by step, in order of first appearance.
func Frames(rows []TrajectoryRow) ([]world.Snapshot, error) {
	var frames []world.Snapshot
	index := make(map[int]int)
	for i := range rows {
		row := &rows[i]
		k, ok := index[row.Step]
		if !ok {
			k = len(frames)
			index[row.Step] = k
			frames = append(frames, world.Snapshot{Step: row.Step, Fitness: row.Fitness})
		}
		frame := &frames[k]

		switch {
		case row.isNode():
			n := world.NodeState{
				X:            row.NodeX.V,
				Y:            row.NodeY.V,
				Energy:       row.NodeEnergy.V,
				TouchingFood: row.NodeTouchingFood.V != 0,
				Signal:       row.NodeSignal.V,
			}
			for _, cell := range row.history() {
				if cell.Valid {
					n.History = append(n.History, cell.V)
				}
			}
			frame.Nodes = append(frame.Nodes, n)
		case row.isEdge():
			frame.Edges = append(frame.Edges, world.EdgeState{
				X1: row.EdgeX1.V, Y1: row.EdgeY1.V,
				X2: row.EdgeX2.V, Y2: row.EdgeY2.V,
				FlowRate: row.EdgeFlowRate.V,
			})
		case row.isFood():
			frame.Foods = append(frame.Foods, world.FoodState{
				X: row.FoodX.V, Y: row.FoodY.V,
				Radius: row.FoodRadius.V,
				Energy: row.FoodEnergy.V,
			})
		default:
			if ok {
				return nil, fmt.Errorf("step %d: row %d has no entity columns", row.Step, i)
			}
		}
	}
	return frames, nil
}

// ReadTrajectory parses a trajectory file into frames.
func ReadTrajectory(r io.Reader) ([]world.Snapshot, error) {
	var rows []TrajectoryRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("reading trajectory: %w", err)
	}
	return Frames(rows)
}
