package telemetry

import (
	"os"
	"strings"
	"testing"

	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/neural"
	"github.com/pthm-cable/physarum/rng"
	"github.com/pthm-cable/physarum/world"
)

func TestRowsColumnGroups(t *testing.T) {
	s := world.Snapshot{
		Step:    3,
		Fitness: 1.5,
		Nodes:   []world.NodeState{{X: 1, Y: 2, Energy: 3, TouchingFood: true, Signal: 2, History: []int{1, 0}}},
		Edges:   []world.EdgeState{{X1: 1, Y1: 2, X2: 3, Y2: 4, FlowRate: 0.4}},
		Foods:   []world.FoodState{{X: 5, Y: 6, Radius: 7, Energy: 8}},
	}
	rows := Rows(s)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, row := range rows {
		groups := 0
		for _, populated := range []bool{row.isNode(), row.isEdge(), row.isFood()} {
			if populated {
				groups++
			}
		}
		if groups != 1 {
			t.Errorf("row %d populates %d groups", i, groups)
		}
		if row.Step != 3 || row.Fitness != 1.5 {
			t.Errorf("row %d: step/fitness = %d/%v", i, row.Step, row.Fitness)
		}
	}
	if rows[0].NodeHist2.Valid {
		t.Error("missing history entries should stay empty")
	}
}

func TestTrajectoryRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Food.Count = 4
	arch := neural.MustArchitecture(cfg.Neural)
	w := world.New(cfg, neural.NewGenome(arch, rng.New(1)), rng.New(2))

	om, err := NewOutputManager(t.TempDir(), cfg.Telemetry)
	if err != nil {
		t.Fatal(err)
	}
	var want []world.Snapshot
	for i := 0; i < 6; i++ {
		s := w.Snapshot()
		want = append(want, s)
		if err := om.WriteFrame(s); err != nil {
			t.Fatal(err)
		}
		w.Step()
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(om.Path(cfg.Telemetry.TrajectoryFile))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := ReadTrajectory(f)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != len(want) {
		t.Fatalf("got %d frames, want %d", len(got), len(want))
	}
	for i := range want {
		compareSnapshots(t, i, got[i], want[i])
	}
}

func TestEmptyFrameSurvives(t *testing.T) {
	rows := append(Rows(world.Snapshot{Step: 0, Fitness: 2}), Rows(world.Snapshot{
		Step:  1,
		Foods: []world.FoodState{{X: 1, Y: 1, Radius: 1, Energy: 1}},
	})...)
	frames, err := Frames(rows)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].Fitness != 2 || len(frames[0].Nodes) != 0 {
		t.Errorf("frame 0 = %+v", frames[0])
	}
	if len(frames[1].Foods) != 1 {
		t.Errorf("frame 1 has %d foods, want 1", len(frames[1].Foods))
	}
}

func TestTrajectoryEmptyCells(t *testing.T) {
	in := "step,fitness,n_x,n_y,n_energy,n_touching_food,n_signal,n_signal_hist_0,n_signal_hist_1,n_signal_hist_2,n_signal_hist_3,e_x1,e_y1,e_x2,e_y2,e_flow_rate,f_x,f_y,f_radius,f_energy\n" +
		"0,1,0,0,20,0,3,,,,,,,,,,,,,\n" +
		"0,1,,,,,,,,,,0,0,20,0,0.4,,,,\n"
	frames, err := ReadTrajectory(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	f := frames[0]
	if len(f.Nodes) != 1 || len(f.Edges) != 1 || len(f.Foods) != 0 {
		t.Fatalf("got %d nodes, %d edges, %d foods", len(f.Nodes), len(f.Edges), len(f.Foods))
	}
	if f.Nodes[0].Signal != 3 || len(f.Nodes[0].History) != 0 {
		t.Errorf("node = %+v", f.Nodes[0])
	}
	if f.Edges[0].X2 != 20 || f.Edges[0].FlowRate != 0.4 {
		t.Errorf("edge = %+v", f.Edges[0])
	}
}

func compareSnapshots(t *testing.T, i int, got, want world.Snapshot) {
	t.Helper()
	if got.Step != want.Step || got.Fitness != want.Fitness {
		t.Errorf("frame %d: step/fitness = %d/%v, want %d/%v", i, got.Step, got.Fitness, want.Step, want.Fitness)
	}
	if len(got.Nodes) != len(want.Nodes) || len(got.Edges) != len(want.Edges) || len(got.Foods) != len(want.Foods) {
		t.Fatalf("frame %d: counts %d/%d/%d, want %d/%d/%d", i,
			len(got.Nodes), len(got.Edges), len(got.Foods),
			len(want.Nodes), len(want.Edges), len(want.Foods))
	}
	for k, n := range want.Nodes {
		g := got.Nodes[k]
		if g.X != n.X || g.Y != n.Y || g.Energy != n.Energy || g.TouchingFood != n.TouchingFood || g.Signal != n.Signal {
			t.Errorf("frame %d node %d: got %+v, want %+v", i, k, g, n)
		}
		if len(g.History) != len(n.History) {
			t.Errorf("frame %d node %d: history %v, want %v", i, k, g.History, n.History)
			continue
		}
		for h := range n.History {
			if g.History[h] != n.History[h] {
				t.Errorf("frame %d node %d: history %v, want %v", i, k, g.History, n.History)
				break
			}
		}
	}
	for k, e := range want.Edges {
		if got.Edges[k] != e {
			t.Errorf("frame %d edge %d: got %+v, want %+v", i, k, got.Edges[k], e)
		}
	}
	for k, f := range want.Foods {
		if got.Foods[k] != f {
			t.Errorf("frame %d food %d: got %+v, want %+v", i, k, got.Foods[k], f)
		}
	}
}
