package neural

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/rng"
)

func testArch(t testing.TB) Architecture {
	t.Helper()
	arch, err := NewArchitecture(config.Default().Neural)
	if err != nil {
		t.Fatalf("NewArchitecture failed: %v", err)
	}
	return arch
}

func TestSigmoidStable(t *testing.T) {
	tests := []struct {
		x, want float64
	}{
		{0, 0.5},
		{1000, 1},
		{-1000, 0},
	}
	for _, tt := range tests {
		got := Sigmoid.Apply(tt.x)
		if math.IsNaN(got) || math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("sigmoid(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
	if s := Sigmoid.Apply(2) + Sigmoid.Apply(-2); math.Abs(s-1) > 1e-12 {
		t.Errorf("sigmoid(2) + sigmoid(-2) = %v, want 1", s)
	}
}

func TestActivations(t *testing.T) {
	if got := ReLU.Apply(-3); got != 0 {
		t.Errorf("relu(-3) = %v, want 0", got)
	}
	if got := ReLU.Apply(2.5); got != 2.5 {
		t.Errorf("relu(2.5) = %v, want 2.5", got)
	}
	if got := Tanh.Apply(0.5); math.Abs(got-math.Tanh(0.5)) > 1e-15 {
		t.Errorf("tanh(0.5) = %v", got)
	}
	if _, err := ParseActivation("softmax"); err == nil {
		t.Error("ParseActivation accepted unknown name")
	}
}

func TestForwardKnownWeights(t *testing.T) {
	// 2 inputs -> 1 output, linear combination passed through relu.
	w := mat.NewDense(2, 1, []float64{2, -1})
	b := mat.NewVecDense(1, []float64{0.5})
	nn := NewFNN([]Layer{{W: w, B: b, Activation: ReLU}})

	got := nn.Forward([]float64{3, 1})
	if want := 2*3 - 1 + 0.5; got[0] != want {
		t.Errorf("Forward = %v, want %v", got[0], want)
	}
	got = nn.Forward([]float64{0, 4})
	if got[0] != 0 {
		t.Errorf("Forward = %v, want 0 after relu", got[0])
	}
}

func TestForwardOutputRange(t *testing.T) {
	arch := testArch(t)
	g := NewGenome(arch, rng.New(42))
	nn := g.GrowthNet()

	inputs := make([]float64, GrowthInputs)
	for i := range inputs {
		inputs[i] = 0.5
	}
	out := nn.Forward(inputs)
	if len(out) != GrowthOutputs {
		t.Fatalf("got %d outputs, want %d", len(out), GrowthOutputs)
	}
	for i, v := range out {
		if v < 0 || v > 1 {
			t.Errorf("output %d = %v outside sigmoid range", i, v)
		}
	}
}

func TestForwardDeterministic(t *testing.T) {
	g := NewGenome(testArch(t), rng.New(7))
	nn := g.FlowNet()

	inputs := []float64{0.4, 0.1, -0.2, 0.25}
	a := nn.Forward(inputs)
	b := nn.Forward(inputs)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Forward is not deterministic at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestForwardPanicsOnWrongLength(t *testing.T) {
	g := NewGenome(testArch(t), rng.New(1))
	nn := g.FlowNet()

	defer func() {
		if recover() == nil {
			t.Error("Forward did not panic on mismatched input length")
		}
	}()
	nn.Forward([]float64{1, 2})
}

func BenchmarkForward(b *testing.B) {
	g := NewGenome(testArch(b), rng.New(42))
	nn := g.GrowthNet()

	inputs := make([]float64, GrowthInputs)
	for i := range inputs {
		inputs[i] = 0.5
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		nn.Forward(inputs)
	}
}
