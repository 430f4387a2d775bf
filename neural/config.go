package neural

import (
	"fmt"

	"github.com/pthm-cable/physarum/config"
)

// Signal alphabet and history window (compile-time constants for array sizing).
// The trajectory file layout depends on SignalHistoryLen.
const (
	NumSignals       = 4
	SignalHistoryLen = 4
)

// Network input/output widths are fixed by the simulation features; only the
// hidden widths come from config.
const (
	GrowthInputs  = 8 + SignalHistoryLen // topology, flow, angles, energy, food flag + history
	GrowthOutputs = 4                    // probability, angle, variance, signal
	FlowInputs    = 4                    // flow rate, upstream net, downstream net, signal
	FlowOutputs   = 2                    // increase, decrease
)

// Block identifies one of the two networks stored in a genome.
type Block uint8

const (
	GrowthBlock Block = iota
	FlowBlock
)

func (b Block) String() string {
	switch b {
	case GrowthBlock:
		return "growth"
	case FlowBlock:
		return "flow"
	}
	return fmt.Sprintf("Block(%d)", uint8(b))
}

// LayerSpec describes one dense layer and where its parameters live in the
// flattened block. Weights occupy [Offset, Offset+In*Out), biases follow.
type LayerSpec struct {
	In, Out    int
	Offset     int
	Activation Activation
}

// WeightCount returns the number of weights in the layer.
func (l LayerSpec) WeightCount() int { return l.In * l.Out }

// BiasOffset returns the index of the first bias in the flattened block.
func (l LayerSpec) BiasOffset() int { return l.Offset + l.In*l.Out }

// ParamCount returns weights plus biases.
func (l LayerSpec) ParamCount() int { return l.In*l.Out + l.Out }

// Architecture is the fixed layer table of both decision networks.
type Architecture struct {
	Growth []LayerSpec
	Flow   []LayerSpec

	growthParams int
	flowParams   int
}

// NewArchitecture builds the layer table from the configured hidden widths.
func NewArchitecture(cfg config.NeuralConfig) (Architecture, error) {
	hidden, err := ParseActivation(cfg.HiddenActivation)
	if err != nil {
		return Architecture{}, fmt.Errorf("hidden activation: %w", err)
	}
	output, err := ParseActivation(cfg.OutputActivation)
	if err != nil {
		return Architecture{}, fmt.Errorf("output activation: %w", err)
	}

	arch := Architecture{}
	arch.Growth, arch.growthParams = buildLayers(GrowthInputs, cfg.GrowthHidden, GrowthOutputs, hidden, output)
	arch.Flow, arch.flowParams = buildLayers(FlowInputs, cfg.FlowHidden, FlowOutputs, hidden, output)
	return arch, nil
}

// MustArchitecture is like NewArchitecture but panics on error.
func MustArchitecture(cfg config.NeuralConfig) Architecture {
	arch, err := NewArchitecture(cfg)
	if err != nil {
		panic(fmt.Sprintf("neural: invalid architecture: %v", err))
	}
	return arch
}

func buildLayers(inputs int, hidden []int, outputs int, hiddenAct, outputAct Activation) ([]LayerSpec, int) {
	widths := make([]int, 0, len(hidden)+2)
	widths = append(widths, inputs)
	widths = append(widths, hidden...)
	widths = append(widths, outputs)

	layers := make([]LayerSpec, 0, len(widths)-1)
	offset := 0
	for i := 0; i+1 < len(widths); i++ {
		act := hiddenAct
		if i == len(widths)-2 {
			act = outputAct
		}
		l := LayerSpec{In: widths[i], Out: widths[i+1], Offset: offset, Activation: act}
		layers = append(layers, l)
		offset += l.ParamCount()
	}
	return layers, offset
}

// Layers returns the layer table of a block.
func (a Architecture) Layers(b Block) []LayerSpec {
	if b == GrowthBlock {
		return a.Growth
	}
	return a.Flow
}

// BlockParams returns the parameter count of a block.
func (a Architecture) BlockParams(b Block) int {
	if b == GrowthBlock {
		return a.growthParams
	}
	return a.flowParams
}

// NumParams returns the total genome length.
func (a Architecture) NumParams() int {
	return a.growthParams + a.flowParams
}

// Split cuts a flattened genome into its growth and flow blocks.
func (a Architecture) Split(flat []float64) (growth, flow []float64, err error) {
	if len(flat) != a.NumParams() {
		return nil, nil, fmt.Errorf("genome has %d parameters, architecture expects %d", len(flat), a.NumParams())
	}
	return flat[:a.growthParams], flat[a.growthParams:], nil
}
