package neural

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/physarum/rng"
)

// Genome holds the parameters of the growth and flow networks.
type Genome struct {
	Arch   Architecture
	Growth []Layer
	Flow   []Layer
}

// NewGenome allocates a genome with He-scaled Gaussian weights and zero biases.
func NewGenome(arch Architecture, r *rng.Source) *Genome {
	g := &Genome{
		Arch:   arch,
		Growth: allocLayers(arch.Growth),
		Flow:   allocLayers(arch.Flow),
	}
	for _, layers := range [][]Layer{g.Growth, g.Flow} {
		for _, l := range layers {
			in, _ := l.W.Dims()
			scale := math.Sqrt(2.0 / float64(in))
			raw := l.W.RawMatrix().Data
			for i := range raw {
				raw[i] = r.Gaussian(0, scale)
			}
		}
	}
	return g
}

// NewGenomeFrom builds a genome from a flattened parameter vector.
func NewGenomeFrom(arch Architecture, flat []float64) (*Genome, error) {
	g := &Genome{
		Arch:   arch,
		Growth: allocLayers(arch.Growth),
		Flow:   allocLayers(arch.Flow),
	}
	if err := g.Load(flat); err != nil {
		return nil, err
	}
	return g, nil
}

func allocLayers(specs []LayerSpec) []Layer {
	layers := make([]Layer, len(specs))
	for i, s := range specs {
		layers[i] = Layer{
			W:          mat.NewDense(s.In, s.Out, nil),
			B:          mat.NewVecDense(s.Out, nil),
			Activation: s.Activation,
		}
	}
	return layers
}

// NumParams returns the flattened length.
func (g *Genome) NumParams() int {
	return g.Arch.NumParams()
}

func (g *Genome) block(b Block) []Layer {
	if b == GrowthBlock {
		return g.Growth
	}
	return g.Flow
}

// Flatten returns every parameter in storage order: growth block then flow
// block, each layer's weights row-major followed by its biases.
func (g *Genome) Flatten() []float64 {
	flat := make([]float64, 0, g.NumParams())
	for _, b := range []Block{GrowthBlock, FlowBlock} {
		flat = g.appendBlock(flat, b)
	}
	return flat
}

// FlattenBlock returns the parameters of a single block.
func (g *Genome) FlattenBlock(b Block) []float64 {
	return g.appendBlock(make([]float64, 0, g.Arch.BlockParams(b)), b)
}

func (g *Genome) appendBlock(dst []float64, b Block) []float64 {
	for _, l := range g.block(b) {
		dst = append(dst, l.W.RawMatrix().Data...)
		dst = append(dst, l.B.RawVector().Data...)
	}
	return dst
}

// Load is the inverse of Flatten.
func (g *Genome) Load(flat []float64) error {
	growth, flow, err := g.Arch.Split(flat)
	if err != nil {
		return err
	}
	if err := g.LoadBlock(GrowthBlock, growth); err != nil {
		return err
	}
	return g.LoadBlock(FlowBlock, flow)
}

// LoadBlock loads the parameters of one block.
func (g *Genome) LoadBlock(b Block, params []float64) error {
	if want := g.Arch.BlockParams(b); len(params) != want {
		return fmt.Errorf("%s block has %d parameters, want %d", b, len(params), want)
	}
	specs := g.Arch.Layers(b)
	for i, l := range g.block(b) {
		s := specs[i]
		copy(l.W.RawMatrix().Data, params[s.Offset:s.BiasOffset()])
		copy(l.B.RawVector().Data, params[s.BiasOffset():s.Offset+s.ParamCount()])
	}
	return nil
}

// Mutate perturbs each parameter with probability rate by U(-strength, strength).
// Returns the number of parameters changed.
func (g *Genome) Mutate(r *rng.Source, rate, strength float64) int {
	changed := 0
	for _, layers := range [][]Layer{g.Growth, g.Flow} {
		for _, l := range layers {
			changed += mutateSlice(r, l.W.RawMatrix().Data, rate, strength)
			changed += mutateSlice(r, l.B.RawVector().Data, rate, strength)
		}
	}
	return changed
}

func mutateSlice(r *rng.Source, xs []float64, rate, strength float64) int {
	n := 0
	for i := range xs {
		if r.Float64() < rate {
			xs[i] += r.Uniform(-strength, strength)
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (g *Genome) Clone() *Genome {
	return &Genome{
		Arch:   g.Arch,
		Growth: cloneLayers(g.Growth),
		Flow:   cloneLayers(g.Flow),
	}
}

func cloneLayers(layers []Layer) []Layer {
	out := make([]Layer, len(layers))
	for i, l := range layers {
		out[i] = Layer{
			W:          mat.DenseCopyOf(l.W),
			B:          mat.VecDenseCopyOf(l.B),
			Activation: l.Activation,
		}
	}
	return out
}

// GrowthNet returns a network that reads the growth block.
func (g *Genome) GrowthNet() *FNN { return NewFNN(g.Growth) }

// FlowNet returns a network that reads the flow block.
func (g *Genome) FlowNet() *FNN { return NewFNN(g.Flow) }
