// Package neural provides the decision networks that drive network growth and
// flow, plus the genome that parameterizes them.
package neural

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Layer is one dense layer. W is In×Out, so output_j = act(B_j + Σ_k x_k W[k][j]).
type Layer struct {
	W          *mat.Dense
	B          *mat.VecDense
	Activation Activation
}

// FNN is a fixed-topology feed-forward network. It performs inference only.
type FNN struct {
	Layers []Layer

	// scratch vectors, one per layer output
	buf []*mat.VecDense
}

// NewFNN wraps the given layers. The matrices are shared with the caller.
// Consecutive layer widths must agree.
func NewFNN(layers []Layer) *FNN {
	nn := &FNN{Layers: layers, buf: make([]*mat.VecDense, len(layers))}
	for i, l := range layers {
		in, out := l.W.Dims()
		if l.B.Len() != out {
			panic(fmt.Sprintf("neural: layer %d has %d outputs but %d biases", i, out, l.B.Len()))
		}
		if i > 0 {
			if _, prevOut := layers[i-1].W.Dims(); prevOut != in {
				panic(fmt.Sprintf("neural: layer %d expects %d inputs, previous layer yields %d", i, in, prevOut))
			}
		}
		nn.buf[i] = mat.NewVecDense(out, nil)
	}
	return nn
}

// NumInputs returns the input width.
func (nn *FNN) NumInputs() int {
	in, _ := nn.Layers[0].W.Dims()
	return in
}

// NumOutputs returns the output width.
func (nn *FNN) NumOutputs() int {
	_, out := nn.Layers[len(nn.Layers)-1].W.Dims()
	return out
}

// Forward evaluates the network and returns a freshly allocated output slice.
// Panics if len(inputs) does not match the first layer.
func (nn *FNN) Forward(inputs []float64) []float64 {
	if len(inputs) != nn.NumInputs() {
		panic(fmt.Sprintf("neural: got %d inputs, network expects %d", len(inputs), nn.NumInputs()))
	}

	x := mat.NewVecDense(len(inputs), append([]float64(nil), inputs...))
	for i, l := range nn.Layers {
		y := nn.buf[i]
		y.MulVec(l.W.T(), x)
		y.AddVec(y, l.B)
		raw := y.RawVector().Data
		for j := range raw {
			raw[j] = l.Activation.Apply(raw[j])
		}
		x = y
	}

	out := make([]float64, x.Len())
	copy(out, x.RawVector().Data)
	return out
}
