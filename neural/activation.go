package neural

import (
	"fmt"
	"math"
)

// Activation is an element-wise layer activation.
type Activation uint8

const (
	Sigmoid Activation = iota
	ReLU
	Tanh
)

// ParseActivation maps a config name to an Activation.
func ParseActivation(name string) (Activation, error) {
	switch name {
	case "sigmoid":
		return Sigmoid, nil
	case "relu":
		return ReLU, nil
	case "tanh":
		return Tanh, nil
	}
	return 0, fmt.Errorf("unknown activation %q", name)
}

func (a Activation) String() string {
	switch a {
	case Sigmoid:
		return "sigmoid"
	case ReLU:
		return "relu"
	case Tanh:
		return "tanh"
	}
	return fmt.Sprintf("Activation(%d)", uint8(a))
}

// Apply evaluates the activation at x.
func (a Activation) Apply(x float64) float64 {
	switch a {
	case ReLU:
		if x < 0 {
			return 0
		}
		return x
	case Tanh:
		return math.Tanh(x)
	default:
		return sigmoid(x)
	}
}

// sigmoid is the logistic function, split by sign so exp never overflows.
func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
