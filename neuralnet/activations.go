package neuralnet

import (
	"fmt"
	"math"

	"gorgonia.org/tensor"
)

// ActivationFunction is an element-wise activation.
type ActivationFunction interface {
	Activate(x float64) float64
}

type ReLU struct{}

func (r ReLU) Activate(x float64) float64 {
	return math.Max(x, 0)
}

type LeakyReLU struct {
	alpha float64
}

func NewLeakyReLU(alpha float64) LeakyReLU {
	return LeakyReLU{alpha: alpha}
}

func (l LeakyReLU) Activate(x float64) float64 {
	if x > 0 {
		return x
	}
	return l.alpha * x
}

// sigmoidFloor bounds the exponent so exp(-x) stays finite.
const sigmoidFloor = -700

type Sigmoid struct{}

func (s Sigmoid) Activate(x float64) float64 {
	if x < sigmoidFloor {
		x = sigmoidFloor
	}
	return 1 / (1 + math.Exp(-x))
}

type Tanh struct{}

func (t Tanh) Activate(x float64) float64 {
	return math.Tanh(x)
}

// Linear is the identity activation.
type Linear struct{}

func (t Linear) Activate(x float64) float64 {
	return x
}

// Step outputs 1 for strictly positive inputs and 0 otherwise.
type Step struct{}

func (s Step) Activate(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

// ActivationByName resolves a configured hidden-layer activation.
func ActivationByName(name string) (ActivationFunction, error) {
	switch name {
	case "", "sigmoid":
		return Sigmoid{}, nil
	case "relu":
		return ReLU{}, nil
	case "leaky_relu":
		return NewLeakyReLU(0.01), nil
	case "tanh":
		return Tanh{}, nil
	case "linear":
		return Linear{}, nil
	case "step":
		return Step{}, nil
	default:
		return nil, fmt.Errorf("unknown activation %q", name)
	}
}

// Apply returns a new tensor holding f applied to every element of x.
func Apply[T Float](f ActivationFunction, x *tensor.Dense) *tensor.Dense {
	out := clone(x)
	v := Values[T](out)
	for i := range v {
		v[i] = T(f.Activate(float64(v[i])))
	}
	return out
}

// Softmax normalizes a vector, or every row of a matrix, into a probability
// distribution. The row maximum is subtracted before exponentiating.
func Softmax[T Float](x *tensor.Dense) *tensor.Dense {
	out := clone(x)
	v := Values[T](out)
	cols := len(v)
	switch s := x.Shape(); len(s) {
	case 1:
	case 2:
		cols = s[1]
	default:
		panic(fmt.Sprintf("Softmax: unsupported shape %v", s))
	}
	if cols == 0 {
		return out
	}
	for start := 0; start < len(v); start += cols {
		softmaxRow(v[start : start+cols])
	}
	return out
}

func softmaxRow[T Float](row []T) {
	peak := row[0]
	for _, e := range row[1:] {
		if e > peak {
			peak = e
		}
	}
	var sum float64
	exps := make([]float64, len(row))
	for i, e := range row {
		exps[i] = math.Exp(float64(e - peak))
		sum += exps[i]
	}
	for i := range row {
		row[i] = T(exps[i] / sum)
	}
}
