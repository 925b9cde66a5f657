package neuralnet

import (
	"fmt"

	"gonum.org/v1/gonum/diff/fd"
	"gorgonia.org/tensor"
)

// DiffStep is the finite-difference step h.
const DiffStep = 1e-4

var centralSettings = &fd.Settings{
	Formula: fd.Central,
	Step:    DiffStep,
}

// NumericalDiff estimates f'(x) as (f(x+h) - f(x-h)) / 2h.
func NumericalDiff(f func(float64) float64, x float64) float64 {
	return fd.Derivative(f, x, centralSettings)
}

// NumericalGradient estimates the partial derivative of f with respect to
// every element of x by central differences, one element at a time. f sees a
// scratch copy of x with a single element perturbed; x itself is never
// written. The result has the shape of x.
//
// Each element costs two evaluations of f, so the whole sweep is O(2*P*C)
// for P elements and an evaluation cost C.
func NumericalGradient[T Float](f func(*tensor.Dense) float64, x *tensor.Dense) *tensor.Dense {
	src := Values[T](x)
	origin := make([]float64, len(src))
	for i, v := range src {
		origin[i] = float64(v)
	}

	scratch := clone(x)
	sv := Values[T](scratch)
	grad := fd.Gradient(nil, func(probe []float64) float64 {
		for i, v := range probe {
			sv[i] = T(v)
		}
		return f(scratch)
	}, origin, centralSettings)

	out := make([]T, len(grad))
	for i, g := range grad {
		out[i] = T(g)
	}
	return tensor.New(tensor.WithShape(x.Shape().Clone()...), tensor.WithBacking(out))
}

// GradientDescent repeatedly steps x against the numerical gradient of f.
// It returns the final point and the point held before each step, starting with init.
func GradientDescent[T Float](f func(*tensor.Dense) float64, init *tensor.Dense, lr float64, steps int) (*tensor.Dense, []*tensor.Dense) {
	if steps < 0 {
		panic(fmt.Sprintf("GradientDescent: negative step count %d", steps))
	}
	x := clone(init)
	history := make([]*tensor.Dense, 0, steps)
	for i := 0; i < steps; i++ {
		history = append(history, clone(x))
		grad := NumericalGradient[T](f, x)
		x = descend[T](x, grad, lr)
	}
	return x, history
}

// descend returns x - lr*grad as a new tensor.
func descend[T Float](x, grad *tensor.Dense, lr float64) *tensor.Dense {
	mustSameShape("descend", x, grad)
	scaled, err := grad.MulScalar(T(lr), true)
	if err != nil {
		panic(fmt.Sprintf("descend: %v", err))
	}
	next, err := x.Sub(scaled)
	if err != nil {
		panic(fmt.Sprintf("descend: %v", err))
	}
	return next
}
