package neuralnet

import (
	"math/rand"

	"gorgonia.org/tensor"
)

// SimpleNet is a single-layer 2x3 softmax classifier used to sanity check
// the gradient engine on a weight matrix.
type SimpleNet[T Float] struct {
	W *tensor.Dense
}

// NewSimpleNet draws W from a standard normal distribution.
func NewSimpleNet[T Float](rng *rand.Rand) *SimpleNet[T] {
	return &SimpleNet[T]{W: gaussianMatrix[T](2, 3, 1, rng)}
}

// Predict returns x·W for x of shape [batch, 2].
func (s *SimpleNet[T]) Predict(x *tensor.Dense) *tensor.Dense {
	return matMul(x, s.W)
}

// Loss is cross-entropy of softmax(x·W) against t.
func (s *SimpleNet[T]) Loss(x, t *tensor.Dense) float64 {
	return s.LossWith(s.W, x, t)
}

// LossWith scores the net as if its weight were w.
func (s *SimpleNet[T]) LossWith(w, x, t *tensor.Dense) float64 {
	mustSameShape("SimpleNet.LossWith", s.W, w)
	return CrossEntropyError[T](Softmax[T](matMul(x, w)), t)
}

// NumericalGradient estimates dLoss/dW.
func (s *SimpleNet[T]) NumericalGradient(x, t *tensor.Dense) *tensor.Dense {
	return NumericalGradient[T](func(w *tensor.Dense) float64 {
		return s.LossWith(w, x, t)
	}, s.W)
}
