package neuralnet

import (
	"fmt"
	"math/rand"

	"gorgonia.org/tensor"
)

// ParamName identifies one of the four trainable tensors.
type ParamName string

const (
	W1 ParamName = "w1"
	B1 ParamName = "b1"
	W2 ParamName = "w2"
	B2 ParamName = "b2"
)

// ParamNames lists every parameter in update order.
var ParamNames = []ParamName{W1, B1, W2, B2}

// Params holds the weights and biases of a two-layer network:
// W1 [input, hidden], B1 [hidden], W2 [hidden, output], B2 [output].
// The same record carries gradients, shaped identically.
type Params[T Float] struct {
	W1 *tensor.Dense
	B1 *tensor.Dense
	W2 *tensor.Dense
	B2 *tensor.Dense
}

// NewParams draws W1 and W2 from N(0, weightInitStd^2) and zeroes the biases.
func NewParams[T Float](inputSize, hiddenSize, outputSize int, weightInitStd float64, rng *rand.Rand) (*Params[T], error) {
	if inputSize <= 0 || hiddenSize <= 0 || outputSize <= 0 {
		return nil, fmt.Errorf("invalid network sizes input=%d hidden=%d output=%d", inputSize, hiddenSize, outputSize)
	}
	if rng == nil {
		return nil, fmt.Errorf("nil random source")
	}
	return &Params[T]{
		W1: gaussianMatrix[T](inputSize, hiddenSize, weightInitStd, rng),
		B1: NewVector[T](hiddenSize, nil),
		W2: gaussianMatrix[T](hiddenSize, outputSize, weightInitStd, rng),
		B2: NewVector[T](outputSize, nil),
	}, nil
}

func gaussianMatrix[T Float](rows, cols int, std float64, rng *rand.Rand) *tensor.Dense {
	data := make([]T, rows*cols)
	for i := range data {
		data[i] = T(std * rng.NormFloat64())
	}
	return NewMatrix(rows, cols, data)
}

// Get returns the tensor stored under name.
func (p *Params[T]) Get(name ParamName) *tensor.Dense {
	return *p.slot(name)
}

// Set replaces the tensor stored under name. The replacement must have the
// shape of the current entry.
func (p *Params[T]) Set(name ParamName, t *tensor.Dense) {
	slot := p.slot(name)
	if *slot != nil {
		mustSameShape(fmt.Sprintf("Params.Set(%s)", name), *slot, t)
	}
	*slot = t
}

// With returns a shallow copy of p where name is replaced by t. p is not modified.
func (p *Params[T]) With(name ParamName, t *tensor.Dense) *Params[T] {
	next := *p
	next.Set(name, t)
	return &next
}

// Clone deep-copies every tensor.
func (p *Params[T]) Clone() *Params[T] {
	return &Params[T]{
		W1: clone(p.W1),
		B1: clone(p.B1),
		W2: clone(p.W2),
		B2: clone(p.B2),
	}
}

// Count returns the total number of scalar parameters.
func (p *Params[T]) Count() int {
	n := 0
	for _, name := range ParamNames {
		n += p.Get(name).Shape().TotalSize()
	}
	return n
}

func (p *Params[T]) slot(name ParamName) **tensor.Dense {
	switch name {
	case W1:
		return &p.W1
	case B1:
		return &p.B1
	case W2:
		return &p.W2
	case B2:
		return &p.B2
	default:
		panic(fmt.Sprintf("unknown parameter %q", name))
	}
}

// predict runs the forward pass with the given hidden activation.
func (p *Params[T]) predict(x *tensor.Dense, hidden ActivationFunction) *tensor.Dense {
	a1 := matMul(x, p.W1)
	addRowVector[T](a1, p.B1)
	z1 := Apply[T](hidden, a1)
	a2 := matMul(z1, p.W2)
	addRowVector[T](a2, p.B2)
	return Softmax[T](a2)
}
