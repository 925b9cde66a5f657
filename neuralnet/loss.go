package neuralnet

import (
	"fmt"
	"math"

	"gorgonia.org/tensor"
)

// LossFunction scores a batch of predictions against targets.
type LossFunction interface {
	// Compute returns the loss of predictions y (rows = examples) against
	// targets t, given either one-hot or as a single class-index column.
	Compute(y, t *tensor.Dense) float64
}

// crossEntropyDelta keeps ln away from 0.
const crossEntropyDelta = 1e-7

// CrossEntropy implements categorical cross-entropy averaged over the batch.
type CrossEntropy[T Float] struct{}

// Compute returns -sum(t * ln(y + delta)) / batch_size. y + delta is capped
// at 1 so the result never drops below zero.
func (ce CrossEntropy[T]) Compute(y, t *tensor.Dense) float64 {
	return CrossEntropyError[T](y, t)
}

// CrossEntropyError is the function form of CrossEntropy.Compute.
func CrossEntropyError[T Float](y, t *tensor.Dense) float64 {
	batch, classes := lossBatch("CrossEntropyError", y, t)
	yv := Values[T](y)
	var sum float64
	if y.Shape().Eq(t.Shape()) {
		tv := Values[T](t)
		for i := range yv {
			if tv[i] == 0 {
				continue
			}
			sum -= float64(tv[i]) * clampedLog(float64(yv[i]))
		}
	} else {
		for r, label := range Labels[T](t, classes) {
			sum -= clampedLog(float64(yv[r*classes+label]))
		}
	}
	return sum / float64(batch)
}

func clampedLog(p float64) float64 {
	return math.Log(math.Min(p+crossEntropyDelta, 1))
}

// SumSquares implements 0.5 * sum((y - t)^2).
type SumSquares[T Float] struct{}

func (s SumSquares[T]) Compute(y, t *tensor.Dense) float64 {
	return SumSquaresError[T](y, t)
}

// SumSquaresError is the function form of SumSquares.Compute. Class-index
// targets are scored as their one-hot rows.
func SumSquaresError[T Float](y, t *tensor.Dense) float64 {
	_, classes := lossBatch("SumSquaresError", y, t)
	yv := Values[T](y)
	var sum float64
	if y.Shape().Eq(t.Shape()) {
		tv := Values[T](t)
		for i := range yv {
			d := float64(yv[i] - tv[i])
			sum += d * d
		}
		return 0.5 * sum
	}
	for r, label := range Labels[T](t, classes) {
		for c, v := range yv[r*classes : (r+1)*classes] {
			d := float64(v)
			if c == label {
				d -= 1
			}
			sum += d * d
		}
	}
	return 0.5 * sum
}

// LossByName resolves a configured loss function.
func LossByName[T Float](name string) (LossFunction, error) {
	switch name {
	case "", "cross_entropy":
		return CrossEntropy[T]{}, nil
	case "sum_squares":
		return SumSquares[T]{}, nil
	default:
		return nil, fmt.Errorf("unknown loss %q", name)
	}
}

func lossBatch(op string, y, t *tensor.Dense) (batch, classes int) {
	switch len(y.Shape()) {
	case 1:
		// A single example.
		mustSameShape(op, y, t)
		return 1, y.Shape()[0]
	case 2:
		batch, classes = mustMatrix(op, y)
		rows, cols := mustMatrix(op, t)
		if rows != batch || (cols != classes && cols != 1) {
			panic(fmt.Sprintf("%s: shape mismatch %v vs %v", op, y.Shape(), t.Shape()))
		}
		return batch, classes
	default:
		panic(fmt.Sprintf("%s: unsupported shape %v", op, y.Shape()))
	}
}
