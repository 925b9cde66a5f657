package trainer

import (
	"fmt"
	"math/rand"

	"gorgonia.org/tensor"

	"fdnet/neuralnet"
)

// Batch is one mini-batch of inputs [batch, input] and targets [batch, k].
type Batch struct {
	Inputs  *tensor.Dense
	Targets *tensor.Dense
}

// SampleIndices draws size distinct indices from [0, n) in draw order.
func SampleIndices(rng *rand.Rand, n, size int) ([]int, error) {
	if size <= 0 || size > n {
		return nil, fmt.Errorf("cannot sample %d of %d examples", size, n)
	}
	selected := make(map[int]bool, size)
	indices := make([]int, 0, size)
	for len(indices) < size {
		randomIndex := rng.Intn(n)
		if !selected[randomIndex] {
			selected[randomIndex] = true
			indices = append(indices, randomIndex)
		}
	}
	return indices, nil
}

// Gather copies the given rows of m into a new matrix.
func Gather[T neuralnet.Float](m *tensor.Dense, rows []int) *tensor.Dense {
	s := m.Shape()
	if len(s) != 2 {
		panic(fmt.Sprintf("Gather: want a matrix, got shape %v", s))
	}
	cols := s[1]
	src := neuralnet.Values[T](m)
	out := make([]T, len(rows)*cols)
	for i, r := range rows {
		if r < 0 || r >= s[0] {
			panic(fmt.Sprintf("Gather: row %d out of range [0, %d)", r, s[0]))
		}
		copy(out[i*cols:(i+1)*cols], src[r*cols:(r+1)*cols])
	}
	return neuralnet.NewMatrix(len(rows), cols, out)
}

// SampleBatch draws a mini-batch without replacement.
func SampleBatch[T neuralnet.Float](rng *rand.Rand, inputs, targets *tensor.Dense, size int) (Batch, error) {
	n := inputs.Shape()[0]
	if targets.Shape()[0] != n {
		return Batch{}, fmt.Errorf("inputs have %d rows but targets have %d", n, targets.Shape()[0])
	}
	rows, err := SampleIndices(rng, n, size)
	if err != nil {
		return Batch{}, err
	}
	return Batch{Inputs: Gather[T](inputs, rows), Targets: Gather[T](targets, rows)}, nil
}
