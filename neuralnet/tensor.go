package neuralnet

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gorgonia.org/tensor"
)

// Float is the scalar type a network is built over.
type Float interface {
	float32 | float64
}

// DtypeOf returns the tensor dtype backing T.
func DtypeOf[T Float]() tensor.Dtype {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return tensor.Float32
	}
	return tensor.Float64
}

// NewMatrix wraps data as a rows x cols tensor. A nil data allocates zeros.
func NewMatrix[T Float](rows, cols int, data []T) *tensor.Dense {
	if data == nil {
		data = make([]T, rows*cols)
	}
	if len(data) != rows*cols {
		panic(fmt.Sprintf("NewMatrix: %d values for shape (%d, %d)", len(data), rows, cols))
	}
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(data))
}

// NewVector wraps data as a rank-1 tensor of length n. A nil data allocates zeros.
func NewVector[T Float](n int, data []T) *tensor.Dense {
	if data == nil {
		data = make([]T, n)
	}
	if len(data) != n {
		panic(fmt.Sprintf("NewVector: %d values for length %d", len(data), n))
	}
	return tensor.New(tensor.WithShape(n), tensor.WithBacking(data))
}

// Values exposes the backing slice of t. It panics when t is not backed by T.
func Values[T Float](t *tensor.Dense) []T {
	v, ok := t.Data().([]T)
	if !ok {
		panic(fmt.Sprintf("Values: tensor has dtype %v, want %v", t.Dtype(), DtypeOf[T]()))
	}
	return v
}

// Convert copies t into a new tensor of element type T with the same shape.
func Convert[T Float](t *tensor.Dense) *tensor.Dense {
	out := make([]T, t.Shape().TotalSize())
	switch src := t.Data().(type) {
	case []float64:
		for i, v := range src {
			out[i] = T(v)
		}
	case []float32:
		for i, v := range src {
			out[i] = T(v)
		}
	default:
		panic(fmt.Sprintf("Convert: unsupported dtype %v", t.Dtype()))
	}
	return tensor.New(tensor.WithShape(t.Shape().Clone()...), tensor.WithBacking(out))
}

func clone(t *tensor.Dense) *tensor.Dense {
	return t.Clone().(*tensor.Dense)
}

func mustSameShape(op string, a, b *tensor.Dense) {
	if !a.Shape().Eq(b.Shape()) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", op, a.Shape(), b.Shape()))
	}
}

func mustMatrix(op string, t *tensor.Dense) (rows, cols int) {
	s := t.Shape()
	if len(s) != 2 {
		panic(fmt.Sprintf("%s: want a matrix, got shape %v", op, s))
	}
	return s[0], s[1]
}

func matMul(a, b *tensor.Dense) *tensor.Dense {
	_, inner := mustMatrix("matMul", a)
	if rows, _ := mustMatrix("matMul", b); rows != inner {
		panic(fmt.Sprintf("matMul: shape mismatch %v · %v", a.Shape(), b.Shape()))
	}
	out, err := a.MatMul(b)
	if err != nil {
		panic(fmt.Sprintf("matMul: %v", err))
	}
	return out
}

// addRowVector adds b to every row of m in place.
func addRowVector[T Float](m, b *tensor.Dense) {
	rows, cols := mustMatrix("addRowVector", m)
	if s := b.Shape(); len(s) != 1 || s[0] != cols {
		panic(fmt.Sprintf("addRowVector: shape mismatch %v + %v", m.Shape(), s))
	}
	mv, bv := Values[T](m), Values[T](b)
	for r := 0; r < rows; r++ {
		row := mv[r*cols : (r+1)*cols]
		for c := range row {
			row[c] += bv[c]
		}
	}
}

// ArgmaxRows returns the column index of the largest value in each row of m.
// Ties resolve to the lowest index.
func ArgmaxRows[T Float](m *tensor.Dense) []int {
	rows, cols := mustMatrix("ArgmaxRows", m)
	if cols == 0 {
		panic("ArgmaxRows: matrix has no columns")
	}
	v := Values[T](m)
	scratch := make([]float64, cols)
	out := make([]int, rows)
	for r := range out {
		for c := range scratch {
			scratch[c] = float64(v[r*cols+c])
		}
		out[r] = floats.MaxIdx(scratch)
	}
	return out
}

// Labels turns a target batch into class indices. A target with the same
// column count as classes is read as one-hot, a single column as labels.
func Labels[T Float](t *tensor.Dense, classes int) []int {
	rows, cols := mustMatrix("Labels", t)
	switch cols {
	case classes:
		return ArgmaxRows[T](t)
	case 1:
		v := Values[T](t)
		out := make([]int, rows)
		for i := range out {
			out[i] = int(v[i])
			if out[i] < 0 || out[i] >= classes {
				panic(fmt.Sprintf("Labels: class %d out of range [0, %d)", out[i], classes))
			}
		}
		return out
	default:
		panic(fmt.Sprintf("Labels: target shape %v does not fit %d classes", t.Shape(), classes))
	}
}
