package neuralnet

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReLUActivate(t *testing.T) {
	r := ReLU{}
	assert.Equal(t, 0.0, r.Activate(-1))
	assert.Equal(t, 2.0, r.Activate(2))
}

func TestSigmoidActivate(t *testing.T) {
	s := Sigmoid{}
	assert.InDelta(t, 0.5, s.Activate(0), 1e-12)
	assert.InDelta(t, 1.0, s.Activate(40), 1e-12)

	low := s.Activate(-1e6)
	assert.False(t, math.IsNaN(low))
	assert.GreaterOrEqual(t, low, 0.0)
	assert.Less(t, low, 1e-300)
}

func TestLinearAndStepActivate(t *testing.T) {
	assert.Equal(t, 3.14, Linear{}.Activate(3.14))
	assert.Equal(t, 0.0, Step{}.Activate(0))
	assert.Equal(t, 1.0, Step{}.Activate(0.1))
	assert.Equal(t, -0.2, NewLeakyReLU(0.1).Activate(-2))
}

func TestActivationByName(t *testing.T) {
	a, err := ActivationByName("")
	require.NoError(t, err)
	assert.IsType(t, Sigmoid{}, a)

	a, err = ActivationByName("tanh")
	require.NoError(t, err)
	assert.IsType(t, Tanh{}, a)

	_, err = ActivationByName("gelu")
	assert.Error(t, err)
}

func TestActivationByNameCoversEveryHiddenActivation(t *testing.T) {
	tests := map[string]ActivationFunction{
		"sigmoid":    Sigmoid{},
		"relu":       ReLU{},
		"leaky_relu": NewLeakyReLU(0.01),
		"tanh":       Tanh{},
		"linear":     Linear{},
		"step":       Step{},
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ActivationByName(name)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
	leaky, err := ActivationByName("leaky_relu")
	require.NoError(t, err)
	assert.InDelta(t, -0.02, leaky.Activate(-2), 1e-12)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	x := NewMatrix(1, 3, []float64{-1, 0, 1})
	y := Apply[float64](Sigmoid{}, x)

	assert.Equal(t, []float64{-1, 0, 1}, Values[float64](x))
	assert.InDelta(t, 0.5, Values[float64](y)[1], 1e-12)
}

func TestSoftmaxRowsAreDistributions(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		rows, cols := 1+rng.Intn(8), 1+rng.Intn(12)
		data := make([]float64, rows*cols)
		scale := math.Pow(10, float64(rng.Intn(4)))
		for i := range data {
			data[i] = rng.NormFloat64() * scale
		}
		y := Values[float64](Softmax[float64](NewMatrix(rows, cols, data)))
		for r := 0; r < rows; r++ {
			var sum float64
			for _, v := range y[r*cols : (r+1)*cols] {
				require.GreaterOrEqual(t, v, 0.0)
				sum += v
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
		}
	}
}

func TestSoftmaxLargeLogits(t *testing.T) {
	y := Values[float64](Softmax[float64](NewVector(3, []float64{1010, 1000, 990})))
	for _, v := range y {
		assert.False(t, math.IsNaN(v))
	}
	assert.InDelta(t, 1.0, y[0]+y[1]+y[2], 1e-9)
	assert.Greater(t, y[0], y[1])
}

func TestSoftmaxTiedRowIsUniform(t *testing.T) {
	y := Values[float32](Softmax[float32](NewMatrix(2, 4, []float32{3, 3, 3, 3, -5, -5, -5, -5})))
	for _, v := range y {
		assert.InDelta(t, 0.25, v, 1e-6)
	}
}
