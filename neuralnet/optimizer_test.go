package neuralnet

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantGrads(nn *TwoLayerNet[float64], g float64) *Params[float64] {
	grads := &Params[float64]{}
	for _, name := range ParamNames {
		p := nn.Param(name)
		v := Values[float64](p)
		for i := range v {
			v[i] = g
		}
		grads.Set(name, p)
	}
	return grads
}

func TestSGDApplyInvalidInput(t *testing.T) {
	nn, err := NewTwoLayerNet[float64](2, 2, 2, 1, 1)
	require.NoError(t, err)

	assert.Error(t, (&SGD[float64]{LearningRate: 0}).Apply(nn, constantGrads(nn, 1)))
	assert.Error(t, (&SGD[float64]{LearningRate: -1}).Apply(nn, constantGrads(nn, 1)))
	assert.Error(t, (&SGD[float64]{LearningRate: 0.1}).Apply(nn, nil))
	assert.Error(t, (&SGD[float64]{LearningRate: 0.1}).Apply(nn, &Params[float64]{}))
	assert.Equal(t, uint64(0), nn.Version())
}

func TestSGDApplyUpdatesInPlace(t *testing.T) {
	nn, err := NewTwoLayerNet[float64](3, 2, 2, 1, 1)
	require.NoError(t, err)
	before := map[ParamName][]float64{}
	for _, name := range ParamNames {
		before[name] = Values[float64](nn.Param(name))
	}

	sgd := &SGD[float64]{LearningRate: 0.1, Decay: 0.5}
	require.NoError(t, sgd.Apply(nn, constantGrads(nn, 0.2)))

	for _, name := range ParamNames {
		after := Values[float64](nn.Param(name))
		for i := range after {
			assert.InDelta(t, before[name][i]-0.1*0.2, after[i], 1e-12, "%s[%d]", name, i)
		}
	}
	assert.Equal(t, uint64(len(ParamNames)), nn.Version())
	assert.InDelta(t, 0.05, sgd.LearningRate, 1e-12)
}

func TestSGDStepLowersBatchLossOnAverage(t *testing.T) {
	const runs = 40
	lower := 0
	var totalDrop float64
	for seed := int64(1); seed <= runs; seed++ {
		rng := rand.New(rand.NewSource(seed))
		nn, err := NewTwoLayerNet[float64](4, 5, 3, 1, seed)
		require.NoError(t, err)
		x, target := randomBatch[float64](rng, 8, 4, 3)

		before := nn.Loss(x, target)
		nn.ResetLoss()
		grads := nn.NumericalGradient(x, target)
		require.NoError(t, (&SGD[float64]{LearningRate: 0.1}).Apply(nn, grads))
		after := nn.Loss(x, target)

		if after < before {
			lower++
		}
		totalDrop += before - after
	}
	assert.Greater(t, totalDrop/runs, 0.0)
	assert.GreaterOrEqual(t, lower, runs*3/4)
}
