package neuralnet

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"gorgonia.org/tensor"
)

// TwoLayerNet is a sigmoid/softmax classifier trained by numerical gradients.
//
// Loss caches its result; the cache is keyed on the parameter version and the
// batch, and every parameter write bumps the version. Loss and Update are not
// safe for concurrent use; Predict and Accuracy only read parameters.
type TwoLayerNet[T Float] struct {
	params   *Params[T]
	version  uint64
	cache    lossCache
	hidden   ActivationFunction
	loss     LossFunction
	parallel bool

	inputSize  int
	hiddenSize int
	outputSize int
}

type lossCache struct {
	valid   bool
	version uint64
	x, t    *tensor.Dense
	value   float64
}

// NewTwoLayerNet builds a network with Gaussian weights scaled by
// weightInitStd and zero biases. A zero seed derives one from the sizes.
func NewTwoLayerNet[T Float](inputSize, hiddenSize, outputSize int, weightInitStd float64, seed int64) (*TwoLayerNet[T], error) {
	if seed == 0 {
		seed = int64(NNSeed(inputSize, []int{hiddenSize}, outputSize))
	}
	params, err := NewParams[T](inputSize, hiddenSize, outputSize, weightInitStd, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, fmt.Errorf("new two-layer net: %w", err)
	}
	return &TwoLayerNet[T]{
		params:     params,
		hidden:     Sigmoid{},
		loss:       CrossEntropy[T]{},
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		outputSize: outputSize,
	}, nil
}

// NNSeed derives a deterministic seed from the layer sizes.
func NNSeed(inputSize int, hidden []int, outputSize int) int {
	seed := inputSize
	for _, h := range hidden {
		seed = seed + h
	}
	return seed + outputSize
}

// SetActivation swaps the hidden-layer activation.
func (nn *TwoLayerNet[T]) SetActivation(activation ActivationFunction) {
	nn.hidden = activation
	nn.ResetLoss()
}

// SetLoss swaps the loss function.
func (nn *TwoLayerNet[T]) SetLoss(loss LossFunction) {
	nn.loss = loss
	nn.ResetLoss()
}

// SetParallel makes NumericalGradient sweep the four parameters concurrently.
func (nn *TwoLayerNet[T]) SetParallel(parallel bool) {
	nn.parallel = parallel
}

func (nn *TwoLayerNet[T]) InputSize() int  { return nn.inputSize }
func (nn *TwoLayerNet[T]) OutputSize() int { return nn.outputSize }

// Version counts parameter writes.
func (nn *TwoLayerNet[T]) Version() uint64 {
	return nn.version
}

// Param returns a copy of the named parameter.
func (nn *TwoLayerNet[T]) Param(name ParamName) *tensor.Dense {
	return clone(nn.params.Get(name))
}

// Update replaces the named parameter and invalidates the cached loss.
func (nn *TwoLayerNet[T]) Update(name ParamName, value *tensor.Dense) {
	nn.params.Set(name, value)
	nn.version++
}

// Predict returns softmax(sigmoid(x·W1 + B1)·W2 + B2) for a batch x of shape
// [batch, input]. The result has shape [batch, output].
func (nn *TwoLayerNet[T]) Predict(x *tensor.Dense) *tensor.Dense {
	nn.checkInput(x)
	return nn.params.predict(x, nn.hidden)
}

// Loss scores Predict(x) against t. The result is cached per parameter
// version and per (x, t) pair of tensors, compared by identity: a batch
// edited in place after a call must be followed by ResetLoss or passed as
// new tensors.
func (nn *TwoLayerNet[T]) Loss(x, t *tensor.Dense) float64 {
	c := &nn.cache
	if c.valid && c.version == nn.version && c.x == x && c.t == t {
		return c.value
	}
	nn.checkInput(x)
	value := nn.evaluate(nn.params, x, t)
	*c = lossCache{valid: true, version: nn.version, x: x, t: t, value: value}
	return value
}

// ResetLoss drops the cached loss.
func (nn *TwoLayerNet[T]) ResetLoss() {
	nn.cache = lossCache{}
}

// Classify returns the predicted class of every row of x.
func (nn *TwoLayerNet[T]) Classify(x *tensor.Dense) []int {
	return ArgmaxRows[T](nn.Predict(x))
}

// Accuracy returns the fraction of rows whose predicted class matches t,
// one-hot or class-index. Ties in either argmax go to the lowest index.
func (nn *TwoLayerNet[T]) Accuracy(x, t *tensor.Dense) float64 {
	pred := nn.Classify(x)
	truth := Labels[T](t, nn.outputSize)
	if len(pred) != len(truth) {
		panic(fmt.Sprintf("Accuracy: %d predictions for %d targets", len(pred), len(truth)))
	}
	if len(pred) == 0 {
		return 0
	}
	hits := 0
	for i := range pred {
		if pred[i] == truth[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(pred))
}

// NumericalGradient estimates the loss gradient on (x, t) for every
// parameter. Each sweep evaluates candidates against an immutable snapshot
// of the other parameters, so the network itself is left untouched.
func (nn *TwoLayerNet[T]) NumericalGradient(x, t *tensor.Dense) *Params[T] {
	nn.checkInput(x)
	snapshot := *nn.params
	grads := &Params[T]{}
	sweep := func(name ParamName) {
		loss := func(candidate *tensor.Dense) float64 {
			return nn.evaluate(snapshot.With(name, candidate), x, t)
		}
		grads.Set(name, NumericalGradient[T](loss, snapshot.Get(name)))
	}

	if !nn.parallel {
		for _, name := range ParamNames {
			sweep(name)
		}
		return grads
	}

	var wg sync.WaitGroup
	for _, name := range ParamNames {
		wg.Add(1)
		go func(name ParamName) {
			defer wg.Done()
			sweep(name)
		}(name)
	}
	wg.Wait()
	return grads
}

func (nn *TwoLayerNet[T]) evaluate(p *Params[T], x, t *tensor.Dense) float64 {
	return nn.loss.Compute(p.predict(x, nn.hidden), t)
}

func (nn *TwoLayerNet[T]) checkInput(x *tensor.Dense) {
	if _, cols := mustMatrix("TwoLayerNet", x); cols != nn.inputSize {
		panic(fmt.Sprintf("TwoLayerNet: input shape %v, want (*, %d)", x.Shape(), nn.inputSize))
	}
}

// String summarizes the parameter shapes.
func (nn *TwoLayerNet[T]) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("TwoLayerNet[%v] %d-%d-%d\n", DtypeOf[T](), nn.inputSize, nn.hiddenSize, nn.outputSize))
	for _, name := range ParamNames {
		sb.WriteString(fmt.Sprintf("  %s: %v\n", name, nn.params.Get(name).Shape()))
	}
	return sb.String()
}
