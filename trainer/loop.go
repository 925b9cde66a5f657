package trainer

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"gorgonia.org/tensor"

	"fdnet/metrics"
	"fdnet/neuralnet"
)

// RunConfig captures the knobs required by the training loop.
type RunConfig struct {
	Iterations int
	BatchSize  int
	LogEvery   int
	Seed       int64
	// Logger receives progress lines; nil means log.Default().
	Logger *log.Logger
}

// Result is what a finished run reports.
type Result struct {
	History History
	Elapsed time.Duration
}

// Run trains net for a fixed number of iterations. Each iteration samples a
// batch without replacement, estimates the gradient numerically, applies it
// through opt, then records loss and accuracy on the same batch.
func Run[T neuralnet.Float](net *neuralnet.TwoLayerNet[T], opt neuralnet.Optimizer[T], inputs, targets *tensor.Dense, cfg RunConfig) (*Result, error) {
	if cfg.Iterations <= 0 {
		return nil, errors.New("trainer: iterations must be > 0")
	}
	if cfg.BatchSize <= 0 {
		return nil, errors.New("trainer: batch size must be > 0")
	}
	if n := inputs.Shape()[0]; cfg.BatchSize > n {
		return nil, fmt.Errorf("trainer: batch size %d exceeds %d training examples", cfg.BatchSize, n)
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = 50
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	var window metrics.Window
	res := &Result{
		History: History{
			Loss:     make([]float64, 0, cfg.Iterations),
			Accuracy: make([]float64, 0, cfg.Iterations),
		},
	}
	start := time.Now()

	for step := 1; step <= cfg.Iterations; step++ {
		batch, err := SampleBatch[T](rng, inputs, targets, cfg.BatchSize)
		if err != nil {
			return nil, fmt.Errorf("trainer: step %d: %w", step, err)
		}

		startCompute := time.Now()
		net.ResetLoss()
		grads := net.NumericalGradient(batch.Inputs, batch.Targets)
		if err := opt.Apply(net, grads); err != nil {
			return nil, fmt.Errorf("trainer: step %d: %w", step, err)
		}
		loss := net.Loss(batch.Inputs, batch.Targets)
		accuracy := net.Accuracy(batch.Inputs, batch.Targets)
		computeTime := time.Since(startCompute)

		window.Record(cfg.BatchSize, computeTime, loss, accuracy)
		res.History.append(loss, accuracy)

		if step%cfg.LogEvery == 0 || step == cfg.Iterations {
			snap := window.Snapshot()
			logger.Printf("step=%d/%d loss=%.4f mean_loss=%.4f accuracy=%.3f examples_per_sec=%.1f compute_ms=%.2f",
				step,
				cfg.Iterations,
				snap.LastLoss,
				snap.MeanLoss,
				snap.LastAccuracy,
				snap.ExamplesPerSec,
				snap.AvgComputeMS,
			)
		}
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

// Evaluation scores a network on a held-out set.
type Evaluation struct {
	Loss     float64
	Accuracy float64
	PerClass []float64
}

// Evaluate computes loss, accuracy and per-class accuracy on (inputs, targets).
func Evaluate[T neuralnet.Float](net *neuralnet.TwoLayerNet[T], inputs, targets *tensor.Dense) Evaluation {
	predicted := net.Classify(inputs)
	actual := neuralnet.Labels[T](targets, net.OutputSize())
	return Evaluation{
		Loss:     net.Loss(inputs, targets),
		Accuracy: net.Accuracy(inputs, targets),
		PerClass: metrics.PerClassAccuracy(predicted, actual, net.OutputSize()),
	}
}
