package metrics

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Window accumulates timing and loss stats across multiple steps.
type Window struct {
	examples     int
	compute      time.Duration
	steps        int
	lossSum      float64
	lastLoss     float64
	lastAccuracy float64
}

// Record adds a new measurement to the window.
func (w *Window) Record(batchSize int, computeTime time.Duration, loss, accuracy float64) {
	w.examples += batchSize
	w.compute += computeTime
	w.steps++
	w.lossSum += loss
	w.lastLoss = loss
	w.lastAccuracy = accuracy
}

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{}
	if w.compute > 0 {
		snap.ExamplesPerSec = float64(w.examples) / w.compute.Seconds()
	}
	if w.steps > 0 {
		snap.AvgComputeMS = (w.compute.Seconds() * 1000) / float64(w.steps)
		snap.MeanLoss = w.lossSum / float64(w.steps)
	}
	snap.LastLoss = w.lastLoss
	snap.LastAccuracy = w.lastAccuracy

	*w = Window{}
	return snap
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	ExamplesPerSec float64
	AvgComputeMS   float64
	MeanLoss       float64
	LastLoss       float64
	LastAccuracy   float64
}

// Summary describes a loss history.
type Summary struct {
	First  float64
	Last   float64
	Min    float64
	Mean   float64
	StdDev float64
}

// Summarize reduces a history; an empty history yields the zero Summary.
func Summarize(history []float64) Summary {
	if len(history) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(history, nil)
	if len(history) == 1 {
		std = 0
	}
	return Summary{
		First:  history[0],
		Last:   history[len(history)-1],
		Min:    floats.Min(history),
		Mean:   mean,
		StdDev: std,
	}
}

// PerClassAccuracy returns, per class, the fraction of examples of that class
// predicted correctly. Classes with no examples report -1.
func PerClassAccuracy(predicted, actual []int, classes int) []float64 {
	hits := make([]float64, classes)
	totals := make([]float64, classes)
	for i, want := range actual {
		if want < 0 || want >= classes {
			continue
		}
		totals[want]++
		if i < len(predicted) && predicted[i] == want {
			hits[want]++
		}
	}
	out := make([]float64, classes)
	for c := range out {
		if totals[c] == 0 {
			out[c] = -1
			continue
		}
		out[c] = hits[c] / totals[c]
	}
	return out
}
