// Package dataset decodes labelled image sets into input and target tensors.
// Pixels are scaled to [0, 1].
package dataset

import (
	"fmt"

	"gorgonia.org/tensor"
)

// Dataset pairs inputs of shape [N, features] with targets of shape
// [N, classes] (one-hot) or [N, 1] (class labels).
type Dataset struct {
	Inputs  *tensor.Dense
	Targets *tensor.Dense
	Classes int
}

// Len returns the number of examples.
func (d *Dataset) Len() int {
	return d.Inputs.Shape()[0]
}

// Features returns the number of input columns.
func (d *Dataset) Features() int {
	return d.Inputs.Shape()[1]
}

// New assembles a dataset from row-major features and integer labels.
func New(features []float64, labels []int, classes int, oneHot bool) (*Dataset, error) {
	n := len(labels)
	if n == 0 {
		return nil, fmt.Errorf("dataset: no examples")
	}
	if classes <= 0 {
		return nil, fmt.Errorf("dataset: invalid class count %d", classes)
	}
	if len(features)%n != 0 {
		return nil, fmt.Errorf("dataset: %d feature values do not split into %d rows", len(features), n)
	}
	for i, l := range labels {
		if l < 0 || l >= classes {
			return nil, fmt.Errorf("dataset: label %d at row %d out of range [0, %d)", l, i, classes)
		}
	}

	var targets *tensor.Dense
	if oneHot {
		targets = OneHotEncode(labels, classes)
	} else {
		column := make([]float64, n)
		for i, l := range labels {
			column[i] = float64(l)
		}
		targets = tensor.New(tensor.WithShape(n, 1), tensor.WithBacking(column))
	}
	return &Dataset{
		Inputs:  tensor.New(tensor.WithShape(n, len(features)/n), tensor.WithBacking(features)),
		Targets: targets,
		Classes: classes,
	}, nil
}

// OneHotEncode returns a [len(labels), numClasses] matrix with a single 1 per row.
func OneHotEncode(labels []int, numClasses int) *tensor.Dense {
	numLabels := len(labels)
	norm := make([]float64, numLabels*numClasses)

	for i, label := range labels {
		norm[i*numClasses+label] = 1.0
	}

	return tensor.New(tensor.WithShape(numLabels, numClasses), tensor.WithBacking(norm))
}

func scalePixels(dst []float64, src []byte) {
	for i, b := range src {
		dst[i] = float64(b) / 255.0
	}
}
