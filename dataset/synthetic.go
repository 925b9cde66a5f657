package dataset

import (
	"fmt"
	"math/rand"
)

// Blobs draws n examples from classes Gaussian clusters in [0, 1]^features.
// Cluster centres are drawn uniformly; spread is the per-axis std-dev.
// Values are clipped to [0, 1] like normalized pixels.
func Blobs(n, features, classes int, spread float64, seed int64, oneHot bool) (*Dataset, error) {
	data, labels, err := blobRows(n, features, classes, spread, seed)
	if err != nil {
		return nil, err
	}
	return New(data, labels, classes, oneHot)
}

// BlobsSplit draws trainN+testN examples from one set of clusters and splits
// them into disjoint train and test sets.
func BlobsSplit(trainN, testN, features, classes int, spread float64, seed int64, oneHot bool) (train, test *Dataset, err error) {
	if trainN <= 0 || testN <= 0 {
		return nil, nil, fmt.Errorf("blobs: invalid split train=%d test=%d", trainN, testN)
	}
	data, labels, err := blobRows(trainN+testN, features, classes, spread, seed)
	if err != nil {
		return nil, nil, err
	}
	cut := trainN * features
	train, err = New(data[:cut], labels[:trainN], classes, oneHot)
	if err != nil {
		return nil, nil, err
	}
	test, err = New(data[cut:], labels[trainN:], classes, oneHot)
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

func blobRows(n, features, classes int, spread float64, seed int64) ([]float64, []int, error) {
	if n <= 0 || features <= 0 || classes <= 0 {
		return nil, nil, fmt.Errorf("blobs: invalid sizes n=%d features=%d classes=%d", n, features, classes)
	}
	rng := rand.New(rand.NewSource(seed))
	centres := make([][]float64, classes)
	for c := range centres {
		centres[c] = make([]float64, features)
		for j := range centres[c] {
			centres[c][j] = rng.Float64()
		}
	}

	data := make([]float64, n*features)
	labels := make([]int, n)
	for i := range labels {
		c := i % classes
		labels[i] = c
		for j := 0; j < features; j++ {
			v := centres[c][j] + spread*rng.NormFloat64()
			data[i*features+j] = min(max(v, 0), 1)
		}
	}
	rng.Shuffle(n, func(a, b int) {
		labels[a], labels[b] = labels[b], labels[a]
		ra, rb := data[a*features:(a+1)*features], data[b*features:(b+1)*features]
		for j := range ra {
			ra[j], rb[j] = rb[j], ra[j]
		}
	})
	return data, labels, nil
}
