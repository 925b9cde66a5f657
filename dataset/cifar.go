package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	ImageSize    = 32 * 32 * 3
	LabelSize    = 1
	Row          = LabelSize + ImageSize
	cifarClasses = 10
)

// LoadCIFAR10 reads a CIFAR-10 binary batch: records of one label byte
// followed by 3072 channel-major pixel bytes. A positive limit keeps only the
// first limit records.
func LoadCIFAR10(filePath string, limit int, oneHot bool) (*Dataset, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	features, labels, err := readCIFAR10(bufio.NewReader(file), limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return New(features, labels, cifarClasses, oneHot)
}

func readCIFAR10(r io.Reader, limit int) ([]float64, []int, error) {
	features := make([]float64, 0)
	labels := make([]int, 0)
	row := make([]byte, Row)
	for limit <= 0 || len(labels) < limit {
		_, err := io.ReadFull(r, row)
		if err != nil {
			if err == io.EOF {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, nil, fmt.Errorf("truncated record %d", len(labels))
			}
			return nil, nil, err
		}
		labels = append(labels, int(row[0]))

		norm := make([]float64, ImageSize)
		scalePixels(norm, row[LabelSize:])
		features = append(features, norm...)
	}
	return features, labels, nil
}

// ReadLabelNames reads one class name per line, e.g. CIFAR-10's
// batches.meta.txt. Blank lines are skipped.
func ReadLabelNames(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var words []string
	for scanner.Scan() {
		if w := strings.TrimSpace(scanner.Text()); w != "" {
			words = append(words, w)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}
