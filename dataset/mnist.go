package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
	mnistClasses   = 10

	// Largest accepted image side; larger headers are treated as corrupt.
	maxIDXSide = 1 << 12
)

// LoadMNIST reads an IDX image file and its IDX label file. A positive limit
// keeps only the first limit examples.
func LoadMNIST(imagesPath, labelsPath string, limit int, oneHot bool) (*Dataset, error) {
	images, err := os.Open(imagesPath)
	if err != nil {
		return nil, err
	}
	defer images.Close()

	labelFile, err := os.Open(labelsPath)
	if err != nil {
		return nil, err
	}
	defer labelFile.Close()

	pixels, count, err := readIDXImages(images, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", imagesPath, err)
	}
	labels, err := readIDXLabels(labelFile, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", labelsPath, err)
	}
	if len(labels) != count {
		return nil, fmt.Errorf("mnist: %d images but %d labels", count, len(labels))
	}

	features := make([]float64, len(pixels))
	scalePixels(features, pixels)
	return New(features, labels, mnistClasses, oneHot)
}

// readIDXImages decodes
//
//	magic 2051 | count | rows | cols | count*rows*cols unsigned bytes
func readIDXImages(r io.Reader, limit int) (pixels []byte, count int, err error) {
	var header [4]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}
	if header[0] != idxImagesMagic {
		return nil, 0, fmt.Errorf("invalid magic number: got %d, want %d", header[0], idxImagesMagic)
	}
	rows, cols := int(header[2]), int(header[3])
	if rows == 0 || cols == 0 || rows > maxIDXSide || cols > maxIDXSide {
		return nil, 0, fmt.Errorf("invalid image size %dx%d", rows, cols)
	}
	count = clampCount(int(header[1]), limit)

	pixels, err = readExactly(r, int64(count)*int64(rows*cols))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read %d images: %w", count, err)
	}
	return pixels, count, nil
}

// readExactly reads n bytes, growing the buffer only as data arrives so a
// corrupt header cannot force a large allocation.
func readExactly(r io.Reader, n int64) ([]byte, error) {
	buf, err := io.ReadAll(io.LimitReader(r, n))
	if err != nil {
		return nil, err
	}
	if int64(len(buf)) != n {
		return nil, fmt.Errorf("%w: got %d of %d bytes", io.ErrUnexpectedEOF, len(buf), n)
	}
	return buf, nil
}

// readIDXLabels decodes
//
//	magic 2049 | count | count unsigned bytes
func readIDXLabels(r io.Reader, limit int) ([]int, error) {
	var header [2]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if header[0] != idxLabelsMagic {
		return nil, fmt.Errorf("invalid magic number: got %d, want %d", header[0], idxLabelsMagic)
	}

	raw, err := readExactly(r, int64(clampCount(int(header[1]), limit)))
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	labels := make([]int, len(raw))
	for i, b := range raw {
		labels[i] = int(b)
	}
	return labels, nil
}

func clampCount(count, limit int) int {
	if limit > 0 && limit < count {
		return limit
	}
	return count
}
