package dataset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func idx(header []uint32, body []byte) []byte {
	var buf bytes.Buffer
	for _, h := range header {
		_ = binary.Write(&buf, binary.BigEndian, h)
	}
	buf.Write(body)
	return buf.Bytes()
}

func TestLoadMNIST(t *testing.T) {
	images := writeFile(t, "images.idx", idx([]uint32{2051, 3, 2, 2}, []byte{
		0, 255, 0, 0,
		255, 255, 255, 255,
		51, 0, 0, 102,
	}))
	labels := writeFile(t, "labels.idx", idx([]uint32{2049, 3}, []byte{7, 0, 9}))

	d, err := LoadMNIST(images, labels, 0, true)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())
	assert.Equal(t, 4, d.Features())
	assert.Equal(t, []int{3, 10}, []int(d.Targets.Shape()))

	x := d.Inputs.Data().([]float64)
	assert.Equal(t, []float64{0, 1, 0, 0}, x[:4])
	assert.InDelta(t, 0.2, x[8], 1e-12)
	assert.InDelta(t, 0.4, x[11], 1e-12)

	tv := d.Targets.Data().([]float64)
	assert.Equal(t, 1.0, tv[7])
	assert.Equal(t, 1.0, tv[10])
	assert.Equal(t, 1.0, tv[29])

	limited, err := LoadMNIST(images, labels, 2, false)
	require.NoError(t, err)
	assert.Equal(t, 2, limited.Len())
	assert.Equal(t, []float64{7, 0}, limited.Targets.Data().([]float64))
}

func TestLoadMNISTBadMagic(t *testing.T) {
	images := writeFile(t, "images.idx", idx([]uint32{2049, 1, 1, 1}, []byte{0}))
	labels := writeFile(t, "labels.idx", idx([]uint32{2049, 1}, []byte{0}))
	_, err := LoadMNIST(images, labels, 0, true)
	assert.ErrorContains(t, err, "invalid magic number")
}

func TestLoadMNISTCountMismatch(t *testing.T) {
	images := writeFile(t, "images.idx", idx([]uint32{2051, 2, 1, 1}, []byte{0, 1}))
	labels := writeFile(t, "labels.idx", idx([]uint32{2049, 1}, []byte{0}))
	_, err := LoadMNIST(images, labels, 0, true)
	assert.Error(t, err)
}

func cifarRecord(label byte, fill byte) []byte {
	rec := bytes.Repeat([]byte{fill}, Row)
	rec[0] = label
	return rec
}

func TestLoadCIFAR10(t *testing.T) {
	data := append(cifarRecord(3, 255), cifarRecord(8, 0)...)
	path := writeFile(t, "data_batch_1.bin", data)

	d, err := LoadCIFAR10(path, 0, false)
	require.NoError(t, err)
	require.Equal(t, 2, d.Len())
	assert.Equal(t, ImageSize, d.Features())
	assert.Equal(t, []float64{3, 8}, d.Targets.Data().([]float64))

	x := d.Inputs.Data().([]float64)
	assert.Equal(t, 1.0, x[0])
	assert.Equal(t, 1.0, x[ImageSize-1])
	assert.Equal(t, 0.0, x[ImageSize])

	one, err := LoadCIFAR10(path, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 1, one.Len())
}

func TestLoadCIFAR10Truncated(t *testing.T) {
	path := writeFile(t, "short.bin", cifarRecord(1, 0)[:100])
	_, err := LoadCIFAR10(path, 0, true)
	assert.ErrorContains(t, err, "truncated")
}

func TestReadLabelNames(t *testing.T) {
	path := writeFile(t, "batches.meta.txt", []byte("airplane\nautomobile\n\nbird\n"))
	names, err := ReadLabelNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"airplane", "automobile", "bird"}, names)
}

func TestOneHotEncode(t *testing.T) {
	out := OneHotEncode([]int{2, 0}, 3)
	assert.Equal(t, []int{2, 3}, []int(out.Shape()))
	assert.Equal(t, []float64{0, 0, 1, 1, 0, 0}, out.Data().([]float64))
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(nil, nil, 3, true)
	assert.Error(t, err)
	_, err = New([]float64{1, 2, 3}, []int{0, 1}, 3, true)
	assert.Error(t, err)
	_, err = New([]float64{1, 2}, []int{0, 3}, 3, true)
	assert.Error(t, err)
}

func TestBlobs(t *testing.T) {
	d, err := Blobs(90, 4, 3, 0.05, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 90, d.Len())
	assert.Equal(t, 4, d.Features())

	counts := make([]int, 3)
	tv := d.Targets.Data().([]float64)
	for r := 0; r < 90; r++ {
		for c := 0; c < 3; c++ {
			if tv[r*3+c] == 1 {
				counts[c]++
			}
		}
	}
	assert.Equal(t, []int{30, 30, 30}, counts)
	for _, v := range d.Inputs.Data().([]float64) {
		assert.True(t, v >= 0 && v <= 1)
	}

	_, err = Blobs(0, 4, 3, 0.05, 1, true)
	assert.Error(t, err)
}

func TestBlobsSplitIsDisjoint(t *testing.T) {
	train, test, err := BlobsSplit(300, 61, 8, 3, 0.1, 42, false)
	require.NoError(t, err)
	assert.Equal(t, 300, train.Len())
	assert.Equal(t, 61, test.Len())
	assert.Equal(t, []int{61, 1}, []int(test.Targets.Shape()))

	key := func(row []float64) string { return fmt.Sprint(row) }
	seen := make(map[string]bool, train.Len())
	tx := train.Inputs.Data().([]float64)
	for r := 0; r < train.Len(); r++ {
		seen[key(tx[r*8:(r+1)*8])] = true
	}
	shared := 0
	ex := test.Inputs.Data().([]float64)
	for r := 0; r < test.Len(); r++ {
		if seen[key(ex[r*8:(r+1)*8])] {
			shared++
		}
	}
	assert.Zero(t, shared)

	_, _, err = BlobsSplit(300, 0, 8, 3, 0.1, 42, true)
	assert.Error(t, err)
}

func TestLoadMNISTRejectsCorruptHeader(t *testing.T) {
	labels := writeFile(t, "labels.idx", idx([]uint32{2049, 1}, []byte{0}))

	huge := writeFile(t, "huge.idx", idx([]uint32{2051, 1, 1 << 31, 1 << 31}, []byte{0}))
	_, err := LoadMNIST(huge, labels, 0, true)
	assert.ErrorContains(t, err, "invalid image size")

	short := writeFile(t, "short.idx", idx([]uint32{2051, 1 << 30, 28, 28}, []byte{0, 1, 2}))
	_, err = LoadMNIST(short, labels, 0, true)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	shortLabels := writeFile(t, "short-labels.idx", idx([]uint32{2049, 1 << 30}, []byte{0}))
	images := writeFile(t, "images.idx", idx([]uint32{2051, 1, 1, 1}, []byte{0}))
	_, err = LoadMNIST(images, shortLabels, 0, true)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
