package trainer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// History is the per-iteration record of a run.
type History struct {
	Loss     []float64
	Accuracy []float64
}

func (h *History) append(loss, accuracy float64) {
	h.Loss = append(h.Loss, loss)
	h.Accuracy = append(h.Accuracy, accuracy)
}

// WriteHistoryCSV writes one "iteration,loss,accuracy" row per iteration.
func WriteHistoryCSV(w io.Writer, h History) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"iteration", "loss", "accuracy"}); err != nil {
		return err
	}
	for i, loss := range h.Loss {
		record := []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%.6f", loss),
			fmt.Sprintf("%.4f", h.Accuracy[i]),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
