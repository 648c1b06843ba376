package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/orbitsim/internal/simstate"
)

var components = [...]string{"rx", "ry", "rz", "vx", "vy", "vz"}

// ExportCSV writes every stride-th row of sim as CSV: time followed by the
// six state components of every body. names labels the bodies; missing
// names fall back to their index.
func ExportCSV(w io.Writer, sim *simstate.File, names []string, stride int) error {
	if stride < 1 {
		stride = 1
	}
	cw := csv.NewWriter(w)

	n := sim.Bodies()
	header := []string{"time"}
	for b := 0; b < n; b++ {
		label := strconv.Itoa(b)
		if b < len(names) && names[b] != "" {
			label = names[b]
		}
		for _, c := range components {
			header = append(header, fmt.Sprintf("%s_%s", label, c))
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	times := sim.Times()
	record := make([]string, 1+6*n)
	for s := 0; s < sim.Steps(); s += stride {
		record[0] = strconv.FormatFloat(times[s], 'g', -1, 64)
		for i, v := range sim.State(s) {
			record[1+i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportJSON writes run metadata as indented JSON.
func ExportJSON(w io.Writer, meta *RunMetadata) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(meta)
}
