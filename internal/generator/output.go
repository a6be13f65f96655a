package generator

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/smartcity/parking/internal/domain"
)

// WriteJSON writes observations as a JSON array of records, one per line,
// preserving the given order.
func WriteJSON(w io.Writer, observations []domain.Observation) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("["); err != nil {
		return fmt.Errorf("generator: write: %w", err)
	}
	for i, o := range observations {
		line, err := json.Marshal(domain.NewObservationRecord(o))
		if err != nil {
			return fmt.Errorf("generator: encode record %d: %w", i, err)
		}
		sep := ",\n  "
		if i == 0 {
			sep = "\n  "
		}
		if _, err := bw.WriteString(sep); err != nil {
			return fmt.Errorf("generator: write: %w", err)
		}
		if _, err := bw.Write(line); err != nil {
			return fmt.Errorf("generator: write: %w", err)
		}
	}
	if _, err := bw.WriteString("\n]\n"); err != nil {
		return fmt.Errorf("generator: write: %w", err)
	}
	return bw.Flush()
}

// ZoneSummary describes the generated distribution of one zone
type ZoneSummary struct {
	ZoneCode string
	Count    int
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
}

// Summarize computes per-zone statistics of occupancy rates, sorted by code
func Summarize(observations []domain.Observation) []ZoneSummary {
	rates := make(map[string][]float64)
	for _, o := range observations {
		rates[o.ZoneCode] = append(rates[o.ZoneCode], o.OccupancyRate)
	}

	out := make([]ZoneSummary, 0, len(rates))
	for code, xs := range rates {
		mean, std := stat.MeanStdDev(xs, nil)
		if len(xs) < 2 {
			std = 0
		}
		out = append(out, ZoneSummary{
			ZoneCode: code,
			Count:    len(xs),
			Mean:     mean,
			StdDev:   std,
			Min:      floats.Min(xs),
			Max:      floats.Max(xs),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ZoneCode < out[j].ZoneCode })
	return out
}
