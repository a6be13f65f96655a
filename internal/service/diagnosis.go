package service

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/smartcity/parking/internal/domain"
)

// HistorySource is the read access needed to walk a whole dataset
type HistorySource interface {
	SeriesStore
	Zones() []string
	Series(code string) []domain.Observation
	Range() (time.Time, time.Time)
}

// LagDiagnosis explains how a target instant is served for one zone
type LagDiagnosis struct {
	ZoneCode      string
	SlotRecords   int     // observations at the target's weekday and hour
	SlotMean      float64 // their mean occupancy rate
	SlotStdDev    float64
	LagMatches    []int // observations within LagTolerance of each lag, in LagOffsets order
	ZoneAverage   float64
	FallbackRatio float64
}

// Diagnosis summarises why predictions at a target may look alike
type Diagnosis struct {
	Target    time.Time
	DataStart time.Time
	DataEnd   time.Time
	// Gap24h is how far the 24h lag lies past the end of the data; negative
	// when it falls inside the history.
	Gap24h time.Duration
	Zones  []LagDiagnosis
}

// Collapsed reports whether every zone fell back on all lags
func (d Diagnosis) Collapsed() bool {
	if len(d.Zones) == 0 {
		return false
	}
	for _, z := range d.Zones {
		if z.FallbackRatio < 1 {
			return false
		}
	}
	return true
}

// Diagnose inspects lag coverage at target for the given zone codes, or for
// every zone with history when codes is empty.
func Diagnose(extractor *FeatureExtractor, src HistorySource, target time.Time, codes ...string) (Diagnosis, error) {
	if len(codes) == 0 {
		codes = src.Zones()
	}
	start, end := src.Range()
	d := Diagnosis{
		Target:    target,
		DataStart: start,
		DataEnd:   end,
		Gap24h:    target.Add(-24 * time.Hour).Sub(end),
	}

	for _, code := range codes {
		fv, err := extractor.Extract(code, target)
		if err != nil {
			return Diagnosis{}, fmt.Errorf("diagnose: %w", err)
		}
		z := LagDiagnosis{
			ZoneCode:      code,
			FallbackRatio: fv.FallbackRatio,
			LagMatches:    make([]int, len(LagOffsets)),
		}
		z.ZoneAverage, _ = fv.Get(domain.FeatureZoneAvg)

		series := src.Series(code)
		var slot []float64
		for _, o := range series {
			if o.Timestamp.Weekday() == target.Weekday() && o.Timestamp.Hour() == target.Hour() {
				slot = append(slot, o.OccupancyRate)
			}
			for i, off := range LagOffsets {
				diff := o.Timestamp.Sub(target.Add(-off))
				if diff >= -LagTolerance && diff <= LagTolerance {
					z.LagMatches[i]++
				}
			}
		}
		z.SlotRecords = len(slot)
		if len(slot) > 0 {
			z.SlotMean, z.SlotStdDev = stat.MeanStdDev(slot, nil)
			if len(slot) < 2 {
				z.SlotStdDev = 0
			}
		}
		d.Zones = append(d.Zones, z)
	}
	return d, nil
}
