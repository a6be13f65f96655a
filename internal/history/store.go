// Package history holds the in-memory, time-indexed table of past occupancy
// observations. A Store is built once at startup and is read-only afterwards,
// so concurrent readers need no locking.
package history

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/smartcity/parking/internal/domain"
)

// series is the sorted observation list of one zone with its precomputed statistics
type series struct {
	obs  []domain.Observation
	mean float64
	std  float64
}

// Store is an immutable per-zone index of observations
type Store struct {
	series map[string]*series
	codes  []string
	total  int
}

// NewStore groups observations by zone and sorts each group by timestamp.
// Input order does not matter. Any invalid observation or a repeated
// (zone, timestamp) pair fails the whole load.
func NewStore(observations []domain.Observation) (*Store, error) {
	grouped := make(map[string][]domain.Observation)
	for i, o := range observations {
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("history: observation %d: %w", i, err)
		}
		grouped[o.ZoneCode] = append(grouped[o.ZoneCode], o)
	}

	s := &Store{series: make(map[string]*series, len(grouped))}
	for code, obs := range grouped {
		sort.SliceStable(obs, func(i, j int) bool {
			return obs[i].Timestamp.Before(obs[j].Timestamp)
		})
		rates := make([]float64, len(obs))
		for i, o := range obs {
			if i > 0 && o.Timestamp.Equal(obs[i-1].Timestamp) {
				return nil, fmt.Errorf("history: %w: duplicate observation for %s at %s",
					domain.ErrMalformedData, code, domain.FormatTimestamp(o.Timestamp))
			}
			rates[i] = o.OccupancyRate
		}

		mean, std := stat.MeanStdDev(rates, nil)
		if len(rates) < 2 || math.IsNaN(std) {
			std = 0
		}
		s.series[code] = &series{obs: obs, mean: mean, std: std}
		s.codes = append(s.codes, code)
		s.total += len(obs)
	}
	sort.Strings(s.codes)
	return s, nil
}

// Load decodes a JSON array of observation records and builds a Store
func Load(r io.Reader) (*Store, error) {
	var records []domain.ObservationRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("history: %w: failed to decode records: %v", domain.ErrMalformedData, err)
	}

	observations := make([]domain.Observation, 0, len(records))
	for i, rec := range records {
		o, err := rec.Observation()
		if err != nil {
			return nil, fmt.Errorf("history: record %d: %w", i, err)
		}
		observations = append(observations, o)
	}
	return NewStore(observations)
}

// LoadFile opens path and loads it with Load
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("history: failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

func (s *Store) lookup(code string) (*series, error) {
	ser, ok := s.series[code]
	if !ok || len(ser.obs) == 0 {
		return nil, fmt.Errorf("history: zone %s: %w", code, domain.ErrEmptySeries)
	}
	return ser, nil
}

// RangeFor returns the first and last observation timestamps of a zone
func (s *Store) RangeFor(code string) (time.Time, time.Time, error) {
	ser, err := s.lookup(code)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return ser.obs[0].Timestamp, ser.obs[len(ser.obs)-1].Timestamp, nil
}

// Range returns the earliest and latest timestamps across all zones.
// Both are zero for an empty store.
func (s *Store) Range() (time.Time, time.Time) {
	var start, end time.Time
	for _, ser := range s.series {
		first, last := ser.obs[0].Timestamp, ser.obs[len(ser.obs)-1].Timestamp
		if start.IsZero() || first.Before(start) {
			start = first
		}
		if end.IsZero() || last.After(end) {
			end = last
		}
	}
	return start, end
}

// LookupNear returns the observation closest to ts within tolerance. Ties go
// to the earlier observation. The boolean is false when nothing lies in the
// window, including when ts is outside the zone's range.
func (s *Store) LookupNear(code string, ts time.Time, tolerance time.Duration) (domain.Observation, bool) {
	ser, ok := s.series[code]
	if !ok {
		return domain.Observation{}, false
	}
	if tolerance < 0 {
		tolerance = 0
	}

	obs := ser.obs
	lo := ts.Add(-tolerance)
	i := sort.Search(len(obs), func(i int) bool {
		return !obs[i].Timestamp.Before(lo)
	})

	best := -1
	var bestDiff time.Duration
	for ; i < len(obs); i++ {
		diff := obs[i].Timestamp.Sub(ts)
		if diff > tolerance {
			break
		}
		if diff < 0 {
			diff = -diff
		}
		if best < 0 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	if best < 0 {
		return domain.Observation{}, false
	}
	return obs[best], true
}

// ZoneAverage returns the mean occupancy rate over the zone's whole series
func (s *Store) ZoneAverage(code string) (float64, error) {
	ser, err := s.lookup(code)
	if err != nil {
		return 0, err
	}
	return ser.mean, nil
}

// ZoneStdDev returns the sample standard deviation of the zone's occupancy rate
func (s *Store) ZoneStdDev(code string) (float64, error) {
	ser, err := s.lookup(code)
	if err != nil {
		return 0, err
	}
	return ser.std, nil
}

// Series returns a copy of the zone's observations in timestamp order
func (s *Store) Series(code string) []domain.Observation {
	ser, ok := s.series[code]
	if !ok {
		return nil
	}
	out := make([]domain.Observation, len(ser.obs))
	copy(out, ser.obs)
	return out
}

// Zones returns the stored zone codes in sorted order
func (s *Store) Zones() []string {
	out := make([]string, len(s.codes))
	copy(out, s.codes)
	return out
}

// Len returns the total number of stored observations
func (s *Store) Len() int { return s.total }
