package service

import (
	"fmt"
	"time"

	"github.com/smartcity/parking/internal/domain"
)

// LagTolerance is the window searched around each lag timestamp
const LagTolerance = 30 * time.Minute

// LagOffsets are the lag distances, in FeatureVector order
var LagOffsets = []time.Duration{
	time.Hour,
	24 * time.Hour,
	168 * time.Hour,
}

// SeriesStore is the read side of the historical store used for features
type SeriesStore interface {
	LookupNear(code string, ts time.Time, tolerance time.Duration) (domain.Observation, bool)
	ZoneAverage(code string) (float64, error)
	ZoneStdDev(code string) (float64, error)
}

// FeatureExtractor builds point-in-time feature vectors from history
type FeatureExtractor struct {
	registry *ZoneRegistry
	store    SeriesStore
}

// NewFeatureExtractor creates a new feature extractor
func NewFeatureExtractor(registry *ZoneRegistry, store SeriesStore) *FeatureExtractor {
	return &FeatureExtractor{registry: registry, store: store}
}

// ExtractForZone resolves a zone id and extracts its features at target
func (e *FeatureExtractor) ExtractForZone(id int, target time.Time) (domain.Zone, domain.FeatureVector, error) {
	zone, err := e.registry.Resolve(id)
	if err != nil {
		return domain.Zone{}, domain.FeatureVector{}, err
	}
	fv, err := e.Extract(zone.Code, target)
	if err != nil {
		return domain.Zone{}, domain.FeatureVector{}, err
	}
	return zone, fv, nil
}

// Extract computes the feature vector of a zone at target.
//
// A lag whose timestamp has no observation within LagTolerance takes the
// zone's overall average instead. Far beyond the end of the history every lag
// falls back, so vectors for one zone then differ only in calendar features.
// FallbackRatio reports the share of lags that fell back.
func (e *FeatureExtractor) Extract(code string, target time.Time) (domain.FeatureVector, error) {
	if _, err := e.registry.ResolveCode(code); err != nil {
		return domain.FeatureVector{}, err
	}
	avg, err := e.store.ZoneAverage(code)
	if err != nil {
		return domain.FeatureVector{}, fmt.Errorf("features: %w", err)
	}
	std, err := e.store.ZoneStdDev(code)
	if err != nil {
		return domain.FeatureVector{}, fmt.Errorf("features: %w", err)
	}

	values := make([]float64, 0, len(domain.FeatureNames))
	values = append(values, calendarFeatures(target)...)

	fallbacks := 0
	for _, offset := range LagOffsets {
		if o, ok := e.store.LookupNear(code, target.Add(-offset), LagTolerance); ok {
			values = append(values, o.OccupancyRate)
			continue
		}
		values = append(values, avg)
		fallbacks++
	}
	values = append(values, avg, std)

	return domain.FeatureVector{
		ZoneCode:      code,
		Target:        target,
		Values:        values,
		FallbackRatio: float64(fallbacks) / float64(len(LagOffsets)),
	}, nil
}

func calendarFeatures(t time.Time) []float64 {
	weekend := 0.0
	if domain.IsWeekend(t) {
		weekend = 1
	}
	return []float64{
		float64(t.Hour()),
		float64(domain.DayOfWeek(t)),
		weekend,
		float64(domain.TimeBucketFor(t.Hour())),
	}
}
