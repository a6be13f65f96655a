package domain

import "time"

// TimeBucket classifies an hour of day
type TimeBucket int

const (
	BucketOther TimeBucket = iota
	BucketRush
	BucketLunch
	BucketNight
)

// String returns the bucket label
func (b TimeBucket) String() string {
	switch b {
	case BucketRush:
		return "rush"
	case BucketLunch:
		return "lunch"
	case BucketNight:
		return "night"
	default:
		return "other"
	}
}

// TimeBucketFor returns the bucket of an hour. Buckets never overlap:
// rush 07-09 and 17-19, lunch 11-14, night 20-06 across midnight.
func TimeBucketFor(hour int) TimeBucket {
	switch {
	case hour >= 7 && hour <= 9: // Morning rush
		return BucketRush
	case hour >= 11 && hour <= 14: // Lunch
		return BucketLunch
	case hour >= 17 && hour <= 19: // Evening rush
		return BucketRush
	case hour >= 20 || hour <= 6: // Night
		return BucketNight
	default:
		return BucketOther
	}
}

// IsWeekend reports whether t falls on Saturday or Sunday
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DayOfWeek returns 0 for Monday through 6 for Sunday
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Feature names, in vector order
const (
	FeatureHour      = "hour"
	FeatureDayOfWeek = "day_of_week"
	FeatureIsWeekend = "is_weekend"
	FeatureBucket    = "time_bucket"
	FeatureLag1h     = "lag_1h"
	FeatureLag24h    = "lag_24h"
	FeatureLag168h   = "lag_168h"
	FeatureZoneAvg   = "zone_avg"
	FeatureZoneStd   = "zone_std"
)

// FeatureNames is the fixed order of a FeatureVector
var FeatureNames = []string{
	FeatureHour,
	FeatureDayOfWeek,
	FeatureIsWeekend,
	FeatureBucket,
	FeatureLag1h,
	FeatureLag24h,
	FeatureLag168h,
	FeatureZoneAvg,
	FeatureZoneStd,
}

// FeatureVector is the point-in-time input of a prediction
type FeatureVector struct {
	ZoneCode      string    `json:"zone_code"`
	Target        time.Time `json:"target"`
	Values        []float64 `json:"values"`
	FallbackRatio float64   `json:"fallback_ratio"`
}

// Get returns the value of a named feature
func (v FeatureVector) Get(name string) (float64, bool) {
	for i, n := range FeatureNames {
		if n == name && i < len(v.Values) {
			return v.Values[i], true
		}
	}
	return 0, false
}
