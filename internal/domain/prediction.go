package domain

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/smartcity/parking/pkg/utils"
)

// Confidence grades how much of a prediction rests on direct history
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ConfidenceFromRatio maps a lag fallback ratio to a confidence grade
func ConfidenceFromRatio(ratio float64) Confidence {
	switch {
	case ratio <= 0:
		return ConfidenceHigh
	case ratio >= 1:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

// Score returns the numeric confidence shown to clients
func (c Confidence) Score() float64 {
	switch c {
	case ConfidenceHigh:
		return 0.9
	case ConfidenceMedium:
		return 0.7
	default:
		return 0.4
	}
}

// AvailabilityLevel buckets an occupancy rate for display
func AvailabilityLevel(rate float64) string {
	switch {
	case rate < 0.60:
		return "High"
	case rate < 0.85:
		return "Medium"
	default:
		return "Low"
	}
}

// Prediction is the engine output for one zone and instant
type Prediction struct {
	Zone          Zone
	Target        time.Time
	Rate          float64
	Confidence    Confidence
	FallbackRatio float64
	IsFallback    bool // model unavailable, zone average served instead
}

// AvailableSpaces returns the predicted number of free spaces
func (p Prediction) AvailableSpaces() int {
	occupied := int(math.Round(p.Rate * float64(p.Zone.Capacity)))
	if occupied > p.Zone.Capacity {
		occupied = p.Zone.Capacity
	}
	return p.Zone.Capacity - occupied
}

// PredictionRequest represents input for a prediction.
// Either Timestamp or Date (+ Hour) must be set.
type PredictionRequest struct {
	ZoneID    int    `json:"zone_id"`
	Timestamp string `json:"timestamp,omitempty"`
	Date      string `json:"date,omitempty"`
	Hour      *int   `json:"hour,omitempty"`
}

// TargetTime resolves the instant being predicted
func (r PredictionRequest) TargetTime() (time.Time, error) {
	if r.Timestamp != "" {
		return ParseTimestamp(r.Timestamp)
	}
	if r.Date == "" {
		return time.Time{}, errors.New("timestamp or date is required")
	}
	day, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", r.Date)
	}
	if r.Hour == nil {
		return time.Time{}, errors.New("hour is required with date")
	}
	if *r.Hour < 0 || *r.Hour > 23 {
		return time.Time{}, fmt.Errorf("hour must be in 0..23, got %d", *r.Hour)
	}
	return day.Add(time.Duration(*r.Hour) * time.Hour), nil
}

// PredictionResponse represents prediction output
type PredictionResponse struct {
	ZoneID             int     `json:"zone_id"`
	ZoneCode           string  `json:"zone_code"`
	Timestamp          string  `json:"timestamp"`
	PredictedOccupancy float64 `json:"predicted_occupancy"`
	OccupancyRate      float64 `json:"occupancy_rate"`
	Confidence         string  `json:"confidence"`
	ConfidenceScore    float64 `json:"confidence_score"`
	AvailableSpaces    int     `json:"available_spaces"`
	TotalSpaces        int     `json:"total_spaces"`
	AvailabilityLevel  string  `json:"availability_level"`
	FallbackRatio      float64 `json:"fallback_ratio"`
	IsFallback         bool    `json:"is_fallback"`
}

// NewPredictionResponse renders a prediction for the API
func NewPredictionResponse(p Prediction) PredictionResponse {
	return PredictionResponse{
		ZoneID:             p.Zone.ID,
		ZoneCode:           p.Zone.Code,
		Timestamp:          FormatTimestamp(p.Target),
		PredictedOccupancy: utils.RoundTo(p.Rate*100, 1),
		OccupancyRate:      p.Rate,
		Confidence:         string(p.Confidence),
		ConfidenceScore:    p.Confidence.Score(),
		AvailableSpaces:    p.AvailableSpaces(),
		TotalSpaces:        p.Zone.Capacity,
		AvailabilityLevel:  AvailabilityLevel(p.Rate),
		FallbackRatio:      p.FallbackRatio,
		IsFallback:         p.IsFallback,
	}
}
