package domain

import (
	"fmt"
	"math"
	"time"
)

// TimestampLayout is the wire format of observation timestamps (no zone offset)
const TimestampLayout = "2006-01-02T15:04:05"

// RateTolerance is the rounding slack allowed on stored occupancy rates
const RateTolerance = 0.001

var timestampLayouts = []string{
	time.RFC3339Nano,
	TimestampLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without an offset are
// read as UTC wall-clock time.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// FormatTimestamp renders t in the observation wire format
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Observation is one hourly occupancy reading for a zone
type Observation struct {
	ZoneCode       string
	Timestamp      time.Time
	OccupiedSpaces int
	TotalSpaces    int
	OccupancyRate  float64
}

// Validate checks the field invariants of an observation.
//
// Occupied spaces are derived with floor(rate * total), so the stored rate may
// exceed occupied/total by up to one space's worth plus rounding.
func (o Observation) Validate() error {
	switch {
	case o.ZoneCode == "":
		return fmt.Errorf("%w: zone code is required", ErrMalformedData)
	case o.Timestamp.IsZero():
		return fmt.Errorf("%w: %s: timestamp is required", ErrMalformedData, o.ZoneCode)
	case o.TotalSpaces <= 0:
		return fmt.Errorf("%w: %s: total_spaces must be positive, got %d", ErrMalformedData, o.ZoneCode, o.TotalSpaces)
	case o.OccupiedSpaces < 0 || o.OccupiedSpaces > o.TotalSpaces:
		return fmt.Errorf("%w: %s: occupied_spaces %d outside [0,%d]", ErrMalformedData, o.ZoneCode, o.OccupiedSpaces, o.TotalSpaces)
	case math.IsNaN(o.OccupancyRate) || o.OccupancyRate < -RateTolerance || o.OccupancyRate > 1+RateTolerance:
		return fmt.Errorf("%w: %s: occupancy_rate %v outside [0,1]", ErrMalformedData, o.ZoneCode, o.OccupancyRate)
	}

	derived := float64(o.OccupiedSpaces) / float64(o.TotalSpaces)
	slack := 1/float64(o.TotalSpaces) + RateTolerance
	if math.Abs(o.OccupancyRate-derived) > slack {
		return fmt.Errorf("%w: %s at %s: occupancy_rate %.3f inconsistent with %d/%d",
			ErrMalformedData, o.ZoneCode, FormatTimestamp(o.Timestamp), o.OccupancyRate, o.OccupiedSpaces, o.TotalSpaces)
	}
	return nil
}

// ObservationRecord is the flat serialized form of an observation. Pointer
// fields distinguish a missing value from a zero value.
type ObservationRecord struct {
	ZoneCode       *string  `json:"blockface_id"`
	Datetime       *string  `json:"datetime"`
	OccupiedSpaces *int     `json:"occupied_spaces"`
	TotalSpaces    *int     `json:"total_spaces"`
	OccupancyRate  *float64 `json:"occupancy_rate"`
}

// NewObservationRecord converts an observation to its serialized form
func NewObservationRecord(o Observation) ObservationRecord {
	ts := FormatTimestamp(o.Timestamp)
	return ObservationRecord{
		ZoneCode:       &o.ZoneCode,
		Datetime:       &ts,
		OccupiedSpaces: &o.OccupiedSpaces,
		TotalSpaces:    &o.TotalSpaces,
		OccupancyRate:  &o.OccupancyRate,
	}
}

// Observation validates the record and converts it to an Observation
func (r ObservationRecord) Observation() (Observation, error) {
	var missing string
	switch {
	case r.ZoneCode == nil:
		missing = "blockface_id"
	case r.Datetime == nil:
		missing = "datetime"
	case r.OccupiedSpaces == nil:
		missing = "occupied_spaces"
	case r.TotalSpaces == nil:
		missing = "total_spaces"
	case r.OccupancyRate == nil:
		missing = "occupancy_rate"
	}
	if missing != "" {
		return Observation{}, fmt.Errorf("%w: missing field %s", ErrMalformedData, missing)
	}

	ts, err := ParseTimestamp(*r.Datetime)
	if err != nil {
		return Observation{}, fmt.Errorf("%w: %s: %v", ErrMalformedData, *r.ZoneCode, err)
	}

	o := Observation{
		ZoneCode:       *r.ZoneCode,
		Timestamp:      ts,
		OccupiedSpaces: *r.OccupiedSpaces,
		TotalSpaces:    *r.TotalSpaces,
		OccupancyRate:  *r.OccupancyRate,
	}
	if err := o.Validate(); err != nil {
		return Observation{}, err
	}
	return o, nil
}
