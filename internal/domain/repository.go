package domain

import (
	"context"
	"time"
)

// PredictionLog records one served prediction
type PredictionLog struct {
	ID            string
	ZoneID        int
	ZoneCode      string
	Target        time.Time
	Rate          float64
	Confidence    Confidence
	FallbackRatio float64
	IsFallback    bool
	CreatedAt     time.Time
}

// DataRepository defines the interface for data persistence
// This follows the Dependency Inversion Principle - domain defines the interface
type DataRepository interface {
	// ListZones returns the configured zones
	ListZones(ctx context.Context) ([]Zone, error)

	// SavePredictionLog persists a served prediction
	SavePredictionLog(ctx context.Context, entry PredictionLog) error

	// Health checks database connectivity
	Health(ctx context.Context) error
}
