package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/smartcity/parking/internal/domain"
	"github.com/smartcity/parking/internal/logger"
	"github.com/smartcity/parking/pkg/utils"
)

// PredictionRecorder observes served predictions
type PredictionRecorder interface {
	RecordPrediction(p domain.Prediction)
	RecordModelUnavailable(zoneCode string)
}

// NopRecorder discards all observations
type NopRecorder struct{}

func (NopRecorder) RecordPrediction(domain.Prediction) {}
func (NopRecorder) RecordModelUnavailable(string)      {}

// PredictionEngine turns feature vectors into occupancy predictions
type PredictionEngine struct {
	extractor *FeatureExtractor
	model     Model
	recorder  PredictionRecorder
	log       logger.Logger
}

// NewPredictionEngine creates a new engine. model may be nil, in which case
// Predict reports ErrModelUnavailable and PredictWithFallback serves zone averages.
func NewPredictionEngine(extractor *FeatureExtractor, model Model, recorder PredictionRecorder, log logger.Logger) *PredictionEngine {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &PredictionEngine{
		extractor: extractor,
		model:     model,
		recorder:  recorder,
		log:       log,
	}
}

// ModelName returns the loaded model's name, or "" when none is loaded
func (e *PredictionEngine) ModelName() string {
	if e.model == nil {
		return ""
	}
	return e.model.Name()
}

// Predict returns the model's occupancy estimate for a zone at target.
// Confidence follows the feature extractor's fallback ratio.
func (e *PredictionEngine) Predict(ctx context.Context, zoneID int, target time.Time) (domain.Prediction, error) {
	zone, err := e.extractor.registry.Resolve(zoneID)
	if err != nil {
		return domain.Prediction{}, err
	}
	if e.model == nil {
		e.recorder.RecordModelUnavailable(zone.Code)
		return domain.Prediction{}, fmt.Errorf("prediction: zone %s: %w", zone.Code, domain.ErrModelUnavailable)
	}

	fv, err := e.extractor.Extract(zone.Code, target)
	if err != nil {
		return domain.Prediction{}, err
	}

	rate, err := e.model.Predict(ctx, fv)
	if err != nil {
		e.recorder.RecordModelUnavailable(zone.Code)
		return domain.Prediction{}, fmt.Errorf("prediction: zone %s: %w: %v", zone.Code, domain.ErrModelUnavailable, err)
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		e.recorder.RecordModelUnavailable(zone.Code)
		return domain.Prediction{}, fmt.Errorf("prediction: zone %s: %w: non-finite output", zone.Code, domain.ErrModelUnavailable)
	}

	p := domain.Prediction{
		Zone:          zone,
		Target:        target,
		Rate:          utils.RoundTo(utils.Clamp(rate, 0, 1), 4),
		Confidence:    domain.ConfidenceFromRatio(fv.FallbackRatio),
		FallbackRatio: fv.FallbackRatio,
	}
	e.recorder.RecordPrediction(p)
	return p, nil
}

// PredictWithFallback is Predict with graceful degradation: when no usable
// model is available the zone's historical average is served with low
// confidence. Unknown zones and zones without history still fail.
func (e *PredictionEngine) PredictWithFallback(ctx context.Context, zoneID int, target time.Time) (domain.Prediction, error) {
	p, err := e.Predict(ctx, zoneID, target)
	if err == nil || !errors.Is(err, domain.ErrModelUnavailable) {
		return p, err
	}
	e.log.Warnf("serving zone average: %v", err)

	zone, rerr := e.extractor.registry.Resolve(zoneID)
	if rerr != nil {
		return domain.Prediction{}, rerr
	}
	avg, aerr := e.extractor.store.ZoneAverage(zone.Code)
	if aerr != nil {
		return domain.Prediction{}, fmt.Errorf("prediction: %w", aerr)
	}

	p = domain.Prediction{
		Zone:          zone,
		Target:        target,
		Rate:          utils.RoundTo(utils.Clamp(avg, 0, 1), 4),
		Confidence:    domain.ConfidenceLow,
		FallbackRatio: 1,
		IsFallback:    true,
	}
	e.recorder.RecordPrediction(p)
	return p, nil
}
