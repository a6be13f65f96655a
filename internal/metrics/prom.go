// Package metrics exports prediction telemetry to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/smartcity/parking/internal/domain"
)

// PromRecorder records served predictions in Prometheus metrics.
type PromRecorder struct {
	predictions *prometheus.CounterVec
	fallback    *prometheus.HistogramVec
	unavailable *prometheus.CounterVec
}

// NewPromRecorder registers prediction metrics on the provided registerer.
// If reg is nil, the default registerer is used. If the collectors are already
// registered, the existing ones are reused.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	predictions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parking_predictions_total",
		Help: "Total number of occupancy predictions served",
	}, []string{"zone_code", "confidence", "fallback"})
	fallback := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "parking_feature_fallback_ratio",
		Help:    "Share of lag features replaced by the zone average",
		Buckets: []float64{0, 1.0 / 3, 2.0 / 3, 1},
	}, []string{"zone_code"})
	unavailable := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parking_model_unavailable_total",
		Help: "Predictions that could not be served by the model",
	}, []string{"zone_code"})

	var err error
	if predictions, err = register(reg, predictions); err != nil {
		return nil, err
	}
	if fallback, err = register(reg, fallback); err != nil {
		return nil, err
	}
	if unavailable, err = register(reg, unavailable); err != nil {
		return nil, err
	}
	return &PromRecorder{predictions: predictions, fallback: fallback, unavailable: unavailable}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(C), nil
		}
		return c, err
	}
	return c, nil
}

// RecordPrediction counts a served prediction and its fallback ratio.
func (r *PromRecorder) RecordPrediction(p domain.Prediction) {
	fb := "false"
	if p.IsFallback {
		fb = "true"
	}
	r.predictions.WithLabelValues(p.Zone.Code, string(p.Confidence), fb).Inc()
	if !p.IsFallback {
		r.fallback.WithLabelValues(p.Zone.Code).Observe(p.FallbackRatio)
	}
}

// RecordModelUnavailable counts a prediction the model could not serve.
func (r *PromRecorder) RecordModelUnavailable(zoneCode string) {
	r.unavailable.WithLabelValues(zoneCode).Inc()
}
