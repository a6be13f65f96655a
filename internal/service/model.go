package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/smartcity/parking/internal/domain"
)

// Model scores a feature vector into an occupancy rate
type Model interface {
	Predict(ctx context.Context, fv domain.FeatureVector) (float64, error)
	Name() string
}

// ridgeLambda keeps the normal equations solvable when a feature is constant
// (zone statistics are constant for a single-zone training set).
const ridgeLambda = 1e-3

// LinearModel is a ridge-regularised linear regressor over FeatureNames
type LinearModel struct {
	Version      string    `json:"version"`
	FeatureNames []string  `json:"feature_names"`
	Intercept    float64   `json:"intercept"`
	Weights      []float64 `json:"weights"`
	TrainedAt    time.Time `json:"trained_at"`
	TrainingRows int       `json:"training_rows"`
}

// Name identifies the model in status output
func (m *LinearModel) Name() string { return "linear/" + m.Version }

// Predict returns the raw linear response for fv
func (m *LinearModel) Predict(_ context.Context, fv domain.FeatureVector) (float64, error) {
	if len(fv.Values) != len(m.Weights) {
		return 0, fmt.Errorf("model: expected %d features, got %d", len(m.Weights), len(fv.Values))
	}
	y := m.Intercept
	for i, w := range m.Weights {
		y += w * fv.Values[i]
	}
	return y, nil
}

// Validate checks the model matches the feature contract
func (m *LinearModel) Validate() error {
	if !slices.Equal(m.FeatureNames, domain.FeatureNames) {
		return fmt.Errorf("model: feature names %v do not match %v", m.FeatureNames, domain.FeatureNames)
	}
	if len(m.Weights) != len(m.FeatureNames) {
		return fmt.Errorf("model: %d weights for %d features", len(m.Weights), len(m.FeatureNames))
	}
	for _, w := range append([]float64{m.Intercept}, m.Weights...) {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return errors.New("model: non-finite coefficient")
		}
	}
	return nil
}

// FitLinearModel solves (XᵀX + λI)β = Xᵀy for a model with intercept.
// The intercept is not penalised.
func FitLinearModel(features [][]float64, targets []float64) (*LinearModel, error) {
	if len(features) == 0 || len(features) != len(targets) {
		return nil, fmt.Errorf("model: need matching non-empty features and targets, got %d and %d", len(features), len(targets))
	}
	n, p := len(features), len(domain.FeatureNames)+1

	a := mat.NewDense(n, p, nil)
	for i, row := range features {
		if len(row) != p-1 {
			return nil, fmt.Errorf("model: row %d has %d features, want %d", i, len(row), p-1)
		}
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}
	y := mat.NewVecDense(n, targets)

	var xtx mat.Dense
	xtx.Mul(a.T(), a)
	for j := 1; j < p; j++ {
		xtx.Set(j, j, xtx.At(j, j)+ridgeLambda*float64(n))
	}
	var xty mat.VecDense
	xty.MulVec(a.T(), y)

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("model: failed to solve normal equations: %w", err)
		}
	}

	weights := make([]float64, p-1)
	for j := range weights {
		weights[j] = beta.AtVec(j + 1)
	}
	m := &LinearModel{
		Version:      "1",
		FeatureNames: slices.Clone(domain.FeatureNames),
		Intercept:    beta.AtVec(0),
		Weights:      weights,
		TrainedAt:    time.Now().UTC(),
		TrainingRows: n,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadLinearModel reads a model artifact written by Save
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: failed to read %s: %w", path, err)
	}
	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("model: failed to decode %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Save writes the model artifact as indented JSON
func (m *LinearModel) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("model: failed to encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("model: failed to write %s: %w", path, err)
	}
	return nil
}
