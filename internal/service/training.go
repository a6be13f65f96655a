package service

import (
	"fmt"
)

// BuildTrainingSet extracts one feature row per stored observation, with the
// observed rate as target. Rows are ordered by zone code, then time.
func BuildTrainingSet(extractor *FeatureExtractor, src HistorySource) ([][]float64, []float64, error) {
	var (
		features [][]float64
		targets  []float64
	)
	for _, code := range src.Zones() {
		for _, o := range src.Series(code) {
			fv, err := extractor.Extract(code, o.Timestamp)
			if err != nil {
				return nil, nil, fmt.Errorf("training: %w", err)
			}
			features = append(features, fv.Values)
			targets = append(targets, o.OccupancyRate)
		}
	}
	if len(features) == 0 {
		return nil, nil, fmt.Errorf("training: no observations")
	}
	return features, targets, nil
}

// Train fits a linear model on every observation of src
func Train(extractor *FeatureExtractor, src HistorySource) (*LinearModel, error) {
	features, targets, err := BuildTrainingSet(extractor, src)
	if err != nil {
		return nil, err
	}
	return FitLinearModel(features, targets)
}
