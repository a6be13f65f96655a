package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/smartcity/parking/internal/domain"
)

// RemoteModel delegates scoring to an external ML service over HTTP
type RemoteModel struct {
	serviceURL string
	httpClient *http.Client
}

// NewRemoteModel creates a new remote scorer
func NewRemoteModel(serviceURL string) *RemoteModel {
	return &RemoteModel{
		serviceURL: serviceURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type remoteScoreRequest struct {
	ZoneCode     string    `json:"zone_code"`
	Timestamp    string    `json:"timestamp"`
	FeatureNames []string  `json:"feature_names"`
	Features     []float64 `json:"features"`
}

type remoteScoreResponse struct {
	OccupancyRate float64 `json:"occupancy_rate"`
}

// Name identifies the model in status output
func (m *RemoteModel) Name() string { return "remote/" + m.serviceURL }

// Predict posts the feature vector to the ML service
func (m *RemoteModel) Predict(ctx context.Context, fv domain.FeatureVector) (float64, error) {
	body, err := json.Marshal(remoteScoreRequest{
		ZoneCode:     fv.ZoneCode,
		Timestamp:    domain.FormatTimestamp(fv.Target),
		FeatureNames: domain.FeatureNames,
		Features:     fv.Values,
	})
	if err != nil {
		return 0, fmt.Errorf("remote_model: failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/predict", m.serviceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("remote_model: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("remote_model: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("remote_model: service returned status %d", resp.StatusCode)
	}

	var score remoteScoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&score); err != nil {
		return 0, fmt.Errorf("remote_model: failed to decode response: %w", err)
	}
	return score.OccupancyRate, nil
}

// Health checks ML service connectivity
func (m *RemoteModel) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", m.serviceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("remote_model: failed to create health request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote_model: health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote_model: health check returned status %d", resp.StatusCode)
	}
	return nil
}
