package postgres

import (
	"context"
	"sync"

	"github.com/smartcity/parking/internal/domain"
)

// MockRepository implements domain.DataRepository for testing/demo mode
type MockRepository struct {
	zones []domain.Zone

	mu   sync.Mutex
	logs []domain.PredictionLog
}

// NewMockRepository creates a mock repository serving the given zones
func NewMockRepository(zones []domain.Zone) *MockRepository {
	return &MockRepository{zones: zones}
}

// ListZones returns a copy of the configured zones
func (r *MockRepository) ListZones(ctx context.Context) ([]domain.Zone, error) {
	out := make([]domain.Zone, len(r.zones))
	copy(out, r.zones)
	return out, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}

// SavePredictionLog keeps the entry in memory
func (r *MockRepository) SavePredictionLog(ctx context.Context, entry domain.PredictionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, entry)
	return nil
}

// PredictionLogs returns the entries saved so far
func (r *MockRepository) PredictionLogs() []domain.PredictionLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.PredictionLog, len(r.logs))
	copy(out, r.logs)
	return out
}
