package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smartcity/parking/internal/domain"
	"github.com/smartcity/parking/internal/generator"
	"github.com/smartcity/parking/internal/history"
)

var (
	dataStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	dataEnd   = time.Date(2024, time.February, 29, 23, 0, 0, 0, time.UTC)
)

// fixture builds a registry over the default zones and a store holding two
// months of synthetic history for the first three of them.
func fixture(t *testing.T) (*ZoneRegistry, *history.Store) {
	t.Helper()
	registry, err := NewZoneRegistry(DefaultZones())
	require.NoError(t, err)

	g, err := generator.New(registry.Zones()[:3], generator.DefaultPersonalities())
	require.NoError(t, err)
	obs, err := g.Generate(generator.Options{Start: dataStart, End: dataEnd, Seed: 11})
	require.NoError(t, err)

	store, err := history.NewStore(obs)
	require.NoError(t, err)
	return registry, store
}

// constModel returns a fixed rate or error
type constModel struct {
	rate float64
	err  error
}

func (m constModel) Name() string { return "const" }

func (m constModel) Predict(context.Context, domain.FeatureVector) (float64, error) {
	return m.rate, m.err
}

// memRepo records prediction logs in memory
type memRepo struct {
	mu   sync.Mutex
	logs []domain.PredictionLog
}

func (r *memRepo) ListZones(context.Context) ([]domain.Zone, error) { return DefaultZones(), nil }

func (r *memRepo) SavePredictionLog(_ context.Context, e domain.PredictionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, e)
	return nil
}

func (r *memRepo) Health(context.Context) error { return nil }

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.logs)
}
