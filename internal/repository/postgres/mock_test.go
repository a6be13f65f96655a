package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/parking/internal/domain"
)

var _ domain.DataRepository = (*MockRepository)(nil)
var _ domain.DataRepository = (*PostgresRepository)(nil)

func TestMockRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository([]domain.Zone{{ID: 1, Code: "BF_001", Capacity: 20}})

	zones, err := repo.ListZones(ctx)
	require.NoError(t, err)
	require.Len(t, zones, 1)
	zones[0].Code = "changed"
	again, _ := repo.ListZones(ctx)
	assert.Equal(t, "BF_001", again[0].Code)

	require.NoError(t, repo.SavePredictionLog(ctx, domain.PredictionLog{ID: "a", ZoneCode: "BF_001"}))
	assert.Len(t, repo.PredictionLogs(), 1)
	assert.NoError(t, repo.Health(ctx))
}
