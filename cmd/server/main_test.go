package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/parking/internal/config"
	"github.com/smartcity/parking/internal/domain"
	"github.com/smartcity/parking/internal/logger"
	"github.com/smartcity/parking/internal/repository/postgres"
	"github.com/smartcity/parking/internal/service"
)

type failingRepo struct {
	domain.DataRepository
}

func (failingRepo) ListZones(ctx context.Context) ([]domain.Zone, error) {
	return nil, errors.New("connection refused")
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootConfigFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "c", flag.Shorthand)

	_, err := execute("--config", filepath.Join(t.TempDir(), "server.toml"))
	assert.ErrorContains(t, err, "unsupported format")
}

func TestRootMissingHistoryFails(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "ML_SERVICE_URL", "PORT", "GO_ENV"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	missing := filepath.Join(dir, "absent.json")
	require.NoError(t, os.WriteFile(path, []byte("ml:\n  data_path: "+missing+"\n"), 0o644))

	_, err := execute("-c", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load history")
	assert.Contains(t, err.Error(), missing)
}

func TestBuildRegistryFallsBack(t *testing.T) {
	ctx := context.Background()
	defaults := len(service.DefaultZones())

	registry, err := buildRegistry(ctx, postgres.NewMockRepository(nil), logger.NopLogger{})
	require.NoError(t, err)
	assert.Len(t, registry.Zones(), defaults)

	registry, err = buildRegistry(ctx, failingRepo{}, logger.NopLogger{})
	require.NoError(t, err)
	assert.Len(t, registry.Zones(), defaults)

	own := []domain.Zone{{ID: 1, Code: "BF_001", Name: "Downtown Pike St", Capacity: 20}}
	registry, err = buildRegistry(ctx, postgres.NewMockRepository(own), logger.NopLogger{})
	require.NoError(t, err)
	assert.Len(t, registry.Zones(), 1)
}

func TestLoadModelDegrades(t *testing.T) {
	ctx := context.Background()
	off := false

	assert.Nil(t, loadModel(ctx, config.MLConfig{UseModel: &off}, logger.NopLogger{}))
	assert.Nil(t, loadModel(ctx, config.MLConfig{ModelPath: filepath.Join(t.TempDir(), "none.json")}, logger.NopLogger{}))
}
