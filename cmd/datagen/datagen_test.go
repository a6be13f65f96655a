package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/parking/internal/config"
	"github.com/smartcity/parking/internal/domain"
	"github.com/smartcity/parking/internal/generator"
	"github.com/smartcity/parking/internal/history"
	"github.com/smartcity/parking/internal/service"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestGenerateTrainInspect(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "history.json")
	model := filepath.Join(dir, "models", "linear.json")

	out := execute(t, "generate", "-o", data, "--seed", "5",
		"--start", "2024-01-01T00:00:00", "--end", "2024-01-21T23:00:00")
	assert.Contains(t, out, "BF_045")

	store, err := history.LoadFile(data)
	require.NoError(t, err)
	assert.Equal(t, 21*24*len(service.DefaultZones()), store.Len())

	out = execute(t, "train", "--data", data, "--model", model)
	assert.Contains(t, out, "lag_24h")
	m, err := service.LoadLinearModel(model)
	require.NoError(t, err)
	assert.Equal(t, store.Len(), m.TrainingRows)

	out = execute(t, "inspect", "--data", data, "--at", "2026-02-06T14:00:00", "--zones", "BF_001,BF_045")
	assert.Contains(t, out, "days after the last observation")
	assert.Contains(t, out, "0/0/0")
	assert.Contains(t, out, "Every lag falls back")
}

func TestGenerateExplicitZeroSeed(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "zero.json")
	execute(t, "generate", "-o", out, "--seed", "0",
		"--start", "2024-03-01T00:00:00", "--end", "2024-03-02T23:00:00")

	g, err := generator.New(service.DefaultZones(), generator.DefaultPersonalities())
	require.NoError(t, err)
	opts := generator.Options{
		Start: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.March, 2, 23, 0, 0, 0, time.UTC),
	}
	var want, other bytes.Buffer
	obs, err := g.Generate(opts)
	require.NoError(t, err)
	require.NoError(t, generator.WriteJSON(&want, obs))

	opts.Seed = 42
	obs, err = g.Generate(opts)
	require.NoError(t, err)
	require.NoError(t, generator.WriteJSON(&other, obs))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, want.String(), string(got))
	assert.NotEqual(t, other.String(), string(got))
}

func TestExportInfluxHealthPreflight(t *testing.T) {
	obs := []domain.Observation{{
		ZoneCode:       "BF_001",
		Timestamp:      time.Date(2024, time.January, 2, 8, 0, 0, 0, time.UTC),
		OccupiedSpaces: 10,
		TotalSpaces:    20,
		OccupancyRate:  0.5,
	}}

	serve := func(healthy bool, writes *atomic.Int32) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/health":
				w.Header().Set("Content-Type", "application/json")
				if !healthy {
					w.WriteHeader(http.StatusServiceUnavailable)
					_, _ = w.Write([]byte(`{"name":"influxdb","status":"fail","message":"not ready"}`))
					return
				}
				_, _ = w.Write([]byte(`{"name":"influxdb","status":"pass","message":"ready for queries and writes"}`))
			case "/api/v2/write":
				writes.Add(1)
				w.WriteHeader(http.StatusNoContent)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
	}

	t.Run("unhealthy instance is not written to", func(t *testing.T) {
		var writes atomic.Int32
		srv := serve(false, &writes)
		defer srv.Close()

		err := exportInflux(context.Background(), config.InfluxConfig{URL: srv.URL, Org: "city", Bucket: "parking"}, obs)
		assert.Error(t, err)
		assert.Zero(t, writes.Load())
	})

	t.Run("healthy instance receives the batch", func(t *testing.T) {
		var writes atomic.Int32
		srv := serve(true, &writes)
		defer srv.Close()

		err := exportInflux(context.Background(), config.InfluxConfig{URL: srv.URL, Org: "city", Bucket: "parking"}, obs)
		require.NoError(t, err)
		assert.Equal(t, int32(1), writes.Load())
	})
}
