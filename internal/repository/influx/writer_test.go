package influx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/parking/internal/domain"
)

func TestObservationWriterWrite(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(data))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	w := NewObservationWriter(srv.URL, "token", "org", "bucket")
	w.batch = 2
	defer w.Close()

	ts := time.Date(2024, time.January, 2, 8, 0, 0, 0, time.UTC)
	obs := []domain.Observation{
		{ZoneCode: "BF_001", Timestamp: ts, OccupiedSpaces: 19, TotalSpaces: 20, OccupancyRate: 0.975},
		{ZoneCode: "BF_002", Timestamp: ts, OccupiedSpaces: 12, TotalSpaces: 24, OccupancyRate: 0.5},
		{ZoneCode: "BF_001", Timestamp: ts.Add(time.Hour), OccupiedSpaces: 15, TotalSpaces: 20, OccupancyRate: 0.75},
	}
	require.NoError(t, w.Write(context.Background(), obs))
	require.Len(t, bodies, 2)

	first := strings.Split(strings.TrimSpace(bodies[0]), "\n")
	require.Len(t, first, 2)
	expected := strings.TrimSpace(write.PointToLineProtocol(Point(obs[0]), time.Nanosecond))
	assert.Equal(t, expected, first[0])
	assert.Contains(t, first[0], "zone_code=BF_001")
	assert.Contains(t, first[0], "occupancy_rate=0.975")
}

func TestObservationWriterFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := NewObservationWriter(srv.URL, "token", "org", "bucket")
	defer w.Close()

	err := w.Write(context.Background(), []domain.Observation{{ZoneCode: "BF_001", Timestamp: time.Now(), TotalSpaces: 20}})
	assert.Error(t, err)
	assert.Error(t, w.Health(context.Background()))
}
