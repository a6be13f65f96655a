package influx

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/smartcity/parking/internal/domain"
)

// Measurement is the InfluxDB measurement holding occupancy observations
const Measurement = "parking_occupancy"

// ObservationWriter exports observation series to InfluxDB
type ObservationWriter struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	batch    int
}

// NewObservationWriter creates a writer for the given InfluxDB endpoint
func NewObservationWriter(url, token, org, bucket string) *ObservationWriter {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 10 * time.Second}))
	return &ObservationWriter{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		batch:    5000,
	}
}

// Point converts an observation into a line protocol point
func Point(o domain.Observation) *write.Point {
	return write.NewPointWithMeasurement(Measurement).
		AddTag("zone_code", o.ZoneCode).
		AddField("occupied_spaces", o.OccupiedSpaces).
		AddField("total_spaces", o.TotalSpaces).
		AddField("occupancy_rate", o.OccupancyRate).
		SetTime(o.Timestamp)
}

// Write sends observations in batches
func (w *ObservationWriter) Write(ctx context.Context, obs []domain.Observation) error {
	for start := 0; start < len(obs); start += w.batch {
		end := min(start+w.batch, len(obs))
		points := make([]*write.Point, 0, end-start)
		for _, o := range obs[start:end] {
			points = append(points, Point(o))
		}
		if err := w.writeAPI.WritePoint(ctx, points...); err != nil {
			return fmt.Errorf("influx: failed to write observations %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// Health checks the InfluxDB instance
func (w *ObservationWriter) Health(ctx context.Context) error {
	health, err := w.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("influx: health check failed: %w", err)
	}
	if health.Status != "pass" {
		return fmt.Errorf("influx: health status %s", health.Status)
	}
	return nil
}

// Close releases the underlying client
func (w *ObservationWriter) Close() {
	w.client.Close()
}
