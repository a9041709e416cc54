package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/loadshare/core/metrics"
	"github.com/kilianp07/loadshare/infra/logger"
)

// InfluxConfig configures the InfluxDB sink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes run summaries and allocated profiles to InfluxDB.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes one load_run point.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, runPoint(ev))
}

func runPoint(ev coremetrics.RunEvent) *write.Point {
	p := write.NewPointWithMeasurement("load_run").
		AddTag("run_id", ev.RunID).
		AddTag("nodes", strconv.Itoa(ev.Nodes)).
		AddTag("success", strconv.FormatBool(ev.Success)).
		AddField("total_weight", round3(ev.TotalWeight)).
		AddField("entries", ev.Entries).
		AddField("excluded", len(ev.Excluded)).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000))
	if ev.Error != "" {
		p = p.AddField("error", ev.Error)
	}
	return p.SetTime(ev.Time)
}

// RecordAllocation writes one load_allocation point per bus entry and
// period. Periods are stamped from the run start date, spacing the hours
// of a day evenly over 24h.
func (s *InfluxSink) RecordAllocation(ev coremetrics.AllocationEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := allocationPoints(ev)
	if len(points) == 0 {
		return nil
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

func allocationPoints(ev coremetrics.AllocationEvent) []*write.Point {
	start := ev.Meta.StartDate
	if start.IsZero() {
		start = ev.Meta.CreatedAt
	}
	var points []*write.Point
	for i, bp := range ev.Result {
		for d, row := range bp.Profile {
			step := 24 * time.Hour
			if len(row) > 0 {
				step /= time.Duration(len(row))
			}
			day := start.Add(time.Duration(d) * 24 * time.Hour)
			for h, v := range row {
				p := write.NewPointWithMeasurement("load_allocation").
					AddTag("run_id", ev.Meta.RunID).
					AddTag("bus", bp.Bus).
					AddTag("entry", strconv.Itoa(i)).
					AddField("load", v).
					SetTime(day.Add(time.Duration(h) * step))
				points = append(points, p)
			}
		}
	}
	return points
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
