package metrics

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/kilianp07/loadshare/core/metrics"
)

// PromConfig configures the Prometheus sink.
type PromConfig struct {
	// PushgatewayURL enables pushing on Flush when set.
	PushgatewayURL string `json:"pushgateway_url"`
	// Job is the push job name. Defaults to "loadshare".
	Job string `json:"job"`
}

// PromSink records allocation runs in Prometheus metrics. A batch run does
// not live long enough to be scraped, so metrics are pushed to a Pushgateway
// on Flush.
type PromSink struct {
	runs       *prometheus.CounterVec
	duration   prometheus.Gauge
	total      prometheus.Gauge
	entries    prometheus.Gauge
	excluded   prometheus.Gauge
	lastOK     prometheus.Gauge
	busLoad    *prometheus.GaugeVec
	collectors []prometheus.Collector
	pushURL    string
	job        string
	nodes      int
}

// NewPromSink registers metrics on a fresh registry.
func NewPromSink(cfg PromConfig) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.NewRegistry())
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg PromConfig, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{pushURL: cfg.PushgatewayURL, job: cfg.Job}
	if s.job == "" {
		s.job = "loadshare"
	}
	var err error
	if s.runs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loadshare_runs_total",
		Help: "Allocation runs by outcome",
	}, []string{"success"})); err != nil {
		return nil, err
	}
	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&s.duration, "loadshare_run_duration_seconds", "Duration of the last allocation run"},
		{&s.total, "loadshare_total_weight", "Sum of Load weights in the last run"},
		{&s.entries, "loadshare_allocated_entries", "Number of allocated bus entries in the last run"},
		{&s.excluded, "loadshare_excluded_buses", "Buses without Load weight in the last run"},
		{&s.lastOK, "loadshare_last_success_timestamp_seconds", "Unix time of the last successful run"},
	}
	for _, g := range gauges {
		if *g.dst, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: g.name, Help: g.help})); err != nil {
			return nil, err
		}
	}
	if s.busLoad, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "loadshare_bus_allocated_load",
		Help: "Sum of allocated load per bus over the profile horizon",
	}, []string{"bus"})); err != nil {
		return nil, err
	}
	s.collectors = []prometheus.Collector{s.runs, s.duration, s.total, s.entries, s.excluded, s.lastOK, s.busLoad}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// RecordRun updates the run counters and gauges.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(strconv.FormatBool(ev.Success)).Inc()
	s.duration.Set(ev.Duration.Seconds())
	s.nodes = ev.Nodes
	if !ev.Success {
		return nil
	}
	s.total.Set(ev.TotalWeight)
	s.entries.Set(float64(ev.Entries))
	s.excluded.Set(float64(len(ev.Excluded)))
	s.lastOK.Set(float64(ev.Time.Unix()))
	return nil
}

// RecordAllocation sets the per-bus allocated load gauge.
func (s *PromSink) RecordAllocation(ev coremetrics.AllocationEvent) error {
	s.busLoad.Reset()
	order, sums := coremetrics.BusEnergy(ev.Result)
	for _, bus := range order {
		s.busLoad.WithLabelValues(bus).Set(sums[bus])
	}
	return nil
}

// Flush pushes the collected metrics to the Pushgateway, if configured.
func (s *PromSink) Flush(ctx context.Context) error {
	if s.pushURL == "" {
		return nil
	}
	p := push.New(s.pushURL, s.job)
	if s.nodes > 0 {
		p = p.Grouping("nodes", strconv.Itoa(s.nodes))
	}
	for _, c := range s.collectors {
		p = p.Collector(c)
	}
	return p.PushContext(ctx)
}
