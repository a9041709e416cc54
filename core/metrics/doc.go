package metrics

// Package metrics defines the sinks an allocation run reports to. A
// MetricsSink records one RunEvent per run; sinks that also implement
// AllocationRecorder receive the allocated time series, and Flusher sinks
// are flushed once the run is over. NewMetricsSink builds sinks registered
// by infra/metrics and combines several of them in a MultiSink.
