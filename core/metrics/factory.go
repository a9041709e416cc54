package metrics

import (
	"fmt"

	"github.com/kilianp07/loadshare/core/factory"
)

var sinkRegistry = factory.NewRegistry[MetricsSink]("metrics sink")

// RegisterMetricsSink adds a metrics sink factory identified by name.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// SinkTypes lists the registered sink types.
func SinkTypes() []string { return sinkRegistry.Names() }

// NewMetricsSink builds every configured sink. No sink yields a NopSink, a
// single sink is returned as is and several are wrapped in a MultiSink.
// Nop entries are dropped when a real sink is configured next to them.
func NewMetricsSink(cfg Config) (MetricsSink, error) {
	var sinks []MetricsSink
	for i, mc := range cfg.Sinks {
		s, err := sinkRegistry.Create(mc)
		if err != nil {
			return nil, fmt.Errorf("metrics.sinks[%d]: %w", i, err)
		}
		if _, nop := s.(NopSink); nop {
			continue
		}
		sinks = append(sinks, s)
	}
	switch len(sinks) {
	case 0:
		return NopSink{}, nil
	case 1:
		return sinks[0], nil
	}
	return NewMultiSink(sinks...), nil
}
