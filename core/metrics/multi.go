package metrics

import (
	"context"
	"errors"
)

// MultiSink fans events out to several sinks. Every sink is called even if
// an earlier one fails; errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordRun(ev RunEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordAllocation forwards to sinks implementing AllocationRecorder.
func (m *MultiSink) RecordAllocation(ev AllocationEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(AllocationRecorder); ok {
			if err := rec.RecordAllocation(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Flush forwards to sinks implementing Flusher.
func (m *MultiSink) Flush(ctx context.Context) error {
	var errs []error
	for _, s := range m.Sinks {
		if f, ok := s.(Flusher); ok {
			if err := f.Flush(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
