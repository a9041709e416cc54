package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/loadshare/core/model"
)

// RunEvent summarises one allocation run.
type RunEvent struct {
	RunID       string
	Nodes       int
	Shape       model.Shape
	TotalWeight float64
	Entries     int
	Excluded    []string
	Duration    time.Duration
	Success     bool
	Error       string
	Time        time.Time
}

// MetricsSink records allocation runs for observability purposes.
type MetricsSink interface {
	RecordRun(ev RunEvent) error
}

// AllocationEvent carries the allocated profiles of a successful run.
type AllocationEvent struct {
	Meta   model.RunMeta
	Result model.AllocationResult
}

// AllocationRecorder is implemented by sinks able to store the per-bus
// allocated time series.
type AllocationRecorder interface {
	RecordAllocation(ev AllocationEvent) error
}

// Flusher is implemented by sinks that buffer data until the run ends,
// such as a Prometheus push.
type Flusher interface {
	Flush(ctx context.Context) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error               { return nil }
func (NopSink) RecordAllocation(AllocationEvent) error { return nil }
func (NopSink) Flush(context.Context) error            { return nil }

// BusEnergy returns the summed allocated value per bus, in first-seen order.
func BusEnergy(res model.AllocationResult) ([]string, map[string]float64) {
	order := make([]string, 0, len(res))
	sums := make(map[string]float64, len(res))
	for _, bp := range res {
		if _, ok := sums[bp.Bus]; !ok {
			order = append(order, bp.Bus)
		}
		sums[bp.Bus] += bp.Profile.Total()
	}
	return order, sums
}
