package monitoring

import (
	"strconv"
	"time"
)

// Monitor reports run failures to an error tracking service.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

// Tags returns the tags attached to a failed run.
func Tags(runID string, nodes int, kind string) map[string]string {
	tags := map[string]string{"nodes": strconv.Itoa(nodes)}
	if runID != "" {
		tags["run_id"] = runID
	}
	if kind != "" {
		tags["kind"] = kind
	}
	return tags
}
