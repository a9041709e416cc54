package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"

	coremon "github.com/kilianp07/loadshare/core/monitoring"
)

// Config defines settings for Sentry error monitoring.
type Config struct {
	DSN         string `json:"dsn"`
	Environment string `json:"environment"`
	Release     string `json:"release"`
	// ServerName tags events with the host that ran the batch.
	ServerName string `json:"server_name"`
}

// SentryMonitor reports failed runs through a dedicated Sentry hub, so
// nothing leaks into the global SDK state.
type SentryMonitor struct {
	hub *sentry.Hub
}

// NewSentryMonitor returns a Monitor for cfg. An empty DSN disables
// reporting.
func NewSentryMonitor(cfg Config) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		ServerName:  cfg.ServerName,
	})
	if err != nil {
		return nil, err
	}
	scope := sentry.NewScope()
	scope.SetTag("app", "loadshare")
	return &SentryMonitor{hub: sentry.NewHub(client, scope)}, nil
}

// CaptureException sends err with the given tags. A nil error is ignored.
func (m *SentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	m.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		m.hub.CaptureException(err)
	})
}

// Recover reports a panic and re-raises it. It must be deferred.
func (m *SentryMonitor) Recover() {
	if r := recover(); r != nil {
		m.hub.Recover(r)
		m.hub.Flush(2 * time.Second)
		panic(r)
	}
}

func (m *SentryMonitor) Flush(timeout time.Duration) { m.hub.Flush(timeout) }
