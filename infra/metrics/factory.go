package metrics

import (
	"fmt"

	"github.com/kilianp07/loadshare/core/factory"
	coremetrics "github.com/kilianp07/loadshare/core/metrics"
)

var builtinSinks = map[string]factory.Factory[coremetrics.MetricsSink]{
	"nop": func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	},
	"prometheus": func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c PromConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPromSink(c)
	},
	"influx": func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.URL == "" || c.Bucket == "" {
			return nil, fmt.Errorf("influx sink requires url and bucket")
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	},
}

func init() {
	for name, f := range builtinSinks {
		_ = coremetrics.RegisterMetricsSink(name, f)
	}
}
