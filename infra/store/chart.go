package store

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/loadshare/core/model"
	"github.com/kilianp07/loadshare/core/outputs"
)

// DefaultChartPath is the default HTML chart artifact name.
const DefaultChartPath = "LoadScenarioDatabyClusterMethod1Size{nodes}.html"

// ChartWriter renders the allocated profiles as an HTML line chart, one
// series per bus entry.
type ChartWriter struct {
	path  string
	title string
}

// NewChartWriter returns a writer targeting path.
func NewChartWriter(path, title string) *ChartWriter {
	if path == "" {
		path = DefaultChartPath
	}
	if title == "" {
		title = "Load allocation"
	}
	return &ChartWriter{path: path, title: title}
}

// Path returns the artifact path for a run over the given node count.
func (w *ChartWriter) Path(nodes int) string { return model.ExpandNodes(w.path, nodes) }

func (w *ChartWriter) Write(ctx context.Context, meta model.RunMeta, res model.AllocationResult) error {
	return outputs.Commit(w.Prepare(ctx, meta, res))
}

func (w *ChartWriter) Prepare(ctx context.Context, meta model.RunMeta, res model.AllocationResult) (outputs.Staged, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return stageFile("store.chart", w.Path(meta.Nodes), func(out io.Writer) error { return w.render(out, meta, res) })
}

func (w *ChartWriter) render(out io.Writer, meta model.RunMeta, res model.AllocationResult) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    w.title,
			Subtitle: fmt.Sprintf("%d nodes, run %s", meta.Nodes, meta.RunID),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Period"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Load"}),
	)
	line.SetXAxis(periodLabels(meta))
	for i, bp := range res {
		var data []opts.LineData
		for _, row := range bp.Profile {
			for _, v := range row {
				data = append(data, opts.LineData{Value: v})
			}
		}
		name := "bus " + bp.Bus
		if countBus(res, bp.Bus) > 1 {
			name = fmt.Sprintf("bus %s #%d", bp.Bus, i)
		}
		line.AddSeries(name, data)
	}
	if err := line.Render(out); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func (w *ChartWriter) Close() error { return nil }

// periodLabels names every period of the run, by timestamp when a start
// date is known.
func periodLabels(meta model.RunMeta) []string {
	labels := make([]string, 0, meta.Shape.Cells())
	step := 24 * time.Hour
	if meta.Shape.Hours > 0 {
		step /= time.Duration(meta.Shape.Hours)
	}
	for d := 0; d < meta.Shape.Days; d++ {
		for h := 0; h < meta.Shape.Hours; h++ {
			if meta.StartDate.IsZero() {
				labels = append(labels, fmt.Sprintf("d%d h%d", d+1, h))
				continue
			}
			ts := meta.StartDate.Add(time.Duration(d)*24*time.Hour + time.Duration(h)*step)
			labels = append(labels, ts.Format("2006-01-02 15:04"))
		}
	}
	return labels
}

func countBus(res model.AllocationResult, bus string) int {
	n := 0
	for _, bp := range res {
		if bp.Bus == bus {
			n++
		}
	}
	return n
}
