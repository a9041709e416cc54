package store

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/kilianp07/loadshare/core/model"
	"github.com/kilianp07/loadshare/core/outputs"
)

// DefaultCSVPath is the default CSV artifact name.
const DefaultCSVPath = "LoadScenarioDatabyClusterMethod1Size{nodes}.csv"

// CSVWriter writes the result in long format, one row per bus entry and
// period.
type CSVWriter struct {
	path string
}

// NewCSVWriter returns a writer targeting path.
func NewCSVWriter(path string) *CSVWriter {
	if path == "" {
		path = DefaultCSVPath
	}
	return &CSVWriter{path: path}
}

// Path returns the artifact path for a run over the given node count.
func (w *CSVWriter) Path(nodes int) string { return model.ExpandNodes(w.path, nodes) }

func (w *CSVWriter) Write(ctx context.Context, meta model.RunMeta, res model.AllocationResult) error {
	return outputs.Commit(w.Prepare(ctx, meta, res))
}

func (w *CSVWriter) Prepare(ctx context.Context, meta model.RunMeta, res model.AllocationResult) (outputs.Staged, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return stageFile("store.csv", w.Path(meta.Nodes), func(out io.Writer) error { return WriteCSV(out, res) })
}

func (w *CSVWriter) Close() error { return nil }

// WriteCSV writes res to w with a bus,entry,day,hour,load header.
func WriteCSV(w io.Writer, res model.AllocationResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"bus", "entry", "day", "hour", "load"}); err != nil {
		return err
	}
	for i, bp := range res {
		for d, row := range bp.Profile {
			for h, v := range row {
				rec := []string{
					bp.Bus,
					strconv.Itoa(i),
					strconv.Itoa(d),
					strconv.Itoa(h),
					strconv.FormatFloat(v, 'f', -1, 64),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
