package store

import (
	"context"
	"encoding/json"
	"io"

	"github.com/kilianp07/loadshare/core/model"
	"github.com/kilianp07/loadshare/core/outputs"
)

// DefaultJSONPath is the artifact name produced for the reference data set.
const DefaultJSONPath = "LoadScenarioDatabyClusterMethod1Size{nodes}.json"

// JSONWriter writes the result as an array of {bus: [[...]]} objects.
type JSONWriter struct {
	path   string
	indent bool
}

// NewJSONWriter returns a writer targeting path. {nodes} in path is
// expanded with the run's node count.
func NewJSONWriter(path string, indent bool) *JSONWriter {
	if path == "" {
		path = DefaultJSONPath
	}
	return &JSONWriter{path: path, indent: indent}
}

// Path returns the artifact path for a run over the given node count.
func (w *JSONWriter) Path(nodes int) string { return model.ExpandNodes(w.path, nodes) }

func (w *JSONWriter) Write(ctx context.Context, meta model.RunMeta, res model.AllocationResult) error {
	return outputs.Commit(w.Prepare(ctx, meta, res))
}

// Prepare encodes res into a temporary file next to the target.
func (w *JSONWriter) Prepare(ctx context.Context, meta model.RunMeta, res model.AllocationResult) (outputs.Staged, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return stageFile("store.json", w.Path(meta.Nodes), func(out io.Writer) error {
		enc := json.NewEncoder(out)
		if w.indent {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(res)
	})
}

func (w *JSONWriter) Close() error { return nil }
