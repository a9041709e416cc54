package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/loadshare/core/factory"
	"github.com/kilianp07/loadshare/core/model"
	"github.com/kilianp07/loadshare/core/outputs"
)

var (
	sample = model.AllocationResult{
		{Bus: "1", Profile: model.LoadProfile{{2.5, 5}}},
		{Bus: "2", Profile: model.LoadProfile{{7.5, 15}}},
	}
	meta = model.RunMeta{
		RunID:       "run-1",
		Nodes:       2,
		Shape:       model.Shape{Days: 1, Hours: 2},
		TotalWeight: 100,
		StartDate:   time.Date(2018, 8, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
)

func TestJSONWriter(t *testing.T) {
	dir := t.TempDir()
	w, err := outputs.NewWriter(factory.ModuleConfig{Type: "json", Conf: map[string]any{
		"path": filepath.Join(dir, "LoadScenarioDatabyClusterMethod1Size{nodes}.json"),
	}})
	require.NoError(t, err)
	defer func() { require.NoError(t, w.Close()) }()
	require.NoError(t, w.Write(context.Background(), meta, sample))

	data, err := os.ReadFile(filepath.Join(dir, "LoadScenarioDatabyClusterMethod1Size2.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"1": [[2.5, 5]]}, {"2": [[7.5, 15]]}]`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must be cleaned up")
}

func TestJSONWriter_Indent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, NewJSONWriter(path, true).Write(context.Background(), meta, sample))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {")
	var back model.AllocationResult
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, sample, back)
}

func TestJSONWriter_Cancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewJSONWriter(path, false).Write(ctx, meta, sample), context.Canceled)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStageFile_NoPartialOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	_, err := stageFile("store.json", path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return errors.New("encoder failed")
	})
	assert.ErrorIs(t, err, model.ErrIO)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStagers_DiscardLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	stagers := map[string]outputs.Stager{
		"json":   NewJSONWriter(filepath.Join(dir, "out.json"), false),
		"csv":    NewCSVWriter(filepath.Join(dir, "out.csv")),
		"chart":  NewChartWriter(filepath.Join(dir, "out.html"), ""),
		"sqlite": NewSQLiteStore(filepath.Join(dir, "out.db")),
	}
	for name, w := range stagers {
		t.Run(name, func(t *testing.T) {
			st, err := w.Prepare(context.Background(), meta, sample)
			require.NoError(t, err)
			require.NoError(t, st.Discard())
			require.NoError(t, w.Close())
		})
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestJSONWriter_PrepareThenCommit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	w := NewJSONWriter(path, false)
	st, err := w.Prepare(context.Background(), meta, sample)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "target must not exist before commit")

	require.NoError(t, st.Commit())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"1": [[2.5, 5]]}, {"2": [[7.5, 15]]}]`, string(data))
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out-{nodes}.csv")
	w := NewCSVWriter(path)
	require.NoError(t, w.Write(context.Background(), meta, sample))
	data, err := os.ReadFile(w.Path(2))
	require.NoError(t, err)
	want := strings.Join([]string{
		"bus,entry,day,hour,load",
		"1,0,0,0,2.5",
		"1,0,0,1,5",
		"2,1,0,0,7.5",
		"2,1,0,1,15",
	}, "\n") + "\n"
	assert.Equal(t, want, string(data))
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs-{nodes}.db")
	w, err := outputs.NewWriter(factory.ModuleConfig{Type: "sqlite", Conf: map[string]any{"path": path}}.With("nodes", 2))
	require.NoError(t, err)
	st, ok := w.(*SQLiteStore)
	require.True(t, ok)
	defer func() { require.NoError(t, st.Close()) }()
	_, err = os.Stat(filepath.Join(filepath.Dir(path), "runs-2.db"))
	require.True(t, os.IsNotExist(err), "database is created on first write")

	ctx := context.Background()
	require.NoError(t, st.Write(ctx, meta, sample))
	gotMeta, res, err := st.Query(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, meta, gotMeta)
	assert.Equal(t, sample, res)

	_, err = os.Stat(filepath.Join(filepath.Dir(path), "runs-2.db"))
	require.NoError(t, err)

	err = st.Write(ctx, meta, sample)
	assert.ErrorIs(t, err, model.ErrIO, "duplicate run id must fail")
	_, res, err = st.Query(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, res, 2, "failed write must not leave extra rows")
}

func TestSQLiteStore_DiscardKeepsExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()
	first := NewSQLiteStore(path)
	require.NoError(t, first.Write(ctx, meta, sample))
	require.NoError(t, first.Close())

	second := NewSQLiteStore(path)
	defer func() { require.NoError(t, second.Close()) }()
	next := meta
	next.RunID = "run-2"
	st, err := second.Prepare(ctx, next, sample)
	require.NoError(t, err)
	require.NoError(t, st.Discard())

	_, res, err := second.Query(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, sample, res)
	_, _, err = second.Query(ctx, "run-2")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestChartWriter(t *testing.T) {
	dir := t.TempDir()
	w, err := outputs.NewWriter(factory.ModuleConfig{Type: "chart", Conf: map[string]any{
		"path":  filepath.Join(dir, "chart{nodes}.html"),
		"title": "Cluster load",
	}})
	require.NoError(t, err)
	require.NoError(t, w.Write(context.Background(), meta, sample))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, "chart2.html"))
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "Cluster load")
	assert.Contains(t, html, "bus 1")
	assert.Contains(t, html, "bus 2")
	assert.Contains(t, html, "2018-08-01 12:00")
}

func TestPeriodLabels(t *testing.T) {
	labels := periodLabels(model.RunMeta{Shape: model.Shape{Days: 2, Hours: 2}})
	assert.Equal(t, []string{"d1 h0", "d1 h1", "d2 h0", "d2 h1"}, labels)

	labels = periodLabels(meta)
	assert.Equal(t, []string{"2018-08-01 00:00", "2018-08-01 12:00"}, labels)
}
