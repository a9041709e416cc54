package profile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/loadshare/core/factory"
	"github.com/kilianp07/loadshare/core/inputs"
	"github.com/kilianp07/loadshare/core/model"
)

var shape = model.Shape{Days: 2, Hours: 3}

// value returns the synthetic load stored for (day, hour).
func value(d, h int) float64 { return float64(100*(d+1) + h) + 0.5 }

func writeWorkbook(t *testing.T, sheet string) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Date"))
	require.NoError(t, f.SetCellValue(sheet, "C1", "Load"))
	for d := 0; d < shape.Days; d++ {
		for h := 0; h < shape.Hours; h++ {
			row := 2 + shape.Hours*d + h
			require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("B%d", row), h+1))
			require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("C%d", row), value(d, h)))
		}
	}
	path := filepath.Join(t.TempDir(), "load.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func assertProfile(t *testing.T, p model.LoadProfile) {
	t.Helper()
	require.NoError(t, p.Validate(shape))
	for d := range p {
		for h := range p[d] {
			assert.Equal(t, value(d, h), p[d][h], "day %d hour %d", d, h)
		}
	}
}

func TestXLSXSource(t *testing.T) {
	path := writeWorkbook(t, DefaultSheet)
	src, err := inputs.NewProfileSource(factory.ModuleConfig{Type: "xlsx", Conf: map[string]any{"path": path}})
	require.NoError(t, err)
	p, err := src.ReadProfile(context.Background(), shape)
	require.NoError(t, err)
	assertProfile(t, p)
}

func TestXLSXSource_Errors(t *testing.T) {
	path := writeWorkbook(t, DefaultSheet)
	ctx := context.Background()

	src, err := NewXLSXSource(Config{Path: path, Sheet: "missing", Column: 2, HeaderRows: 1, Layout: LayoutColumn})
	require.NoError(t, err)
	_, err = src.ReadProfile(ctx, shape)
	assert.ErrorIs(t, err, model.ErrMalformedInput)

	src, err = NewXLSXSource(Config{Path: path, Sheet: DefaultSheet, Column: 2, HeaderRows: 1, Layout: LayoutColumn})
	require.NoError(t, err)
	_, err = src.ReadProfile(ctx, model.Shape{Days: 3, Hours: 3})
	assert.ErrorIs(t, err, model.ErrMalformedInput)

	src, err = NewXLSXSource(Config{Path: filepath.Join(t.TempDir(), "none.xlsx"), Sheet: DefaultSheet, Layout: LayoutColumn})
	require.NoError(t, err)
	_, err = src.ReadProfile(ctx, shape)
	assert.ErrorIs(t, err, model.ErrIO)

	_, err = NewXLSXSource(Config{Layout: LayoutColumn})
	assert.ErrorIs(t, err, model.ErrMalformedInput)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVSource_ColumnLayout(t *testing.T) {
	var b strings.Builder
	b.WriteString("date,hour,load\n")
	for d := 0; d < shape.Days; d++ {
		for h := 0; h < shape.Hours; h++ {
			fmt.Fprintf(&b, "2018-08-0%d,%d,%v\n", d+1, h+1, value(d, h))
		}
	}
	path := writeFile(t, "load.csv", b.String())
	src, err := inputs.NewProfileSource(factory.ModuleConfig{Type: "csv", Conf: map[string]any{"path": path}})
	require.NoError(t, err)
	p, err := src.ReadProfile(context.Background(), shape)
	require.NoError(t, err)
	assertProfile(t, p)
}

func TestCSVSource_WideLayout(t *testing.T) {
	content := "day,h1,h2,h3\n1,100.5,101.5,102.5\n2,200.5,201.5,202.5\n"
	path := writeFile(t, "wide.csv", content)
	src, err := inputs.NewProfileSource(factory.ModuleConfig{Type: "csv", Conf: map[string]any{
		"path": path, "layout": "wide", "column": 1,
	}})
	require.NoError(t, err)
	p, err := src.ReadProfile(context.Background(), shape)
	require.NoError(t, err)
	assertProfile(t, p)
}

func TestCSVSource_Malformed(t *testing.T) {
	path := writeFile(t, "bad.csv", "day,h1,h2,h3\n1,100.5,abc,102.5\n2,200.5,201.5,202.5\n")
	src, err := NewCSVSource(Config{Path: path, Column: 1, HeaderRows: 1, Layout: LayoutWide})
	require.NoError(t, err)
	_, err = src.ReadProfile(context.Background(), shape)
	assert.ErrorIs(t, err, model.ErrMalformedInput)

	path = writeFile(t, "neg.csv", "day,h1,h2,h3\n1,100.5,-1,102.5\n2,200.5,201.5,202.5\n")
	src, err = NewCSVSource(Config{Path: path, Column: 1, HeaderRows: 1, Layout: LayoutWide})
	require.NoError(t, err)
	_, err = src.ReadProfile(context.Background(), shape)
	assert.ErrorIs(t, err, model.ErrMalformedInput)

	_, err = NewCSVSource(Config{Path: path, Layout: "diagonal"})
	assert.ErrorIs(t, err, model.ErrMalformedInput)
}

func TestCSVSource_Cancelled(t *testing.T) {
	src, err := NewCSVSource(Config{Path: "unused.csv", Layout: LayoutColumn})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.ReadProfile(ctx, shape)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJSONSource(t *testing.T) {
	path := writeFile(t, "profile-8.json", "[[100.5, 101.5, 102.5], [200.5, 201.5, 202.5]]")
	src, err := inputs.NewProfileSource(factory.ModuleConfig{Type: "json", Conf: map[string]any{
		"path": filepath.Join(filepath.Dir(path), "profile-{nodes}.json"), "nodes": 8,
	}})
	require.NoError(t, err)
	p, err := src.ReadProfile(context.Background(), shape)
	require.NoError(t, err)
	assertProfile(t, p)

	_, err = src.ReadProfile(context.Background(), model.Shape{Days: 1, Hours: 3})
	assert.ErrorIs(t, err, model.ErrMalformedInput)

	missing, err := NewJSONSource(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	_, err = missing.ReadProfile(context.Background(), shape)
	assert.ErrorIs(t, err, model.ErrIO)
}
