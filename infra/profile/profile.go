package profile

import (
	"strconv"
	"strings"

	"github.com/kilianp07/loadshare/core/model"
)

// Defaults matching the reference workbook: values in column C of the
// "LoadData.08.2018" sheet, below one header row.
const (
	DefaultSheet      = "LoadData.08.2018"
	DefaultColumn     = 2
	DefaultHeaderRows = 1
)

// Layout selects how a tabular source maps to [day][hour].
type Layout string

const (
	// LayoutColumn reads Days*Hours consecutive rows of a single column.
	LayoutColumn Layout = "column"
	// LayoutWide reads one row per day with Hours columns.
	LayoutWide Layout = "wide"
)

// Config holds the options shared by tabular sources.
type Config struct {
	Path       string `json:"path"`
	Sheet      string `json:"sheet"`
	Column     int    `json:"column"`
	HeaderRows int    `json:"header_rows"`
	Layout     Layout `json:"layout"`
}

func defaultConfig() Config {
	return Config{Sheet: DefaultSheet, Column: DefaultColumn, HeaderRows: DefaultHeaderRows, Layout: LayoutColumn}
}

func (c Config) validate(op string) error {
	if c.Path == "" {
		return model.Malformed(op, "", "path is required")
	}
	if c.Column < 0 || c.HeaderRows < 0 {
		return model.Malformed(op, c.Path, "column and header_rows must not be negative")
	}
	if c.Layout != LayoutColumn && c.Layout != LayoutWide {
		return model.Malformed(op, c.Path, "unknown layout %q", c.Layout)
	}
	return nil
}

// fromRows builds a profile from raw table rows according to cfg.
func fromRows(op string, cfg Config, rows [][]string, shape model.Shape) (model.LoadProfile, error) {
	p := model.NewLoadProfile(shape)
	for d := 0; d < shape.Days; d++ {
		for h := 0; h < shape.Hours; h++ {
			r, c := cfg.HeaderRows+shape.Hours*d+h, cfg.Column
			if cfg.Layout == LayoutWide {
				r, c = cfg.HeaderRows+d, cfg.Column+h
			}
			if r >= len(rows) || c >= len(rows[r]) {
				return nil, model.Malformed(op, cfg.Path, "missing value for day %d hour %d (row %d, column %d)", d, h, r, c)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rows[r][c]), 64)
			if err != nil {
				return nil, model.Malformed(op, cfg.Path, "row %d column %d: %v", r, c, err)
			}
			p[d][h] = v
		}
	}
	if err := p.Validate(shape); err != nil {
		return nil, err
	}
	return p, nil
}
