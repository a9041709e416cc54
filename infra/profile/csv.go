package profile

import (
	"context"
	"encoding/csv"
	"os"

	"github.com/kilianp07/loadshare/core/model"
)

// CSVSource reads the load profile from a CSV file.
type CSVSource struct {
	cfg Config
}

// NewCSVSource validates cfg and returns a CSV source.
func NewCSVSource(cfg Config) (*CSVSource, error) {
	if err := cfg.validate("profile.csv"); err != nil {
		return nil, err
	}
	return &CSVSource{cfg: cfg}, nil
}

// ReadProfile reads the whole file and extracts the configured cells.
func (s *CSVSource) ReadProfile(ctx context.Context, shape model.Shape) (model.LoadProfile, error) {
	const op = "profile.csv"
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.cfg.Path)
	if err != nil {
		return nil, model.IOError(op, s.cfg.Path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, model.Malformed(op, s.cfg.Path, "parse: %v", err)
	}
	return fromRows(op, s.cfg, rows, shape)
}
