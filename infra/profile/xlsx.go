package profile

import (
	"context"
	"errors"
	"io/fs"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/loadshare/core/model"
)

// XLSXSource reads the load profile from an Excel workbook.
type XLSXSource struct {
	cfg Config
}

// NewXLSXSource validates cfg and returns a workbook source.
func NewXLSXSource(cfg Config) (*XLSXSource, error) {
	if err := cfg.validate("profile.xlsx"); err != nil {
		return nil, err
	}
	return &XLSXSource{cfg: cfg}, nil
}

// ReadProfile opens the workbook and reads the configured sheet.
func (s *XLSXSource) ReadProfile(ctx context.Context, shape model.Shape) (model.LoadProfile, error) {
	const op = "profile.xlsx"
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(s.cfg.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.IOError(op, s.cfg.Path, err)
		}
		return nil, model.Malformed(op, s.cfg.Path, "open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(s.cfg.Sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, model.Malformed(op, s.cfg.Path, "sheet %q: %v", s.cfg.Sheet, err)
	}
	return fromRows(op, s.cfg, rows, shape)
}
