package profile

import (
	"context"
	"encoding/json"
	"os"

	"github.com/kilianp07/loadshare/core/model"
)

// JSONSource reads a profile stored as a [[...], ...] array of days.
type JSONSource struct {
	path string
}

// NewJSONSource returns a source reading path.
func NewJSONSource(path string) (*JSONSource, error) {
	if path == "" {
		return nil, model.Malformed("profile.json", "", "path is required")
	}
	return &JSONSource{path: path}, nil
}

func (s *JSONSource) ReadProfile(ctx context.Context, shape model.Shape) (model.LoadProfile, error) {
	const op = "profile.json"
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, model.IOError(op, s.path, err)
	}
	var p model.LoadProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, model.Malformed(op, s.path, "decode: %v", err)
	}
	if err := p.Validate(shape); err != nil {
		return nil, err
	}
	return p, nil
}
