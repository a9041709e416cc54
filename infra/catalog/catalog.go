package catalog

import (
	"context"
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/loadshare/core/model"
)

// DefaultPath is the catalog name used by the reference data set.
const DefaultPath = "{nodes}NodeData.json"

// Config configures a file catalog.
type Config struct {
	Path string `json:"path"`
	// ExpectNodes rejects catalogs with a different node count when positive.
	ExpectNodes int `json:"expect_nodes"`
}

type decodeFunc func(data []byte, out *[]nodeDTO) error

// FileCatalog reads node records from a JSON or YAML file.
type FileCatalog struct {
	op     string
	cfg    Config
	decode decodeFunc
}

// NewJSONCatalog returns a catalog reading the reference JSON format.
func NewJSONCatalog(cfg Config) (*FileCatalog, error) {
	return newFileCatalog("catalog.json", cfg, func(data []byte, out *[]nodeDTO) error {
		return json.Unmarshal(data, out)
	})
}

// NewYAMLCatalog returns a catalog reading the same structure from YAML.
func NewYAMLCatalog(cfg Config) (*FileCatalog, error) {
	return newFileCatalog("catalog.yaml", cfg, func(data []byte, out *[]nodeDTO) error {
		return yaml.Unmarshal(data, out)
	})
}

func newFileCatalog(op string, cfg Config, dec decodeFunc) (*FileCatalog, error) {
	if cfg.Path == "" {
		return nil, model.Malformed(op, "", "path is required")
	}
	return &FileCatalog{op: op, cfg: cfg, decode: dec}, nil
}

// Path returns the file the catalog reads.
func (c *FileCatalog) Path() string { return c.cfg.Path }

// Nodes reads and decodes the catalog file.
func (c *FileCatalog) Nodes(ctx context.Context) ([]model.NodeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(c.cfg.Path)
	if err != nil {
		return nil, model.IOError(c.op, c.cfg.Path, err)
	}
	var dtos []nodeDTO
	if err := c.decode(data, &dtos); err != nil {
		return nil, model.Malformed(c.op, c.cfg.Path, "decode: %v", err)
	}
	nodes, err := toRecords(c.op, c.cfg.Path, dtos)
	if err != nil {
		return nil, err
	}
	if c.cfg.ExpectNodes > 0 && len(nodes) != c.cfg.ExpectNodes {
		return nil, model.Malformed(c.op, c.cfg.Path, "expected %d nodes, got %d", c.cfg.ExpectNodes, len(nodes))
	}
	return nodes, nil
}
