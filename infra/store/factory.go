package store

import (
	"github.com/kilianp07/loadshare/core/factory"
	"github.com/kilianp07/loadshare/core/model"
	"github.com/kilianp07/loadshare/core/outputs"
)

type fileConf struct {
	Path   string `json:"path"`
	Indent bool   `json:"indent"`
	Title  string `json:"title"`
}

// init registers the built-in result writers.
func init() {
	_ = outputs.RegisterWriter("json", func(conf map[string]any) (outputs.Writer, error) {
		var c fileConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewJSONWriter(c.Path, c.Indent), nil
	})
	_ = outputs.RegisterWriter("csv", func(conf map[string]any) (outputs.Writer, error) {
		var c fileConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewCSVWriter(c.Path), nil
	})
	_ = outputs.RegisterWriter("sqlite", func(conf map[string]any) (outputs.Writer, error) {
		var c fileConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "loadshare.db"
		}
		if n, ok := conf["nodes"].(int); ok {
			c.Path = model.ExpandNodes(c.Path, n)
		}
		return NewSQLiteStore(c.Path), nil
	})
	_ = outputs.RegisterWriter("chart", func(conf map[string]any) (outputs.Writer, error) {
		var c fileConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewChartWriter(c.Path, c.Title), nil
	})
}
