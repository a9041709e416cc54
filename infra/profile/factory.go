package profile

import (
	"github.com/kilianp07/loadshare/core/factory"
	"github.com/kilianp07/loadshare/core/inputs"
	"github.com/kilianp07/loadshare/core/model"
)

func decode(conf map[string]any) (Config, error) {
	c := defaultConfig()
	if err := factory.Decode(conf, &c); err != nil {
		return Config{}, err
	}
	if n, ok := conf["nodes"].(int); ok {
		c.Path = model.ExpandNodes(c.Path, n)
	}
	return c, nil
}

// init registers the built-in profile sources.
func init() {
	_ = inputs.RegisterProfileSource("xlsx", func(conf map[string]any) (inputs.ProfileSource, error) {
		c, err := decode(conf)
		if err != nil {
			return nil, err
		}
		return NewXLSXSource(c)
	})
	_ = inputs.RegisterProfileSource("csv", func(conf map[string]any) (inputs.ProfileSource, error) {
		c, err := decode(conf)
		if err != nil {
			return nil, err
		}
		return NewCSVSource(c)
	})
	_ = inputs.RegisterProfileSource("json", func(conf map[string]any) (inputs.ProfileSource, error) {
		c, err := decode(conf)
		if err != nil {
			return nil, err
		}
		return NewJSONSource(c.Path)
	})
}
