package catalog

import (
	"github.com/kilianp07/loadshare/core/factory"
	"github.com/kilianp07/loadshare/core/inputs"
	"github.com/kilianp07/loadshare/core/model"
)

func decode(conf map[string]any) (Config, error) {
	c := Config{Path: DefaultPath}
	if err := factory.Decode(conf, &c); err != nil {
		return Config{}, err
	}
	if n, ok := conf["nodes"].(int); ok {
		c.Path = model.ExpandNodes(c.Path, n)
	}
	return c, nil
}

// init registers the built-in node catalogs.
func init() {
	_ = inputs.RegisterNodeCatalog("json", func(conf map[string]any) (inputs.NodeCatalog, error) {
		c, err := decode(conf)
		if err != nil {
			return nil, err
		}
		return NewJSONCatalog(c)
	})
	_ = inputs.RegisterNodeCatalog("yaml", func(conf map[string]any) (inputs.NodeCatalog, error) {
		c, err := decode(conf)
		if err != nil {
			return nil, err
		}
		return NewYAMLCatalog(c)
	})
}
