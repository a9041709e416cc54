package mqtt

import (
	"github.com/kilianp07/loadshare/core/factory"
	"github.com/kilianp07/loadshare/core/outputs"
)

// init registers the MQTT publisher as a result writer.
func init() {
	_ = outputs.RegisterWriter("mqtt", func(conf map[string]any) (outputs.Writer, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPublisher(c)
	})
}
