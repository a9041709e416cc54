package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/loadshare/core/model"
)

// nodeDTO is one record of a catalog file.
type nodeDTO struct {
	Bus        busID      `json:"bus" yaml:"bus"`
	WeightDict weightDict `json:"weightdict" yaml:"weightdict"`
}

// busID accepts numeric and string bus identifiers. Numbers keep their
// literal text so "7" and 7 name the same bus.
type busID string

func (b *busID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = busID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*b = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("bus: %w", err)
	}
	*b = busID(n.String())
	return nil
}

func (b *busID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: bus must be a scalar", node.Line)
	}
	*b = busID(node.Value)
	return nil
}

// weightDict keeps weight entries in file order. It accepts the list of
// single-key objects used by the reference data as well as a flat object.
type weightDict []model.WeightEntry

func (w *weightDict) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*w = nil
		return nil
	}
	var objects []json.RawMessage
	if data[0] == '{' {
		objects = []json.RawMessage{data}
	} else if err := json.Unmarshal(data, &objects); err != nil {
		return fmt.Errorf("weightdict: %w", err)
	}
	var out weightDict
	for _, raw := range objects {
		entries, err := decodeJSONObject(raw)
		if err != nil {
			return err
		}
		out = append(out, entries...)
	}
	*w = out
	return nil
}

func decodeJSONObject(raw json.RawMessage) ([]model.WeightEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("weightdict entry must be an object")
	}
	var out []model.WeightEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var val any
		if err := dec.Decode(&val); err != nil {
			return nil, err
		}
		num, ok := val.(json.Number)
		if !ok {
			if key == model.LoadAttribute {
				return nil, fmt.Errorf("%s weight must be numeric, got %v", key, val)
			}
			continue
		}
		f, err := num.Float64()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out = append(out, model.WeightEntry{Name: key, Value: f})
	}
	return out, nil
}

func (w *weightDict) UnmarshalYAML(node *yaml.Node) error {
	var maps []*yaml.Node
	switch node.Kind {
	case yaml.MappingNode:
		maps = []*yaml.Node{node}
	case yaml.SequenceNode:
		maps = node.Content
	default:
		return fmt.Errorf("line %d: weightdict must be a list or a mapping", node.Line)
	}
	var out weightDict
	for _, m := range maps {
		if m.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: weightdict entry must be a mapping", m.Line)
		}
		for i := 0; i+1 < len(m.Content); i += 2 {
			key, val := m.Content[i].Value, m.Content[i+1]
			f, err := strconv.ParseFloat(val.Value, 64)
			if val.Kind != yaml.ScalarNode || (val.Tag != "!!int" && val.Tag != "!!float") || err != nil {
				if key == model.LoadAttribute {
					return fmt.Errorf("line %d: %s weight must be numeric", val.Line, key)
				}
				continue
			}
			out = append(out, model.WeightEntry{Name: key, Value: f})
		}
	}
	*w = out
	return nil
}

func toRecords(op, path string, dtos []nodeDTO) ([]model.NodeRecord, error) {
	if len(dtos) == 0 {
		return nil, model.Malformed(op, path, "catalog has no nodes")
	}
	nodes := make([]model.NodeRecord, len(dtos))
	for i, d := range dtos {
		if d.Bus == "" {
			return nil, model.Malformed(op, path, "node %d: missing bus", i)
		}
		nodes[i] = model.NodeRecord{Bus: string(d.Bus), Weights: []model.WeightEntry(d.WeightDict)}
	}
	return nodes, nil
}
