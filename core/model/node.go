package model

// LoadAttribute is the weightdict key carrying a node's static share weight.
const LoadAttribute = "Load"

// WeightEntry is one named attribute of a node's weightdict.
type WeightEntry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// IsLoad reports whether the entry carries the Load weight.
func (e WeightEntry) IsLoad() bool { return e.Name == LoadAttribute }

// NodeRecord identifies a bus and owns its ordered weight entries.
// Several entries may carry the Load attribute; each one is allocated
// independently.
type NodeRecord struct {
	Bus     string        `json:"bus"`
	Weights []WeightEntry `json:"weightdict"`
}

// LoadWeights returns the values of all Load entries in weightdict order.
func (n NodeRecord) LoadWeights() []float64 {
	var out []float64
	for _, w := range n.Weights {
		if w.IsLoad() {
			out = append(out, w.Value)
		}
	}
	return out
}

// HasLoad reports whether at least one entry carries the Load attribute.
func (n NodeRecord) HasLoad() bool {
	for _, w := range n.Weights {
		if w.IsLoad() {
			return true
		}
	}
	return false
}
