package allocation

import (
	"github.com/kilianp07/loadshare/core/logger"
	"github.com/kilianp07/loadshare/core/model"
)

// Summary describes one allocation run.
type Summary struct {
	TotalWeight float64
	Nodes       int
	Entries     int
	// Excluded lists buses without any Load entry.
	Excluded []string
	// Fractions maps each bus to the sum of its Load shares.
	Fractions map[string]float64
}

// Engine validates inputs against the configured shape and runs the split.
type Engine struct {
	shape model.Shape
	log   logger.Logger
}

// NewEngine returns an Engine expecting profiles of the given shape.
// A nil logger disables logging.
func NewEngine(shape model.Shape, log logger.Logger) (*Engine, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Engine{shape: shape, log: log}, nil
}

// Shape returns the profile shape the engine expects.
func (e *Engine) Shape() model.Shape { return e.shape }

// Run validates the profile, computes the total Load weight and allocates.
func (e *Engine) Run(profile model.LoadProfile, nodes []model.NodeRecord) (model.AllocationResult, Summary, error) {
	if err := profile.Validate(e.shape); err != nil {
		return nil, Summary{}, err
	}
	if len(nodes) == 0 {
		return nil, Summary{}, model.Malformed("allocation.run", "", "node catalog is empty")
	}
	total := ComputeTotalWeight(nodes)
	e.log.Infof("total load weight %.4f over %d nodes", total, len(nodes))

	res, err := Allocate(profile, nodes, total)
	if err != nil {
		return nil, Summary{}, err
	}
	sum := Summary{TotalWeight: total, Nodes: len(nodes), Entries: len(res), Fractions: make(map[string]float64)}
	for _, n := range nodes {
		if !n.HasLoad() {
			sum.Excluded = append(sum.Excluded, n.Bus)
			e.log.Warnf("bus %s has no %s weight, excluded", n.Bus, model.LoadAttribute)
			continue
		}
		for _, v := range n.LoadWeights() {
			sum.Fractions[n.Bus] += v / total
		}
	}
	e.log.Debugw("allocation done", map[string]any{
		"entries":  sum.Entries,
		"excluded": len(sum.Excluded),
		"shape":    e.shape.String(),
	})
	return res, sum, nil
}
