package allocation

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/loadshare/core/model"
)

// Precision is the number of decimals kept in every allocated value.
const Precision = 2

// ComputeTotalWeight sums the value of every Load entry of every node.
func ComputeTotalWeight(nodes []model.NodeRecord) float64 {
	var weights []float64
	for _, n := range nodes {
		weights = append(weights, n.LoadWeights()...)
	}
	return floats.Sum(weights)
}

// Allocate scales profile by each Load entry's share of totalWeight.
// Entries are emitted in node order, then weightdict order. Nodes without a
// Load entry are skipped. A non-positive or non-finite totalWeight fails with
// ErrDegenerateWeights before any value is computed.
func Allocate(profile model.LoadProfile, nodes []model.NodeRecord, totalWeight float64) (model.AllocationResult, error) {
	if totalWeight <= 0 || math.IsNaN(totalWeight) || math.IsInf(totalWeight, 0) {
		return nil, &model.OpError{
			Op:   "allocation.allocate",
			Kind: model.KindDegenerateWeights,
			Err:  fmt.Errorf("total Load weight must be positive, got %v", totalWeight),
		}
	}
	res := make(model.AllocationResult, 0, len(nodes))
	for _, n := range nodes {
		for _, v := range n.LoadWeights() {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, model.Malformed("allocation.allocate", "", "bus %s: invalid Load weight %v", n.Bus, v)
			}
			res = append(res, model.BusProfile{Bus: n.Bus, Profile: scale(profile, v/totalWeight)})
		}
	}
	return res, nil
}

func scale(profile model.LoadProfile, fraction float64) model.LoadProfile {
	out := make(model.LoadProfile, len(profile))
	for d, row := range profile {
		out[d] = make([]float64, len(row))
		for h, v := range row {
			out[d][h] = round(v * fraction)
		}
	}
	return out
}

// round keeps Precision decimals of the exact binary value, ties to even.
// 2.675 is stored just below the tie and becomes 2.67.
func round(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', Precision, 64), 64)
	if err != nil {
		return v
	}
	return r
}
