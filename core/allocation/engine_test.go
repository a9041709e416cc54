package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/loadshare/core/model"
)

func TestNewEngine_RejectsBadShape(t *testing.T) {
	_, err := NewEngine(model.Shape{Days: 3}, nil)
	assert.ErrorIs(t, err, model.ErrMalformedInput)
}

func TestEngineRun(t *testing.T) {
	eng, err := NewEngine(model.Shape{Days: 1, Hours: 2}, nil)
	require.NoError(t, err)
	nodes := []model.NodeRecord{
		load("1", 25),
		{Bus: "9", Weights: []model.WeightEntry{{Name: "Wind", Value: 1}}},
		load("2", 75),
	}
	res, sum, err := eng.Run(model.LoadProfile{{10, 20}}, nodes)
	require.NoError(t, err)
	assert.Len(t, res, 2)
	assert.Equal(t, 100.0, sum.TotalWeight)
	assert.Equal(t, 3, sum.Nodes)
	assert.Equal(t, 2, sum.Entries)
	assert.Equal(t, []string{"9"}, sum.Excluded)
	assert.InDelta(t, 0.25, sum.Fractions["1"], 1e-12)
	assert.InDelta(t, 0.75, sum.Fractions["2"], 1e-12)
}

func TestEngineRun_Errors(t *testing.T) {
	eng, err := NewEngine(model.Shape{Days: 1, Hours: 2}, nil)
	require.NoError(t, err)

	_, _, err = eng.Run(model.LoadProfile{{10, 20, 30}}, []model.NodeRecord{load("1", 1)})
	assert.ErrorIs(t, err, model.ErrMalformedInput)

	_, _, err = eng.Run(model.LoadProfile{{10, 20}}, nil)
	assert.ErrorIs(t, err, model.ErrMalformedInput)

	_, _, err = eng.Run(model.LoadProfile{{10, 20}}, []model.NodeRecord{load("1", 0)})
	assert.ErrorIs(t, err, model.ErrDegenerateWeights)
}
