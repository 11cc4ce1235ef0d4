package sqlengine

import (
	"testing"

	"github.com/asen/hustlog/internal/model"
	"github.com/stretchr/testify/require"
)

func TestSumAcc_EmptyIsNull(t *testing.T) {
	a := newAccumulator(aggSum, false)
	require.Equal(t, model.Null(), a.Result())
}

func TestSumAcc_SkipsNulls(t *testing.T) {
	a := newAccumulator(aggSum, false)
	require.NoError(t, a.Add(model.Null()))
	require.NoError(t, a.Add(model.Long(3)))
	require.NoError(t, a.Add(model.Long(4)))
	require.Equal(t, model.Long(7), a.Result())
}

func TestSumAcc_RejectsNonNumeric(t *testing.T) {
	a := newAccumulator(aggSum, false)
	require.Error(t, a.Add(model.Str("x")))
}

func TestAvgAcc(t *testing.T) {
	a := newAccumulator(aggAvg, false)
	require.NoError(t, a.Add(model.Long(2)))
	require.NoError(t, a.Add(model.Long(4)))
	require.Equal(t, model.Double(3), a.Result())
}

func TestMinMaxAcc(t *testing.T) {
	min := newAccumulator(aggMin, false)
	max := newAccumulator(aggMax, false)
	for _, v := range []model.Value{model.Long(5), model.Long(1), model.Long(9)} {
		require.NoError(t, min.Add(v))
		require.NoError(t, max.Add(v))
	}
	require.Equal(t, model.Long(1), min.Result())
	require.Equal(t, model.Long(9), max.Result())
}

func TestCountDistinctAcc(t *testing.T) {
	a := newAccumulator(aggCountDistinct, false)
	for _, v := range []model.Value{model.Str("a"), model.Str("b"), model.Str("a"), model.Null()} {
		require.NoError(t, a.Add(v))
	}
	require.Equal(t, model.Long(2), a.Result())
}

func TestCountAcc_Star(t *testing.T) {
	a := newAccumulator(aggCount, true)
	require.NoError(t, a.Add(model.Bool(true)))
	require.NoError(t, a.Add(model.Bool(true)))
	require.Equal(t, model.Long(2), a.Result())
}
