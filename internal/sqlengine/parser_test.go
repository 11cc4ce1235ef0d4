package sqlengine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSelect_Basics(t *testing.T) {
	stmt, err := ParseSelect("SELECT a, b AS bee FROM t WHERE a > 1 AND b <> 'x' GROUP BY 1 ORDER BY 2 DESC LIMIT 10 OFFSET 5")
	require.NoError(t, err)
	require.Len(t, stmt.Items, 2)
	require.Equal(t, "a", stmt.Items[0].Alias)
	require.Equal(t, "bee", stmt.Items[1].Alias)
	require.NotNil(t, stmt.Where)
	require.Equal(t, []int{1}, stmt.GroupBy)
	require.Equal(t, []OrderItem{{Position: 2, Descending: true}}, stmt.OrderBy)
	require.Equal(t, int64(10), *stmt.Limit)
	require.Equal(t, int64(5), *stmt.Offset)
}

func TestParseSelect_Star(t *testing.T) {
	stmt, err := ParseSelect("SELECT * FROM t")
	require.NoError(t, err)
	require.Len(t, stmt.Items, 1)
	require.True(t, stmt.Items[0].Star)
}

func TestParseSelect_ConcatAndXor(t *testing.T) {
	stmt, err := ParseSelect("SELECT a || b AS joined WHERE c XOR d")
	require.NoError(t, err)
	bin, ok := stmt.Items[0].Expr.(*BinOp)
	require.True(t, ok)
	require.Equal(t, "||", bin.Op)

	whereBin, ok := stmt.Where.(*BinOp)
	require.True(t, ok)
	require.Equal(t, "XOR", whereBin.Op)
}

func TestParseSelect_Aggregates(t *testing.T) {
	stmt, err := ParseSelect("SELECT COUNT(*), COUNT(DISTINCT a), SUM(b) FROM t GROUP BY 1")
	require.NoError(t, err)
	fc0 := stmt.Items[0].Expr.(*FuncCall)
	require.Equal(t, "COUNT", fc0.Name)
	require.True(t, fc0.Star)

	fc1 := stmt.Items[1].Expr.(*FuncCall)
	require.True(t, fc1.Distinct)

	fc2 := stmt.Items[2].Expr.(*FuncCall)
	require.Equal(t, "SUM", fc2.Name)
}

func TestParseSelect_TrailingGarbage(t *testing.T) {
	_, err := ParseSelect("SELECT a FROM t EXTRA")
	require.Error(t, err)
}

func TestParseSelect_IsNull(t *testing.T) {
	stmt, err := ParseSelect("SELECT a WHERE a IS NOT NULL")
	require.NoError(t, err)
	check, ok := stmt.Where.(*IsNullCheck)
	require.True(t, ok)
	require.True(t, check.Not)
}
