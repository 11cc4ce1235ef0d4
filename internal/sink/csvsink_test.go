package sink

import (
	"bytes"
	"testing"

	"github.com/asen/hustlog/internal/model"
	"github.com/stretchr/testify/require"
)

func testOutputSchema() *model.Schema {
	return &model.Schema{Name: "out", Columns: []model.ColumnDef{
		{Name: "a", Tag: model.StrT},
		{Name: "b", Tag: model.LongT},
	}}
}

func TestCSVSink_HeaderAndQuoting(t *testing.T) {
	var buf bytes.Buffer
	s := NewCSVSink(&buf)
	s.AddHeader = true

	require.NoError(t, s.Header(testOutputSchema()))
	require.NoError(t, s.WriteBatch(model.RowBatch{Rows: []model.Row{
		{Names: []string{"a", "b"}, Values: []model.Value{model.Str("has,comma"), model.Long(3)}},
		{Names: []string{"a", "b"}, Values: []model.Value{model.Null(), model.Long(4)}},
	}}))
	require.NoError(t, s.Shutdown())

	out := buf.String()
	require.Contains(t, out, "a,b\n")
	require.Contains(t, out, "\"has,comma\",3\n")
	require.Contains(t, out, "NULL,4\n")
}

func TestCSVSink_NoHeaderWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	s := NewCSVSink(&buf)
	require.NoError(t, s.Header(testOutputSchema()))
	require.NoError(t, s.WriteBatch(model.RowBatch{Rows: []model.Row{
		{Names: []string{"a", "b"}, Values: []model.Value{model.Str("x"), model.Long(1)}},
	}}))
	require.Equal(t, "x,1\n", buf.String())
}
