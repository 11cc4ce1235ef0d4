package sink

import (
	"bytes"
	"testing"

	"github.com/asen/hustlog/internal/model"
	"github.com/stretchr/testify/require"
)

func TestSQLTextSink_DDLAndInsertBatching(t *testing.T) {
	var buf bytes.Buffer
	s := NewSQLTextSink(&buf, "events", 2)
	s.AddDDL = true

	require.NoError(t, s.Header(testOutputSchema()))
	require.NoError(t, s.WriteBatch(model.RowBatch{Rows: []model.Row{
		{Names: []string{"a", "b"}, Values: []model.Value{model.Str("it's"), model.Long(1)}},
		{Names: []string{"a", "b"}, Values: []model.Value{model.Null(), model.Long(2)}},
		{Names: []string{"a", "b"}, Values: []model.Value{model.Str("z"), model.Long(3)}},
	}}))
	require.NoError(t, s.Shutdown())

	out := buf.String()
	require.Contains(t, out, "CREATE TABLE events(a VARCHAR, b BIGINT);")
	require.Contains(t, out, "INSERT INTO events")
	require.Contains(t, out, "'it''s'")
	require.Contains(t, out, "NULL")
}
