package framer

import (
	"testing"

	"github.com/asen/hustlog/internal/model"
	"github.com/stretchr/testify/require"
)

func texts(recs []model.RawRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Text
	}
	return out
}

func TestFeed_SplitsOnTerminatorsAndCollapsesEmpty(t *testing.T) {
	f := New(false)
	recs := f.Feed([]byte("line one\n\nline two\r\nline three"))
	require.Equal(t, []string{"line one", "line two"}, texts(recs))

	tail := f.Flush()
	require.Equal(t, []string{"line three"}, texts(tail))
}

func TestFeed_StripsPriorityPrefix(t *testing.T) {
	f := New(false)
	recs := f.Feed([]byte("<191>Apr 22 02:34:54 host app: hello\n"))
	require.Equal(t, []string{"Apr 22 02:34:54 host app: hello"}, texts(recs))
}

func TestFeed_MergesContinuationLines(t *testing.T) {
	f := New(true)
	recs := f.Feed([]byte("first line\n\tcontinued part\nsecond line\n"))
	require.Equal(t, []string{"first line continued part"}, texts(recs))

	tail := f.Flush()
	require.Equal(t, []string{"second line"}, texts(tail))
}

func TestFeed_WithoutMergeKeepsContinuationAsOwnRecord(t *testing.T) {
	f := New(false)
	recs := f.Feed([]byte("first line\n\tcontinued part\n"))
	require.Equal(t, []string{"first line", "\tcontinued part"}, texts(recs))
}

func TestFlush_OnEmptyBufferEmitsNothing(t *testing.T) {
	f := New(true)
	require.Empty(t, f.Flush())
}

func TestFeed_InvalidUTF8IsLossilyReplaced(t *testing.T) {
	f := New(false)
	recs := f.Feed([]byte{'a', 0xff, 'b', '\n'})
	require.Len(t, recs, 1)
	require.Contains(t, recs[0].Text, "�")
}
