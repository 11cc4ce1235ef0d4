package grokparser

import (
	"testing"
	"time"

	"github.com/asen/hustlog/internal/model"
	"github.com/asen/hustlog/internal/tsfmt"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(RegistryOptions{})
	require.NoError(t, err)
	return r
}

func TestParseOne_MatchesAndConvertsTypedColumns(t *testing.T) {
	r := testRegistry(t)
	pattern, err := r.Compile(`%{INT:pid:int} %{WORD:level} %{GREEDYDATA:message}`)
	require.NoError(t, err)

	schema := &model.Schema{Columns: []model.ColumnDef{
		{Name: "pid", Tag: model.LongT, Aliases: []string{"pid"}, Required: true},
		{Name: "level", Tag: model.StrT, Aliases: []string{"level"}},
		{Name: "message", Tag: model.StrT, Aliases: []string{"message"}},
	}}

	rec, ok, err := ParseOne(pattern, schema, "1234 WARN disk nearly full")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, model.Long(1234), rec.Fields["pid"])
	require.Equal(t, model.Str("WARN"), rec.Fields["level"])
	require.Equal(t, model.Str("disk nearly full"), rec.Fields["message"])
}

func TestParseOne_NoMatchIsNotAnError(t *testing.T) {
	r := testRegistry(t)
	pattern, err := r.Compile(`%{INT:pid:int}$`)
	require.NoError(t, err)

	schema := &model.Schema{Columns: []model.ColumnDef{{Name: "pid", Tag: model.LongT, Aliases: []string{"pid"}}}}
	_, ok, err := ParseOne(pattern, schema, "not a number at all")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestParseOne_RequiredColumnMissingRejectsRecord(t *testing.T) {
	r := testRegistry(t)
	pattern, err := r.Compile(`%{WORD:level}`)
	require.NoError(t, err)

	schema := &model.Schema{Columns: []model.ColumnDef{
		{Name: "pid", Tag: model.LongT, Aliases: []string{"pid"}, Required: true},
	}}
	_, ok, err := ParseOne(pattern, schema, "WARN")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestParseOne_OptionalMissingColumnBecomesNull(t *testing.T) {
	r := testRegistry(t)
	pattern, err := r.Compile(`%{WORD:level}`)
	require.NoError(t, err)

	schema := &model.Schema{Columns: []model.ColumnDef{
		{Name: "pid", Tag: model.LongT, Aliases: []string{"pid"}},
		{Name: "level", Tag: model.StrT, Aliases: []string{"level"}},
	}}
	rec, ok, err := ParseOne(pattern, schema, "WARN")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, rec.Fields["pid"].IsNull())
	require.Equal(t, model.Str("WARN"), rec.Fields["level"])
}

func TestConvert_AllTags(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	v, ok := convert(model.ColumnDef{Tag: model.StrT}, "hello", now)
	require.True(t, ok)
	require.Equal(t, model.Str("hello"), v)

	v, ok = convert(model.ColumnDef{Tag: model.BoolT}, "true", now)
	require.True(t, ok)
	require.Equal(t, model.Bool(true), v)

	_, ok = convert(model.ColumnDef{Tag: model.BoolT}, "nope", now)
	require.False(t, ok)

	v, ok = convert(model.ColumnDef{Tag: model.LongT}, "42", now)
	require.True(t, ok)
	require.Equal(t, model.Long(42), v)

	v, ok = convert(model.ColumnDef{Tag: model.DoubleT}, "3.5", now)
	require.True(t, ok)
	require.Equal(t, model.Double(3.5), v)

	v, ok = convert(model.ColumnDef{Tag: model.NullT}, "anything", now)
	require.True(t, ok)
	require.True(t, v.IsNull())

	tsCol := model.ColumnDef{Tag: model.TimestampT, TSFormat: tsfmt.Compile("%b %e %H:%M:%S", 0)}
	v, ok = convert(tsCol, "Mar  5 10:20:30", now)
	require.True(t, ok)
	require.Equal(t, model.TimestampT, v.Tag)
	require.Equal(t, 2024, v.TS.Year())
}
