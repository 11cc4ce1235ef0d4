package model

import (
	"sync"

	"github.com/asen/hustlog/internal/tsfmt"
)

// internTable interns field-name keys so repeated column names across
// rows share one backing string, matching the spec's "field-name keys
// are shared immutable text" invariant. Go strings are already
// immutable and share their backing array on slicing/assignment, so
// interning here only dedupes distinct allocations.
var internTable sync.Map // string -> string

// Intern returns a canonical copy of s, reusing a previously interned
// instance when one exists.
func Intern(s string) string {
	if v, ok := internTable.Load(s); ok {
		return v.(string)
	}
	internTable.Store(s, s)
	return s
}

// ColumnDef describes one schema column: its canonical name, its
// type tag, the ordered list of pattern-capture aliases to try when
// populating it, the timestamp format (when Tag==TimestampT), and
// whether the record must be rejected if the column never resolves.
type ColumnDef struct {
	Name     string
	Tag      Tag
	Aliases  []string
	TSFormat tsfmt.Format
	Required bool
}

// Schema is an ordered list of column definitions; order defines row
// layout.
type Schema struct {
	Name    string
	Columns []ColumnDef
}

func (s *Schema) IndexOf(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Row is one parsed/derived record: the schema-ordered field values,
// plus the raw text it was derived from (nil once the pipeline no
// longer needs it, e.g. after SQL evaluation synthesizes new columns).
type Row struct {
	Raw    *string
	Names  []string
	Values []Value
}

func (r Row) Get(name string) (Value, bool) {
	for i, n := range r.Names {
		if n == name {
			return r.Values[i], true
		}
	}
	return Null(), false
}

// RowBatch is the unit of transfer between pipeline stages after
// batching.
type RowBatch struct {
	Rows []Row
}
