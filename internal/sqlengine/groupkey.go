package sqlengine

import (
	"strings"

	"github.com/asen/hustlog/internal/model"
)

// groupKey is the string join of each GROUP BY column's HashKey, used to
// bucket rows while preserving first-seen group order.
func groupKey(values []model.Value) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(v.HashKey())
	}
	return b.String()
}

// groupState holds one group's bucket: its key column values (taken
// from the first row seen in the group) and per-projection accumulator
// state, in first-seen order across the whole input.
type groupState struct {
	keyValues []model.Value
	accs      []accumulator
}

// groupTable tracks groups in first-seen order, keyed by groupKey.
type groupTable struct {
	order []string
	rows  map[string]*groupState
}

func newGroupTable() *groupTable {
	return &groupTable{rows: make(map[string]*groupState)}
}

func (g *groupTable) get(key string, keyValues []model.Value, newAccs func() []accumulator) *groupState {
	if gs, ok := g.rows[key]; ok {
		return gs
	}
	gs := &groupState{keyValues: keyValues, accs: newAccs()}
	g.rows[key] = gs
	g.order = append(g.order, key)
	return gs
}

func (g *groupTable) inOrder() []*groupState {
	out := make([]*groupState, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, g.rows[k])
	}
	return out
}
