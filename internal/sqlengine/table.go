package sqlengine

import (
	"sort"
	"time"

	"github.com/asen/hustlog/internal/model"
)

// EvalBatch runs q against one input batch, producing the filtered,
// projected, grouped, ordered, and limited output batch. now anchors
// any DATE() evaluation for the whole batch, so the clock is sampled
// once per batch rather than once per row.
func (q *Query) EvalBatch(batch model.RowBatch, now time.Time) (model.RowBatch, error) {
	var matched []model.Row
	for _, row := range batch.Rows {
		if q.stmt.Where != nil {
			ctx := newEvalCtx(row, q.stmt.Items, now)
			v, err := ctx.Eval(q.stmt.Where)
			if err != nil {
				return model.RowBatch{}, err
			}
			ok, err := coerceBool(v)
			if err != nil {
				return model.RowBatch{}, err
			}
			if !ok {
				continue
			}
		}
		matched = append(matched, row)
	}

	var out []model.Row
	var err error
	if q.hasAgg {
		out, err = q.evalGrouped(matched, now)
	} else {
		out, err = q.evalFlat(matched, now)
	}
	if err != nil {
		return model.RowBatch{}, err
	}

	if len(q.orderPos) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, op := range q.orderPos {
				c := model.Compare(out[i].Values[op.pos], out[j].Values[op.pos])
				if c == 0 {
					continue
				}
				if op.desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
		// OFFSET applies after sorting whenever ORDER BY is present, so
		// that "offset N" means "skip the first N rows of the sorted
		// result" rather than the first N rows encountered.
		out = applyOffsetLimit(out, q.offset, q.limit)
	} else {
		out = applyOffsetLimit(out, q.offset, q.limit)
	}

	return model.RowBatch{Rows: out}, nil
}

func applyOffsetLimit(rows []model.Row, offset, limit *int64) []model.Row {
	if offset != nil {
		o := int(*offset)
		if o >= len(rows) {
			return nil
		}
		if o > 0 {
			rows = rows[o:]
		}
	}
	if limit != nil {
		l := int(*limit)
		if l < len(rows) {
			rows = rows[:l]
		}
	}
	return rows
}

func (q *Query) evalFlat(rows []model.Row, now time.Time) ([]model.Row, error) {
	out := make([]model.Row, 0, len(rows))
	for _, row := range rows {
		values, err := q.projectRow(row, now)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Row{Names: q.outputNames(), Values: values})
	}
	return out, nil
}

func (q *Query) evalGrouped(rows []model.Row, now time.Time) ([]model.Row, error) {
	gt := newGroupTable()
	for _, row := range rows {
		ctx := newEvalCtx(row, q.stmt.Items, now)
		keyValues := make([]model.Value, len(q.groupPos))
		for i, pos := range q.groupPos {
			v, err := ctx.Eval(itemExpr(q.stmt.Items[pos]))
			if err != nil {
				return nil, err
			}
			keyValues[i] = v
		}
		key := groupKey(keyValues)
		gs := gt.get(key, keyValues, func() []accumulator {
			accs := make([]accumulator, len(q.stmt.Items))
			for i, k := range q.aggKinds {
				isStar := false
				if fc, ok := q.stmt.Items[i].Expr.(*FuncCall); ok {
					isStar = fc.Star
				}
				accs[i] = newAccumulator(k, isStar)
			}
			return accs
		})
		for i, it := range q.stmt.Items {
			acc := gs.accs[i]
			if q.aggKinds[i] == noAgg {
				v, err := ctx.Eval(itemExpr(it))
				if err != nil {
					return nil, err
				}
				if err := acc.Add(v); err != nil {
					return nil, err
				}
				continue
			}
			fc := it.Expr.(*FuncCall)
			var v model.Value
			if q.aggKinds[i] == aggCount && fc.Star {
				v = model.Bool(true)
			} else {
				var err error
				v, err = ctx.Eval(fc.Args[0])
				if err != nil {
					return nil, err
				}
			}
			if err := acc.Add(v); err != nil {
				return nil, err
			}
		}
	}

	groups := gt.inOrder()
	out := make([]model.Row, 0, len(groups))
	names := q.outputNames()
	for _, gs := range groups {
		values := make([]model.Value, len(gs.accs))
		for i, acc := range gs.accs {
			values[i] = acc.Result()
		}
		out = append(out, model.Row{Names: names, Values: values})
	}
	return out, nil
}

func itemExpr(it SelectItem) Expr {
	return it.Expr
}

func (q *Query) projectRow(row model.Row, now time.Time) ([]model.Value, error) {
	if len(q.stmt.Items) == 1 && q.stmt.Items[0].Star {
		return append([]model.Value(nil), row.Values...), nil
	}
	ctx := newEvalCtx(row, q.stmt.Items, now)
	values := make([]model.Value, len(q.stmt.Items))
	for i, it := range q.stmt.Items {
		v, err := ctx.Eval(it.Expr)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func (q *Query) outputNames() []string {
	names := make([]string, len(q.OutputSchema.Columns))
	for i, c := range q.OutputSchema.Columns {
		names[i] = c.Name
	}
	return names
}
