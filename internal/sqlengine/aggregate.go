package sqlengine

import (
	"fmt"

	"github.com/asen/hustlog/internal/errs"
	"github.com/asen/hustlog/internal/model"
)

// accumulator folds one projection's values across a group. Null inputs
// are ignored by every kind except Count(*), matching standard SQL
// aggregate semantics; an empty (all-Null or zero-row) group yields
// Null from Sum/Avg/Min/Max and zero from Count/CountDistinct.
type accumulator interface {
	Add(v model.Value) error
	Result() model.Value
}

func newAccumulator(k aggKind, isStar bool) accumulator {
	switch k {
	case aggCount:
		return &countAcc{isStar: isStar}
	case aggCountDistinct:
		return &countDistinctAcc{seen: make(map[string]bool)}
	case aggSum:
		return &sumAcc{}
	case aggAvg:
		return &avgAcc{}
	case aggMin:
		return &minMaxAcc{wantMax: false}
	case aggMax:
		return &minMaxAcc{wantMax: true}
	default:
		return &passthroughAcc{}
	}
}

// countAcc implements both COUNT(*) and COUNT(expr): the caller feeds
// it Bool(true) for COUNT(*) rows (always counted) and the projected
// value otherwise (counted unless Null).
type countAcc struct {
	n     int64
	isStar bool
}

func (a *countAcc) Add(v model.Value) error {
	if a.isStar || !v.IsNull() {
		a.n++
	}
	return nil
}
func (a *countAcc) Result() model.Value { return model.Long(a.n) }

type countDistinctAcc struct {
	seen map[string]bool
	n    int64
}

func (a *countDistinctAcc) Add(v model.Value) error {
	if v.IsNull() {
		return nil
	}
	k := v.HashKey()
	if !a.seen[k] {
		a.seen[k] = true
		a.n++
	}
	return nil
}
func (a *countDistinctAcc) Result() model.Value { return model.Long(a.n) }

type sumAcc struct {
	any     bool
	isFloat bool
	l       int64
	d       float64
}

func (a *sumAcc) Add(v model.Value) error {
	if v.IsNull() {
		return nil
	}
	if !v.IsNumeric() {
		return errs.New(errs.QueryError, fmt.Sprintf("SUM() requires a numeric expression, got %s", v.Tag))
	}
	a.any = true
	if v.Tag == model.DoubleT {
		if !a.isFloat {
			a.d = float64(a.l)
			a.isFloat = true
		}
		a.d += v.Double
	} else if a.isFloat {
		a.d += float64(v.Long)
	} else {
		a.l += v.Long
	}
	return nil
}
func (a *sumAcc) Result() model.Value {
	if !a.any {
		return model.Null()
	}
	if a.isFloat {
		return model.Double(a.d)
	}
	return model.Long(a.l)
}

type avgAcc struct {
	sum   float64
	count int64
}

func (a *avgAcc) Add(v model.Value) error {
	if v.IsNull() {
		return nil
	}
	if !v.IsNumeric() {
		return errs.New(errs.QueryError, fmt.Sprintf("AVG() requires a numeric expression, got %s", v.Tag))
	}
	a.sum += v.AsFloat64()
	a.count++
	return nil
}
func (a *avgAcc) Result() model.Value {
	if a.count == 0 {
		return model.Null()
	}
	return model.Double(a.sum / float64(a.count))
}

type minMaxAcc struct {
	wantMax bool
	has     bool
	best    model.Value
}

func (a *minMaxAcc) Add(v model.Value) error {
	if v.IsNull() {
		return nil
	}
	if !a.has {
		a.best = v
		a.has = true
		return nil
	}
	c := model.Compare(v, a.best)
	if (a.wantMax && c > 0) || (!a.wantMax && c < 0) {
		a.best = v
	}
	return nil
}
func (a *minMaxAcc) Result() model.Value {
	if !a.has {
		return model.Null()
	}
	return a.best
}

// passthroughAcc backs non-aggregate GROUP BY projections: every row in
// a group has the same value for these by construction, so it just
// keeps the first.
type passthroughAcc struct {
	has bool
	v   model.Value
}

func (a *passthroughAcc) Add(v model.Value) error {
	if !a.has {
		a.v = v
		a.has = true
	}
	return nil
}
func (a *passthroughAcc) Result() model.Value { return a.v }
