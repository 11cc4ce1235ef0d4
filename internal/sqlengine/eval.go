package sqlengine

import (
	"fmt"
	"time"

	"github.com/asen/hustlog/internal/errs"
	"github.com/asen/hustlog/internal/model"
	"github.com/asen/hustlog/internal/tsfmt"
)

// evalCtx is the per-row evaluation context: the row's static
// column-name -> value lookup, plus a fresh lazy-named-expression cache
// seeded from the query's aliased projections. Discarded after the row
// is emitted. now is passed in (rather than read with time.Now) so
// DATE() evaluation stays deterministic and testable, matching how
// grokparser's convert() takes its "now" as a parameter.
type evalCtx struct {
	row   model.Row
	cache map[string]*lazyEntry
	now   time.Time
}

func newEvalCtx(row model.Row, items []SelectItem, now time.Time) *evalCtx {
	cache := make(map[string]*lazyEntry)
	for _, it := range items {
		if it.Star || it.Alias == "" || it.Expr == nil {
			continue
		}
		// A bare column projected under its own name (e.g. "SELECT
		// host") parses with Alias == the column's own Ident.Name.
		// Seeding a cache entry for it would make resolving that name
		// re-enter the very entry being evaluated and report a false
		// cyclic reference; skip it so the lookup falls through to the
		// row context instead, the same as if it had never been named.
		if id, ok := it.Expr.(*Ident); ok && !id.Quoted && id.Name == it.Alias {
			continue
		}
		cache[it.Alias] = &lazyEntry{name: it.Alias, expr: it.Expr, state: lazyPending}
	}
	return &evalCtx{row: row, cache: cache, now: now}
}

// resolveName implements the design's identifier-resolution order:
// probe the lazy cache first (may recurse), then the static row
// context, defaulting to Null.
func (c *evalCtx) resolveName(name string) (model.Value, error) {
	if e, ok := c.cache[name]; ok {
		return c.evalLazy(e)
	}
	if v, ok := c.row.Get(name); ok {
		return v, nil
	}
	return model.Null(), nil
}

func (c *evalCtx) evalLazy(e *lazyEntry) (model.Value, error) {
	switch e.state {
	case lazyDone:
		return e.val, e.err
	case lazyEvaluating:
		return model.Null(), errs.New(errs.QueryError, fmt.Sprintf("cyclic expression reference: %s", e.name))
	}
	e.state = lazyEvaluating
	v, err := c.Eval(e.expr)
	e.state = lazyDone
	e.val, e.err = v, err
	return v, err
}

// Eval evaluates an expression AST node against this row context.
func (c *evalCtx) Eval(e Expr) (model.Value, error) {
	switch n := e.(type) {
	case *Ident:
		if n.Quoted {
			return model.Str(n.Name), nil
		}
		return c.resolveName(n.Name)
	case *LongLit:
		return model.Long(n.Value), nil
	case *DoubleLit:
		return model.Double(n.Value), nil
	case *StrLit:
		return model.Str(n.Value), nil
	case *BoolLit:
		return model.Bool(n.Value), nil
	case *NullLit:
		return model.Null(), nil
	case *Paren:
		return c.Eval(n.X)
	case *UnaryNot:
		v, err := c.Eval(n.X)
		if err != nil {
			return model.Value{}, err
		}
		b, err := coerceBool(v)
		if err != nil {
			return model.Value{}, err
		}
		return model.Bool(!b), nil
	case *IsNullCheck:
		v, err := c.Eval(n.X)
		if err != nil {
			return model.Value{}, err
		}
		isNull := v.IsNull()
		if n.Not {
			isNull = !isNull
		}
		return model.Bool(isNull), nil
	case *BinOp:
		return c.evalBinOp(n)
	case *FuncCall:
		return c.evalFunc(n)
	}
	return model.Value{}, errs.New(errs.QueryError, fmt.Sprintf("cannot evaluate expression of type %T", e))
}

func coerceBool(v model.Value) (bool, error) {
	switch v.Tag {
	case model.BoolT:
		return v.Bool, nil
	case model.NullT:
		return false, nil
	default:
		return false, errs.New(errs.QueryError, fmt.Sprintf("expected boolean, got %s", v.Tag))
	}
}

func (c *evalCtx) evalBinOp(n *BinOp) (model.Value, error) {
	switch n.Op {
	case "AND", "OR":
		left, err := c.Eval(n.Left)
		if err != nil {
			return model.Value{}, err
		}
		lb, err := coerceBool(left)
		if err != nil {
			return model.Value{}, err
		}
		if n.Op == "AND" && !lb {
			return model.Bool(false), nil
		}
		if n.Op == "OR" && lb {
			return model.Bool(true), nil
		}
		right, err := c.Eval(n.Right)
		if err != nil {
			return model.Value{}, err
		}
		rb, err := coerceBool(right)
		if err != nil {
			return model.Value{}, err
		}
		return model.Bool(rb), nil
	case "XOR":
		left, err := c.Eval(n.Left)
		if err != nil {
			return model.Value{}, err
		}
		right, err := c.Eval(n.Right)
		if err != nil {
			return model.Value{}, err
		}
		lb, err := coerceBool(left)
		if err != nil {
			return model.Value{}, err
		}
		rb, err := coerceBool(right)
		if err != nil {
			return model.Value{}, err
		}
		return model.Bool(lb != rb), nil
	}

	left, err := c.Eval(n.Left)
	if err != nil {
		return model.Value{}, err
	}
	right, err := c.Eval(n.Right)
	if err != nil {
		return model.Value{}, err
	}

	switch n.Op {
	case "=":
		return model.Bool(model.Equal(left, right)), nil
	case "<>":
		return model.Bool(!model.Equal(left, right)), nil
	case "<":
		return model.Bool(model.Compare(left, right) < 0), nil
	case "<=":
		return model.Bool(model.Compare(left, right) <= 0), nil
	case ">":
		return model.Bool(model.Compare(left, right) > 0), nil
	case ">=":
		return model.Bool(model.Compare(left, right) >= 0), nil
	case "||":
		return model.Str(left.ToText() + right.ToText()), nil
	case "+", "-", "*", "/", "%":
		return arith(n.Op, left, right)
	}
	return model.Value{}, errs.New(errs.QueryError, fmt.Sprintf("unsupported operator %q", n.Op))
}

func arith(op string, l, r model.Value) (model.Value, error) {
	if !l.IsNumeric() || !r.IsNumeric() {
		return model.Value{}, errs.New(errs.QueryError, fmt.Sprintf("arithmetic operator %q requires numeric operands", op))
	}
	useDouble := l.Tag == model.DoubleT || r.Tag == model.DoubleT
	lf, rf := l.AsFloat64(), r.AsFloat64()

	switch op {
	case "+":
		if useDouble {
			return model.Double(lf + rf), nil
		}
		return model.Long(l.Long + r.Long), nil
	case "-":
		if useDouble {
			return model.Double(lf - rf), nil
		}
		return model.Long(l.Long - r.Long), nil
	case "*":
		if useDouble {
			return model.Double(lf * rf), nil
		}
		return model.Long(l.Long * r.Long), nil
	case "/":
		if rf == 0 {
			return model.Value{}, errs.New(errs.QueryError, "Attempt to divide by zero")
		}
		if useDouble {
			return model.Double(lf / rf), nil
		}
		return model.Long(l.Long / r.Long), nil
	case "%":
		if rf == 0 {
			return model.Value{}, errs.New(errs.QueryError, "Attempt to divide by zero")
		}
		if useDouble {
			return model.Double(float64(int64(lf) % int64(rf))), nil
		}
		return model.Long(l.Long % r.Long), nil
	}
	return model.Value{}, errs.New(errs.QueryError, fmt.Sprintf("unsupported arithmetic operator %q", op))
}

// evalFunc evaluates a non-aggregate function call. Aggregate calls that
// form a whole projection are handled by the grouping path; an aggregate
// call anywhere else (nested in an expression, or in WHERE) reaches here
// and is reported as not supported.
func (c *evalCtx) evalFunc(fc *FuncCall) (model.Value, error) {
	switch fc.Name {
	case "DATE":
		if len(fc.Args) != 2 {
			return model.Value{}, errs.New(errs.QueryError, "DATE() takes exactly 2 arguments")
		}
		lit, ok := fc.Args[0].(*StrLit)
		if !ok {
			return model.Value{}, errs.New(errs.QueryError, "DATE()'s first argument must be a quoted string literal")
		}
		v, err := c.Eval(fc.Args[1])
		if err != nil {
			return model.Value{}, err
		}
		if v.Tag != model.StrT {
			return model.Value{}, errs.New(errs.QueryError, "DATE()'s second argument must evaluate to a string")
		}
		format := tsfmt.Compile(lit.Value, currentLocalOffsetSeconds())
		t, err := format.Parse(v.Str, c.now.Year())
		if err != nil {
			return model.Value{}, errs.Wrap(errs.QueryError, "DATE() parse failure", err)
		}
		return model.Timestamp(t), nil
	default:
		return model.Value{}, errs.New(errs.QueryError, fmt.Sprintf("function %s is not supported", fc.Name))
	}
}
