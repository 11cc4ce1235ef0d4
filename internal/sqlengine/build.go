package sqlengine

import (
	"fmt"

	"github.com/asen/hustlog/internal/errs"
	"github.com/asen/hustlog/internal/model"
	"github.com/asen/hustlog/internal/tsfmt"
)

// Query is a validated, built SELECT: its AST, whether it aggregates,
// the (zero-based) GROUP BY / ORDER BY positions, and its statically
// computed output schema. Immutable after Build, shared by value
// identity across concurrently evaluating batches.
type Query struct {
	stmt        *SelectStatement
	hasAgg      bool
	groupPos    []int // zero-based
	orderPos    []orderPos
	limit       *int64
	offset      *int64
	OutputSchema *model.Schema
	aggKinds    []aggKind // per select item, noAgg if not an aggregate
}

type orderPos struct {
	pos  int // zero-based
	desc bool
}

type aggKind int

const (
	noAgg aggKind = iota
	aggCount
	aggCountDistinct
	aggSum
	aggAvg
	aggMin
	aggMax
)

// Build parses sql and validates it against the design's rules,
// computing the static output schema against inputSchema.
func Build(sql string, inputSchema *model.Schema) (*Query, error) {
	stmt, err := ParseSelect(sql)
	if err != nil {
		return nil, errs.Wrap(errs.QueryError, "parsing SELECT", err)
	}

	hasWildcard := false
	for _, it := range stmt.Items {
		if it.Star {
			hasWildcard = true
		}
	}

	aggKinds := make([]aggKind, len(stmt.Items))
	hasAgg := false
	for i, it := range stmt.Items {
		if it.Star {
			continue
		}
		if fc, ok := it.Expr.(*FuncCall); ok {
			if k, isAgg := aggregateKind(fc); isAgg {
				aggKinds[i] = k
				hasAgg = true
			}
		}
	}

	if hasWildcard && hasAgg {
		return nil, errs.New(errs.QueryError, "wildcard (*) cannot be combined with aggregates")
	}

	groupPos := make([]int, 0, len(stmt.GroupBy))
	for _, pos := range stmt.GroupBy {
		if pos <= 0 || pos > len(stmt.Items) {
			return nil, errs.New(errs.QueryError, fmt.Sprintf("GROUP BY position %d is out of range", pos))
		}
		groupPos = append(groupPos, pos-1)
	}
	if len(groupPos) > 0 && !hasAgg {
		return nil, errs.New(errs.QueryError, "GROUP BY requires at least one aggregate projection")
	}

	if hasAgg {
		inGroup := make(map[int]bool, len(groupPos))
		for _, p := range groupPos {
			inGroup[p] = true
		}
		for i, k := range aggKinds {
			if k == noAgg && !inGroup[i] {
				return nil, errs.New(errs.QueryError, fmt.Sprintf("non-aggregate projection %d must be listed in GROUP BY", i+1))
			}
		}
	}

	orderPositions := make([]orderPos, 0, len(stmt.OrderBy))
	for _, oi := range stmt.OrderBy {
		if oi.Position <= 0 || oi.Position > len(stmt.Items) {
			return nil, errs.New(errs.QueryError, fmt.Sprintf("ORDER BY position %d is out of range", oi.Position))
		}
		orderPositions = append(orderPositions, orderPos{pos: oi.Position - 1, desc: oi.Descending})
	}

	outSchema, err := buildOutputSchema(stmt, aggKinds, inputSchema)
	if err != nil {
		return nil, err
	}

	return &Query{
		stmt:         stmt,
		hasAgg:       hasAgg,
		groupPos:     groupPos,
		orderPos:     orderPositions,
		limit:        stmt.Limit,
		offset:       stmt.Offset,
		OutputSchema: outSchema,
		aggKinds:     aggKinds,
	}, nil
}

func aggregateKind(fc *FuncCall) (aggKind, bool) {
	switch fc.Name {
	case "COUNT":
		if fc.Distinct {
			return aggCountDistinct, true
		}
		return aggCount, true
	case "SUM":
		return aggSum, true
	case "AVG":
		return aggAvg, true
	case "MIN":
		return aggMin, true
	case "MAX":
		return aggMax, true
	default:
		return noAgg, false
	}
}

func buildOutputSchema(stmt *SelectStatement, kinds []aggKind, input *model.Schema) (*model.Schema, error) {
	var cols []model.ColumnDef
	if len(stmt.Items) == 1 && stmt.Items[0].Star {
		return &model.Schema{Name: "result", Columns: append([]model.ColumnDef(nil), input.Columns...)}, nil
	}
	for i, it := range stmt.Items {
		if it.Star {
			return nil, errs.New(errs.QueryError, "wildcard must be the sole projection")
		}
		tag, tsFmt, err := staticType(it.Expr, kinds[i], input)
		if err != nil {
			return nil, errs.Wrap(errs.QueryError, "typing projection", err)
		}
		name := it.Alias
		if name == "" {
			name = fmt.Sprintf("col%d", i+1)
		}
		cols = append(cols, model.ColumnDef{Name: model.Intern(name), Tag: tag, TSFormat: tsFmt})
	}
	return &model.Schema{Name: "result", Columns: cols}, nil
}

// staticType implements the §4.5 output-typing rules.
func staticType(e Expr, kind aggKind, input *model.Schema) (model.Tag, tsfmt.Format, error) {
	switch kind {
	case aggCount, aggCountDistinct:
		return model.LongT, tsfmt.Format{}, nil
	case aggAvg:
		return model.DoubleT, tsfmt.Format{}, nil
	case aggSum, aggMin, aggMax:
		fc := e.(*FuncCall)
		if len(fc.Args) != 1 {
			return model.NullT, tsfmt.Format{}, fmt.Errorf("%s takes exactly one argument", fc.Name)
		}
		return staticType(fc.Args[0], noAgg, input)
	}

	switch n := e.(type) {
	case *Paren:
		return staticType(n.X, noAgg, input)
	case *Ident:
		if n.Quoted {
			return model.StrT, tsfmt.Format{}, nil
		}
		idx := input.IndexOf(n.Name)
		if idx < 0 {
			return model.NullT, tsfmt.Format{}, nil
		}
		return input.Columns[idx].Tag, input.Columns[idx].TSFormat, nil
	case *LongLit:
		return model.LongT, tsfmt.Format{}, nil
	case *DoubleLit:
		return model.DoubleT, tsfmt.Format{}, nil
	case *StrLit:
		return model.StrT, tsfmt.Format{}, nil
	case *BoolLit:
		return model.BoolT, tsfmt.Format{}, nil
	case *NullLit:
		return model.NullT, tsfmt.Format{}, nil
	case *UnaryNot:
		return model.BoolT, tsfmt.Format{}, nil
	case *IsNullCheck:
		return model.BoolT, tsfmt.Format{}, nil
	case *FuncCall:
		if n.Name == "DATE" {
			if len(n.Args) != 2 {
				return model.NullT, tsfmt.Format{}, fmt.Errorf("DATE() takes exactly 2 arguments")
			}
			lit, ok := n.Args[0].(*StrLit)
			if !ok {
				return model.NullT, tsfmt.Format{}, fmt.Errorf("DATE()'s first argument must be a quoted string literal")
			}
			return model.TimestampT, tsfmt.Compile(lit.Value, currentLocalOffsetSeconds()), nil
		}
		return model.NullT, tsfmt.Format{}, fmt.Errorf("function %s is not supported", n.Name)
	case *BinOp:
		switch n.Op {
		case "AND", "OR", "XOR", "=", "<>", "<", "<=", ">", ">=":
			return model.BoolT, tsfmt.Format{}, nil
		case "||":
			return model.StrT, tsfmt.Format{}, nil
		case "+", "-", "*", "/", "%":
			lt, _, err := staticType(n.Left, noAgg, input)
			if err != nil {
				return model.NullT, tsfmt.Format{}, err
			}
			rt, _, err := staticType(n.Right, noAgg, input)
			if err != nil {
				return model.NullT, tsfmt.Format{}, err
			}
			if lt == model.DoubleT || rt == model.DoubleT {
				return model.DoubleT, tsfmt.Format{}, nil
			}
			return model.LongT, tsfmt.Format{}, nil
		default:
			return model.NullT, tsfmt.Format{}, fmt.Errorf("unsupported operator %q", n.Op)
		}
	}
	return model.NullT, tsfmt.Format{}, fmt.Errorf("cannot type expression %T", e)
}

