package sqlengine

import "github.com/asen/hustlog/internal/model"

// lazyState is the three-state machine a LazyNamedExpr moves through:
// Pending -> Evaluating -> Done(ok|err). Re-entering Evaluating for the
// same name means a cyclic reference.
type lazyState int

const (
	lazyPending lazyState = iota
	lazyEvaluating
	lazyDone
)

// lazyEntry is one named projection's memoized evaluation slot, scoped
// to a single row and discarded once that row is emitted.
type lazyEntry struct {
	name  string
	expr  Expr
	state lazyState
	val   model.Value
	err   error
}
