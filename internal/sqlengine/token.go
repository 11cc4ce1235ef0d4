package sqlengine

// tokenKind enumerates the lexical tokens of the small SELECT dialect
// this package parses: a single SELECT with WHERE / GROUP BY / ORDER BY
// / LIMIT / OFFSET, arithmetic, comparison, logical and string-concat
// operators, and a handful of functions (DATE, COUNT, SUM, AVG, MIN,
// MAX).
type tokenKind int

const (
	tEOF tokenKind = iota
	tIdent
	tQuotedIdent
	tNumber
	tString
	tStar
	tComma
	tLParen
	tRParen
	tDot
	tPlus
	tMinus
	tSlash
	tPercent
	tConcat // ||
	tEq
	tNeq
	tLt
	tLte
	tGt
	tGte

	// keywords
	tSelect
	tFrom
	tWhere
	tGroup
	tOrder
	tBy
	tAs
	tAnd
	tOr
	tXor
	tNot
	tIs
	tNull
	tTrue
	tFalse
	tLimit
	tOffset
	tAsc
	tDesc
	tDistinct
)

var keywords = map[string]tokenKind{
	"SELECT":   tSelect,
	"FROM":     tFrom,
	"WHERE":    tWhere,
	"GROUP":    tGroup,
	"ORDER":    tOrder,
	"BY":       tBy,
	"AS":       tAs,
	"AND":      tAnd,
	"OR":       tOr,
	"XOR":      tXor,
	"NOT":      tNot,
	"IS":       tIs,
	"NULL":     tNull,
	"TRUE":     tTrue,
	"FALSE":    tFalse,
	"LIMIT":    tLimit,
	"OFFSET":   tOffset,
	"ASC":      tAsc,
	"DESC":     tDesc,
	"DISTINCT": tDistinct,
}

type token struct {
	kind tokenKind
	text string
}
