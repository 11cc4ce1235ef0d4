// Package model holds the typed value and row representations that flow
// between pipeline stages.
package model

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Tag identifies the runtime type carried by a Value.
type Tag int

const (
	NullT Tag = iota
	BoolT
	LongT
	DoubleT
	TimestampT
	StrT
)

func (t Tag) String() string {
	switch t {
	case NullT:
		return "null"
	case BoolT:
		return "bool"
	case LongT:
		return "long"
	case DoubleT:
		return "double"
	case TimestampT:
		return "timestamp"
	case StrT:
		return "str"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the types a parsed or computed field can
// hold. Zero value is Null.
type Value struct {
	Tag    Tag
	Bool   bool
	Long   int64
	Double float64
	TS     time.Time
	Str    string
}

func Null() Value                    { return Value{Tag: NullT} }
func Bool(b bool) Value              { return Value{Tag: BoolT, Bool: b} }
func Long(i int64) Value             { return Value{Tag: LongT, Long: i} }
func Double(f float64) Value         { return Value{Tag: DoubleT, Double: f} }
func Timestamp(t time.Time) Value    { return Value{Tag: TimestampT, TS: t} }
func Str(s string) Value             { return Value{Tag: StrT, Str: s} }

func (v Value) IsNull() bool { return v.Tag == NullT }

// AsFloat64 returns the numeric value as float64, coercing Long->Double.
// Only valid for LongT/DoubleT.
func (v Value) AsFloat64() float64 {
	if v.Tag == LongT {
		return float64(v.Long)
	}
	return v.Double
}

func (v Value) IsNumeric() bool { return v.Tag == LongT || v.Tag == DoubleT }

// ToText renders the canonical display form used by sinks and string
// concatenation ("Null -> NULL", bool -> true/false, numeric canonical
// decimal, timestamp ISO-like, string unchanged).
func (v Value) ToText() string {
	switch v.Tag {
	case NullT:
		return "NULL"
	case BoolT:
		if v.Bool {
			return "true"
		}
		return "false"
	case LongT:
		return strconv.FormatInt(v.Long, 10)
	case DoubleT:
		return strconv.FormatFloat(v.Double, 'g', -1, 64)
	case TimestampT:
		return v.TS.Format("2006-01-02T15:04:05.999999999Z07:00")
	case StrT:
		return v.Str
	default:
		return ""
	}
}

func (v Value) String() string {
	return fmt.Sprintf("%s(%s)", v.Tag, v.ToText())
}

// rank returns the ordering rank of a value's tag bucket: Null < Bool <
// numeric/timestamp < Str.
func rank(v Value) int {
	switch v.Tag {
	case NullT:
		return 0
	case BoolT:
		return 1
	case LongT, DoubleT, TimestampT:
		return 2
	case StrT:
		return 3
	default:
		return 4
	}
}

// Equal implements the spec's cross-tag equality: numeric tags compare by
// coercing Long to Double; Str compares bytes; Bool compares booleans;
// Timestamp compares instants; Null equals only Null.
func Equal(a, b Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		return a.AsFloat64() == b.AsFloat64()
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case NullT:
		return true
	case BoolT:
		return a.Bool == b.Bool
	case TimestampT:
		return a.TS.Equal(b.TS)
	case StrT:
		return a.Str == b.Str
	default:
		return false
	}
}

// Compare implements the global TypedValue ordering: Null < Bool <
// Long/Double/Timestamp (numerically compared) < Str. Returns -1, 0, 1.
func Compare(a, b Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case 0:
		return 0
	case 1:
		if a.Bool == b.Bool {
			return 0
		}
		if !a.Bool {
			return -1
		}
		return 1
	case 2:
		av, bv := numericInstant(a), numericInstant(b)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case 3:
		switch {
		case a.Str < b.Str:
			return -1
		case a.Str > b.Str:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

// numericInstant maps Long/Double/Timestamp onto one comparable float64
// axis: timestamps compare by nanosecond instant, numerics by value.
func numericInstant(v Value) float64 {
	if v.Tag == TimestampT {
		return float64(v.TS.UnixNano())
	}
	return v.AsFloat64()
}

// HashKey returns a canonical string key used for hashing/grouping: NaN
// is canonicalized to a single pattern, timestamps key by nanosecond
// instant, strings key by their bytes behind a tag prefix.
func (v Value) HashKey() string {
	switch v.Tag {
	case NullT:
		return "N"
	case BoolT:
		if v.Bool {
			return "B1"
		}
		return "B0"
	case LongT:
		return "L" + strconv.FormatInt(v.Long, 10)
	case DoubleT:
		d := v.Double
		if math.IsNaN(d) {
			return "D" + strconv.FormatUint(math.Float64bits(math.NaN()), 16)
		}
		return "D" + strconv.FormatUint(math.Float64bits(d), 16)
	case TimestampT:
		return "T" + strconv.FormatInt(v.TS.UnixNano(), 10)
	case StrT:
		return "S" + v.Str
	default:
		return ""
	}
}
