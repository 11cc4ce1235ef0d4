package grokparser

import (
	"strconv"
	"time"

	"github.com/asen/hustlog/internal/model"
)

// convert converts a captured string into a TypedValue per col's type
// tag. Returns ok=false when the text cannot be converted to that tag.
func convert(col model.ColumnDef, text string, now time.Time) (model.Value, bool) {
	switch col.Tag {
	case model.StrT:
		return model.Str(text), true
	case model.BoolT:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return model.Value{}, false
		}
		return model.Bool(b), true
	case model.LongT:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return model.Value{}, false
		}
		return model.Long(n), true
	case model.DoubleT:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return model.Value{}, false
		}
		return model.Double(f), true
	case model.TimestampT:
		t, err := col.TSFormat.Parse(text, now.Year())
		if err != nil {
			return model.Value{}, false
		}
		return model.Timestamp(t), true
	case model.NullT:
		return model.Null(), true
	default:
		return model.Value{}, false
	}
}
