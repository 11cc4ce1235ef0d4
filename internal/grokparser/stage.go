package grokparser

import (
	"time"

	"github.com/asen/hustlog/internal/model"
)

// ParseOne matches raw against pattern and, for each column in schema
// order, tries its aliases in order until one converts successfully.
// A required column that never converts rejects the whole record.
// Unknown/extra captures are ignored.
func ParseOne(pattern *CompiledPattern, schema *model.Schema, raw string) (model.ParsedRecord, bool, error) {
	captures, err := pattern.Match(raw)
	if err != nil {
		return model.ParsedRecord{}, false, err
	}
	if len(captures) == 0 {
		return model.ParsedRecord{}, false, nil
	}

	now := time.Now().UTC()
	fields := make(map[string]model.Value, len(schema.Columns))
	for _, col := range schema.Columns {
		val, ok := model.Value{}, false
		for _, alias := range col.Aliases {
			text, present := captures[alias]
			if !present {
				continue
			}
			if v, conv := convert(col, text, now); conv {
				val, ok = v, true
				break
			}
		}
		if !ok {
			if col.Required {
				return model.ParsedRecord{}, false, nil
			}
			val = model.Null()
		}
		fields[col.Name] = val
	}
	return model.ParsedRecord{Raw: raw, Fields: fields}, true, nil
}
