package grokparser

import (
	"fmt"
	"strings"
	"time"

	"github.com/asen/hustlog/internal/errs"
	"github.com/asen/hustlog/internal/model"
	"github.com/asen/hustlog/internal/tsfmt"
)

// ParseSchemaColumnFlag parses one --grok-schema-columns value:
// "[+]alias1[,alias2,...][:type[:fmt]]". The leading '+' marks the
// column required; the first alias becomes the column's canonical
// name. localOffsetSeconds is snapshotted into any ts-typed column so
// partial-date parses can be completed deterministically.
func ParseSchemaColumnFlag(raw string, localOffsetSeconds int) (model.ColumnDef, error) {
	s := raw
	required := false
	if strings.HasPrefix(s, "+") {
		required = true
		s = s[1:]
	}

	aliasPart := s
	typePart := "str"
	fmtPart := ""
	if idx := strings.Index(s, ":"); idx >= 0 {
		aliasPart = s[:idx]
		rest := s[idx+1:]
		if j := strings.Index(rest, ":"); j >= 0 {
			typePart = rest[:j]
			fmtPart = rest[j+1:]
		} else {
			typePart = rest
		}
	}

	aliases := strings.Split(aliasPart, ",")
	for i := range aliases {
		aliases[i] = strings.TrimSpace(aliases[i])
	}
	if len(aliases) == 0 || aliases[0] == "" {
		return model.ColumnDef{}, errs.New(errs.ConfigError, fmt.Sprintf("schema column %q has no alias", raw))
	}

	tag, err := parseTypeTag(typePart)
	if err != nil {
		return model.ColumnDef{}, errs.Wrap(errs.ConfigError, fmt.Sprintf("schema column %q", raw), err)
	}

	col := model.ColumnDef{
		Name:     model.Intern(aliases[0]),
		Tag:      tag,
		Aliases:  aliases,
		Required: required,
	}
	if tag == model.TimestampT {
		if fmtPart == "" {
			return model.ColumnDef{}, errs.New(errs.ConfigError, fmt.Sprintf("schema column %q: type ts requires a format", raw))
		}
		col.TSFormat = tsfmt.Compile(fmtPart, localOffsetSeconds)
	}
	return col, nil
}

func parseTypeTag(t string) (model.Tag, error) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "str":
		return model.StrT, nil
	case "int", "long":
		return model.LongT, nil
	case "float", "double":
		return model.DoubleT, nil
	case "bool":
		return model.BoolT, nil
	case "null":
		return model.NullT, nil
	case "ts":
		return model.TimestampT, nil
	default:
		return model.NullT, fmt.Errorf("unknown type %q", t)
	}
}

// LocalOffsetSeconds returns the current process's local-timezone UTC
// offset, used as the snapshot baked into ts-typed columns.
func LocalOffsetSeconds() int {
	_, off := time.Now().Zone()
	return off
}
