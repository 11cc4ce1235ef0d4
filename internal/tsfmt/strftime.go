// Package tsfmt translates the chrono/strftime-style format strings used
// by grok schema columns and DATE() expressions into Go reference-time
// layouts, and tracks whether a format lacks a year or a timezone so
// partial timestamps can be completed deterministically.
package tsfmt

import "strings"

// Format is a compiled timestamp format: the Go layout string plus the
// flags the parser needs to backfill a partial parse.
type Format struct {
	Raw         string
	Layout      string
	HasYear     bool
	HasTZ       bool
	LocalOffset int // seconds east of UTC, snapshotted at compile time
}

var directiveToLayout = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'e': "_2",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'z': "-0700",
	'Z': "MST",
	'T': "15:04:05",
	'n': "\n",
	't': "\t",
}

// yearDirectives / tzDirectives mark which strftime verbs supply a year
// or a timezone offset/name.
var yearDirectives = "Yy"
var tzDirectives = "zZ"

// Compile translates a strftime-style format string (e.g. "%b %e
// %H:%M:%S") into a Format, recording whether the format can ever
// produce a year or a timezone.
func Compile(raw string, localOffsetSeconds int) Format {
	var b strings.Builder
	hasYear := false
	hasTZ := false
	i := 0
	for i < len(raw) {
		c := raw[i]
		if c == '%' && i+1 < len(raw) {
			d := raw[i+1]
			if d == '%' {
				b.WriteByte('%')
				i += 2
				continue
			}
			if layout, ok := directiveToLayout[d]; ok {
				b.WriteString(layout)
				if strings.IndexByte(yearDirectives, d) >= 0 {
					hasYear = true
				}
				if strings.IndexByte(tzDirectives, d) >= 0 {
					hasTZ = true
				}
				i += 2
				continue
			}
			// unknown directive: pass through literally
			b.WriteByte(c)
			b.WriteByte(d)
			i += 2
			continue
		}
		b.WriteByte(c)
		i++
	}
	return Format{
		Raw:         raw,
		Layout:      b.String(),
		HasYear:     hasYear,
		HasTZ:       hasTZ,
		LocalOffset: localOffsetSeconds,
	}
}
