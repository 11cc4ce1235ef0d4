// Package framer turns arbitrary byte chunks into ordered RawRecord
// values: it strips syslog priority prefixes, splits on line
// terminators (collapsing consecutive ones), optionally merges
// continuation lines that begin with whitespace, and lossily repairs
// non-UTF-8 input.
package framer

import (
	"strings"
	"unicode/utf8"

	"github.com/asen/hustlog/internal/model"
)

// Framer accumulates bytes in a growable buffer and extracts complete
// RawRecords from it. Not safe for concurrent use; each source
// connection/peer owns one.
type Framer struct {
	merge bool
	buf   strings.Builder // bytes appended since the last terminator

	pendingLine string // a complete, emitted-line-in-waiting (merge mode)
	hasPending  bool
}

func New(mergeMultiLine bool) *Framer {
	return &Framer{merge: mergeMultiLine}
}

// Feed appends chunk to the framer's buffer and returns the complete
// records it can now extract, in arrival order.
func (f *Framer) Feed(chunk []byte) []model.RawRecord {
	f.buf.WriteString(toValidUTF8(chunk))
	text := f.buf.String()

	var out []model.RawRecord
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\n' || c == '\r' {
			line := text[start:i]
			start = i + 1
			if line == "" {
				// consecutive terminators collapse: empty records
				// are never emitted.
				continue
			}
			f.handleLine(line, &out)
		}
	}

	f.buf.Reset()
	if start < len(text) {
		f.buf.WriteString(text[start:])
	}
	return out
}

// handleLine processes one complete (terminator-delimited) line.
func (f *Framer) handleLine(line string, out *[]model.RawRecord) {
	line = stripPriority(line)
	if f.merge {
		if isContinuation(line) && f.hasPending {
			f.pendingLine += " " + strings.TrimLeft(line, " \t")
			return
		}
		f.flushPending(out)
		f.pendingLine = line
		f.hasPending = true
		return
	}
	*out = append(*out, model.RawRecord{Text: line})
}

func (f *Framer) flushPending(out *[]model.RawRecord) {
	if f.hasPending {
		if f.pendingLine != "" {
			*out = append(*out, model.RawRecord{Text: f.pendingLine})
		}
		f.pendingLine = ""
		f.hasPending = false
	}
}

// Flush emits the buffered remainder (if non-empty) as the last record,
// applying merge rules, and clears all buffered state.
func (f *Framer) Flush() []model.RawRecord {
	var out []model.RawRecord

	tail := f.buf.String()
	f.buf.Reset()
	if tail != "" {
		tail = stripPriority(tail)
		if f.merge && isContinuation(tail) && f.hasPending {
			f.pendingLine += " " + strings.TrimLeft(tail, " \t")
		} else {
			f.flushPending(&out)
			if f.merge {
				f.pendingLine = tail
				f.hasPending = true
			} else {
				out = append(out, model.RawRecord{Text: tail})
			}
		}
	}
	f.flushPending(&out)
	return out
}

func isContinuation(line string) bool {
	return len(line) > 0 && (line[0] == ' ' || line[0] == '\t')
}

// stripPriority removes a leading syslog priority prefix "<digits>"
// (inclusive of brackets) when present.
func stripPriority(line string) string {
	if len(line) == 0 || line[0] != '<' {
		return line
	}
	i := 1
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 1 && i < len(line) && line[i] == '>' {
		return line[i+1:]
	}
	return line
}

// toValidUTF8 lossily converts invalid byte sequences to the Unicode
// replacement character, matching the spec's "non-UTF-8 bytes are
// lossy-converted" rule.
func toValidUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
