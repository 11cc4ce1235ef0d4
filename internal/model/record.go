package model

// RawRecord is one logical log entry after line framing and optional
// multi-line merge, immutably owned text.
type RawRecord struct {
	Text string
}

// ParsedRecord pairs the originating raw text with the field values the
// pattern parser extracted for it.
type ParsedRecord struct {
	Raw    string
	Fields map[string]Value
}
