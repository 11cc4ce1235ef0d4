// Package sink implements the pipeline's output stage: CSV text, SQL
// INSERT-statement text, and a native-DB bulk insert, sharing one
// interface so the sink task owns exactly one concrete sink mutably,
// receiving serialized batches off the queue with no internal locking.
package sink

import "github.com/asen/hustlog/internal/model"

// Sink is implemented by every output variant.
type Sink interface {
	// Header emits whatever preamble the format needs (a CSV header row,
	// a CREATE TABLE statement) exactly once, before the first batch.
	Header(schema *model.Schema) error
	WriteBatch(batch model.RowBatch) error
	Flush() error
	Shutdown() error
}
