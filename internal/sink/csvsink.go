package sink

import (
	"encoding/csv"
	"io"

	"github.com/asen/hustlog/internal/model"
)

// CSVSink writes RFC 4180 CSV, relying on encoding/csv for quoting:
// fields containing a comma, a quote, or a newline are quoted and
// embedded quotes are doubled.
type CSVSink struct {
	w         *csv.Writer
	AddHeader bool
	wroteHdr  bool
}

func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w)}
}

func (s *CSVSink) Header(schema *model.Schema) error {
	if !s.AddHeader || s.wroteHdr {
		return nil
	}
	names := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		names[i] = c.Name
	}
	s.wroteHdr = true
	return s.w.Write(names)
}

func (s *CSVSink) WriteBatch(batch model.RowBatch) error {
	for _, row := range batch.Rows {
		fields := make([]string, len(row.Values))
		for i, v := range row.Values {
			fields[i] = v.ToText()
		}
		if err := s.w.Write(fields); err != nil {
			return err
		}
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *CSVSink) Flush() error {
	s.w.Flush()
	return s.w.Error()
}

func (s *CSVSink) Shutdown() error {
	s.w.Flush()
	return s.w.Error()
}
