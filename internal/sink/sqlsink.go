package sink

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/asen/hustlog/internal/model"
)

// SQLTextSink renders each batch as INSERT-statement text: one
// multi-row INSERT per insert_batch_size rows, with an optional
// leading CREATE TABLE DDL derived from the output schema.
type SQLTextSink struct {
	w               io.Writer
	Table           string
	AddDDL          bool
	InsertBatchSize int

	wroteDDL bool
	schema   *model.Schema
	buf      []model.Row
}

func NewSQLTextSink(w io.Writer, table string, insertBatchSize int) *SQLTextSink {
	if insertBatchSize < 1 {
		insertBatchSize = 1
	}
	return &SQLTextSink{w: w, Table: table, InsertBatchSize: insertBatchSize}
}

func (s *SQLTextSink) Header(schema *model.Schema) error {
	s.schema = schema
	if !s.AddDDL || s.wroteDDL {
		return nil
	}
	s.wroteDDL = true
	_, err := fmt.Fprintln(s.w, createTableDDL(s.Table, schema))
	return err
}

// createTableDDL maps ColumnDef tags onto SQL column types per the
// design's type table.
func createTableDDL(table string, schema *model.Schema) string {
	var cols []string
	for _, c := range schema.Columns {
		cols = append(cols, fmt.Sprintf("%s %s", c.Name, sqlColumnType(c.Tag)))
	}
	return fmt.Sprintf("CREATE TABLE %s(%s);", table, strings.Join(cols, ", "))
}

func sqlColumnType(tag model.Tag) string {
	switch tag {
	case model.BoolT:
		return "BOOLEAN"
	case model.LongT:
		return "BIGINT"
	case model.DoubleT:
		return "DOUBLE"
	case model.TimestampT:
		return "TIMESTAMP"
	case model.StrT:
		return "VARCHAR"
	default:
		return "NULL"
	}
}

func (s *SQLTextSink) WriteBatch(batch model.RowBatch) error {
	s.buf = append(s.buf, batch.Rows...)
	for len(s.buf) >= s.InsertBatchSize {
		if err := s.flushN(s.InsertBatchSize); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLTextSink) Flush() error {
	if len(s.buf) == 0 {
		return nil
	}
	return s.flushN(len(s.buf))
}

func (s *SQLTextSink) Shutdown() error {
	return s.Flush()
}

func (s *SQLTextSink) flushN(n int) error {
	rows := s.buf[:n]
	s.buf = s.buf[n:]

	cols := make([]string, len(s.schema.Columns))
	for i, c := range s.schema.Columns {
		cols[i] = c.Name
	}

	ins := sq.Insert(s.Table).Columns(cols...)
	for _, row := range rows {
		vals := make([]interface{}, len(row.Values))
		for i, v := range row.Values {
			vals[i] = sq.Expr(sqlLiteral(v))
		}
		ins = ins.Values(vals...)
	}
	sqlText, _, err := ins.ToSql()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(s.w, sqlText+";")
	return err
}

// sqlLiteral renders v as inline SQL text: strings get single quotes
// doubled, timestamps and strings are quoted, Null becomes the keyword
// NULL.
func sqlLiteral(v model.Value) string {
	switch v.Tag {
	case model.NullT:
		return "NULL"
	case model.BoolT:
		if v.Bool {
			return "true"
		}
		return "false"
	case model.LongT:
		return strconv.FormatInt(v.Long, 10)
	case model.DoubleT:
		return strconv.FormatFloat(v.Double, 'g', -1, 64)
	case model.TimestampT, model.StrT:
		return "'" + strings.ReplaceAll(v.ToText(), "'", "''") + "'"
	default:
		return "NULL"
	}
}
