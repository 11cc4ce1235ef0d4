package sink

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3"

	"github.com/asen/hustlog/internal/model"
)

// DBSink bulk-inserts each batch into a real database via jmoiron/sqlx,
// one transaction per batch. database/sql has no columnar bind API, so
// a transaction-per-batch gives the same one-round-trip-per-batch
// property the design's ODBC-style buffer is after.
type DBSink struct {
	DriverName string
	DSN        string
	Table      string

	db     *sqlx.DB
	schema *model.Schema
}

func NewDBSink(driverName, dsn, table string) *DBSink {
	return &DBSink{DriverName: driverName, DSN: dsn, Table: table}
}

func (s *DBSink) Header(schema *model.Schema) error {
	s.schema = schema
	if s.db != nil {
		return nil
	}
	db, err := sqlx.Connect(s.DriverName, s.DSN)
	if err != nil {
		return fmt.Errorf("dbsink: connecting: %w", err)
	}
	s.db = db
	_, err = db.Exec(createTableDDL(s.Table, schema))
	return err
}

func (s *DBSink) WriteBatch(batch model.RowBatch) error {
	if len(batch.Rows) == 0 {
		return nil
	}
	cols := make([]string, len(s.schema.Columns))
	for i, c := range s.schema.Columns {
		cols[i] = c.Name
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("dbsink: begin tx: %w", err)
	}

	ins := sq.Insert(s.Table).Columns(cols...).PlaceholderFormat(sq.Question)
	for _, row := range batch.Rows {
		vals := make([]interface{}, len(row.Values))
		for i, v := range row.Values {
			vals[i] = dbArg(v)
		}
		ins = ins.Values(vals...)
	}
	query, args, err := ins.ToSql()
	if err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(query, args...); err != nil {
		tx.Rollback()
		return fmt.Errorf("dbsink: exec: %w", err)
	}
	return tx.Commit()
}

// dbArg converts a Value into the driver argument database/sql expects,
// with Null represented as nil so nullable columns store SQL NULL.
func dbArg(v model.Value) interface{} {
	switch v.Tag {
	case model.NullT:
		return nil
	case model.BoolT:
		return v.Bool
	case model.LongT:
		return v.Long
	case model.DoubleT:
		return v.Double
	case model.TimestampT:
		return v.TS
	case model.StrT:
		return v.Str
	default:
		return nil
	}
}

func (s *DBSink) Flush() error { return nil }

func (s *DBSink) Shutdown() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
