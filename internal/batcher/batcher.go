// Package batcher implements the stage that groups individual
// ParsedRecord values into fixed-size RowBatch values, with the Flush
// suppression rule described by the design: a time-driven Flush must
// not emit a duplicate partial batch when a size-based batch already
// fired since the previous Flush.
package batcher

import (
	"github.com/asen/hustlog/internal/model"
	"github.com/asen/hustlog/internal/pipeline"
	"github.com/asen/hustlog/internal/workerpool"
	hlog "github.com/asen/hustlog/pkg/log"
)

// Stage is the batcher pipeline stage.
type Stage struct {
	Schema *model.Schema
	Size   int
	Pool   *workerpool.Pool
}

func (s *Stage) Wrap(depth int, down pipeline.Sender[model.RowBatch]) (pipeline.Sender[model.ParsedRecord], <-chan struct{}) {
	send, recv, _ := pipeline.NewQueue[model.ParsedRecord](depth)
	done := make(chan struct{})
	go s.run(recv, down, done)
	return send, done
}

func (s *Stage) run(recv pipeline.Receiver[model.ParsedRecord], down pipeline.Sender[model.RowBatch], done chan struct{}) {
	defer close(done)

	var buf []model.ParsedRecord
	emittedSinceFlush := false

	emit := func() bool {
		if len(buf) == 0 {
			return true
		}
		rows := s.toRows(buf)
		buf = nil
		if err := down.Send(pipeline.Data(model.RowBatch{Rows: rows})); err != nil {
			hlog.Errorf("batcher: %v", err)
			return false
		}
		return true
	}

	for {
		msg, ok := recv.Recv()
		if !ok {
			return
		}
		switch msg.Kind {
		case pipeline.KindData:
			buf = append(buf, msg.Payload)
			if len(buf) >= s.Size {
				if !emit() {
					return
				}
				emittedSinceFlush = true
			}
		case pipeline.KindFlush:
			if !emittedSinceFlush {
				if !emit() {
					return
				}
			}
			emittedSinceFlush = false
			if err := down.Send(pipeline.Flush[model.RowBatch]()); err != nil {
				hlog.Errorf("batcher: forwarding flush: %v", err)
				return
			}
		case pipeline.KindShutdown:
			if !emit() {
				return
			}
			if err := down.Send(pipeline.Shutdown[model.RowBatch]()); err != nil {
				hlog.Errorf("batcher: forwarding shutdown: %v", err)
			}
			return
		}
	}
}

// toRows converts buffered ParsedRecords into schema-ordered Rows on
// the CPU worker pool.
func (s *Stage) toRows(buf []model.ParsedRecord) []model.Row {
	ticket := s.Pool.Submit(func() (any, error) {
		rows := make([]model.Row, len(buf))
		for i, pr := range buf {
			names := make([]string, len(s.Schema.Columns))
			values := make([]model.Value, len(s.Schema.Columns))
			for j, col := range s.Schema.Columns {
				names[j] = col.Name
				if v, ok := pr.Fields[col.Name]; ok {
					values[j] = v
				} else {
					values[j] = model.Null()
				}
			}
			raw := pr.Raw
			rows[i] = model.Row{Raw: &raw, Names: names, Values: values}
		}
		return rows, nil
	})
	v, _ := ticket.Await()
	return v.([]model.Row)
}
