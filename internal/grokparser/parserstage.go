package grokparser

import (
	"github.com/asen/hustlog/internal/errs"
	"github.com/asen/hustlog/internal/model"
	"github.com/asen/hustlog/internal/pipeline"
	"github.com/asen/hustlog/internal/workerpool"
	hlog "github.com/asen/hustlog/pkg/log"
)

// Stage is the parser pipeline stage: it consumes batches of RawRecord
// from upstream sources and emits one ParsedRecord Data message per
// surviving record downstream.
type Stage struct {
	Pattern *CompiledPattern
	Schema  *model.Schema
	Pool    *workerpool.Pool
}

// Wrap starts the stage's consumer goroutine and returns its upstream
// sender and a done channel (closed once the stage terminates).
func (s *Stage) Wrap(depth int, down pipeline.Sender[model.ParsedRecord]) (pipeline.Sender[[]model.RawRecord], <-chan struct{}) {
	send, recv, _ := pipeline.NewQueue[[]model.RawRecord](depth)
	done := make(chan struct{})
	go s.run(recv, down, done)
	return send, done
}

func (s *Stage) run(recv pipeline.Receiver[[]model.RawRecord], down pipeline.Sender[model.ParsedRecord], done chan struct{}) {
	defer close(done)
	for {
		msg, ok := recv.Recv()
		if !ok {
			return
		}
		switch msg.Kind {
		case pipeline.KindData:
			if !s.handleBatch(msg.Payload, down) {
				return
			}
		case pipeline.KindFlush:
			if err := down.Send(pipeline.Flush[model.ParsedRecord]()); err != nil {
				hlog.Errorf("parser: forwarding flush: %v", err)
				return
			}
		case pipeline.KindShutdown:
			if err := down.Send(pipeline.Shutdown[model.ParsedRecord]()); err != nil {
				hlog.Errorf("parser: forwarding shutdown: %v", err)
			}
			return
		}
	}
}

func (s *Stage) handleBatch(batch []model.RawRecord, down pipeline.Sender[model.ParsedRecord]) bool {
	ticket := s.Pool.Submit(func() (any, error) {
		out := make([]model.ParsedRecord, 0, len(batch))
		for _, raw := range batch {
			pr, ok, err := ParseOne(s.Pattern, s.Schema, raw.Text)
			if err != nil {
				hlog.Errorf("parser: %s", errs.Wrap(errs.ParseError, "matching pattern", err))
				continue
			}
			if !ok {
				hlog.Errorf("parser: %s", errs.New(errs.ParseError, "record did not satisfy schema, dropped"))
				continue
			}
			out = append(out, pr)
		}
		return out, nil
	})
	v, _ := ticket.Await()
	parsed := v.([]model.ParsedRecord)
	for _, pr := range parsed {
		if err := down.Send(pipeline.Data(pr)); err != nil {
			hlog.Errorf("parser: %v", err)
			return false
		}
	}
	return true
}
