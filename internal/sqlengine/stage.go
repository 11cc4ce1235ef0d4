// Package sqlengine implements the SELECT dialect's lexer, parser,
// static validator, and per-batch evaluator, and wraps that evaluator as
// a pipeline stage.
package sqlengine

import (
	"time"

	"github.com/asen/hustlog/internal/model"
	"github.com/asen/hustlog/internal/pipeline"
	"github.com/asen/hustlog/internal/workerpool"
	hlog "github.com/asen/hustlog/pkg/log"
)

// Stage evaluates a built Query against each incoming RowBatch,
// offloading the CPU-bound evaluation to the worker pool the same way
// the batcher and parser stages do.
type Stage struct {
	Query *Query
	Pool  *workerpool.Pool
	Now   func() time.Time // overridable for tests; defaults to time.Now
}

func (s *Stage) Wrap(depth int, down pipeline.Sender[model.RowBatch]) (pipeline.Sender[model.RowBatch], <-chan struct{}) {
	send, recv, _ := pipeline.NewQueue[model.RowBatch](depth)
	done := make(chan struct{})
	go s.run(recv, down, done)
	return send, done
}

func (s *Stage) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Stage) run(recv pipeline.Receiver[model.RowBatch], down pipeline.Sender[model.RowBatch], done chan struct{}) {
	defer close(done)
	for {
		msg, ok := recv.Recv()
		if !ok {
			return
		}
		switch msg.Kind {
		case pipeline.KindData:
			out, err := s.evalOnPool(msg.Payload)
			if err != nil {
				hlog.Errorf("sqlengine: evaluating batch: %v", err)
				continue
			}
			if err := down.Send(pipeline.Data(out)); err != nil {
				hlog.Errorf("sqlengine: %v", err)
				return
			}
		case pipeline.KindFlush:
			if err := down.Send(pipeline.Flush[model.RowBatch]()); err != nil {
				hlog.Errorf("sqlengine: forwarding flush: %v", err)
				return
			}
		case pipeline.KindShutdown:
			if err := down.Send(pipeline.Shutdown[model.RowBatch]()); err != nil {
				hlog.Errorf("sqlengine: forwarding shutdown: %v", err)
			}
			return
		}
	}
}

func (s *Stage) evalOnPool(batch model.RowBatch) (model.RowBatch, error) {
	now := s.now()
	ticket := s.Pool.Submit(func() (any, error) {
		return s.Query.EvalBatch(batch, now)
	})
	v, err := ticket.Await()
	if err != nil {
		return model.RowBatch{}, err
	}
	return v.(model.RowBatch), nil
}
