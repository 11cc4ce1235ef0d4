package sink

import (
	"github.com/asen/hustlog/internal/model"
	"github.com/asen/hustlog/internal/pipeline"
	hlog "github.com/asen/hustlog/pkg/log"
)

// Stage is the pipeline's terminal consumer: it owns a Sink mutably
// and drives Header/WriteBatch/Flush/Shutdown from the Data/Flush/
// Shutdown messages arriving serialized through its queue, so the sink
// itself never needs internal locking.
type Stage struct {
	Sink   Sink
	Schema *model.Schema
}

func (s *Stage) Wrap(depth int) (pipeline.Sender[model.RowBatch], <-chan struct{}) {
	send, recv, _ := pipeline.NewQueue[model.RowBatch](depth)
	done := make(chan struct{})
	go s.run(recv, done)
	return send, done
}

func (s *Stage) run(recv pipeline.Receiver[model.RowBatch], done chan struct{}) {
	defer close(done)
	headerWritten := false
	for {
		msg, ok := recv.Recv()
		if !ok {
			return
		}
		switch msg.Kind {
		case pipeline.KindData:
			if !headerWritten {
				if err := s.Sink.Header(s.Schema); err != nil {
					hlog.Errorf("sink: writing header: %v", err)
					return
				}
				headerWritten = true
			}
			if err := s.Sink.WriteBatch(msg.Payload); err != nil {
				hlog.Errorf("sink: writing batch: %v", err)
				return
			}
		case pipeline.KindFlush:
			if err := s.Sink.Flush(); err != nil {
				hlog.Errorf("sink: flush: %v", err)
				return
			}
		case pipeline.KindShutdown:
			if err := s.Sink.Shutdown(); err != nil {
				hlog.Errorf("sink: shutdown: %v", err)
			}
			return
		}
	}
}
