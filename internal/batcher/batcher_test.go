package batcher

import (
	"testing"
	"time"

	"github.com/asen/hustlog/internal/model"
	"github.com/asen/hustlog/internal/pipeline"
	"github.com/asen/hustlog/internal/workerpool"
	"github.com/stretchr/testify/require"
)

func testSchema() *model.Schema {
	return &model.Schema{Name: "t", Columns: []model.ColumnDef{{Name: "msg", Tag: model.StrT}}}
}

func pr(msg string) model.ParsedRecord {
	return model.ParsedRecord{Raw: msg, Fields: map[string]model.Value{"msg": model.Str(msg)}}
}

func recvBatches(t *testing.T, recv pipeline.Receiver[model.RowBatch], n int) []pipeline.Message[model.RowBatch] {
	t.Helper()
	out := make([]pipeline.Message[model.RowBatch], 0, n)
	for i := 0; i < n; i++ {
		select {
		case m := <-waitRecv(recv):
			out = append(out, m)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
	return out
}

func waitRecv(recv pipeline.Receiver[model.RowBatch]) <-chan pipeline.Message[model.RowBatch] {
	c := make(chan pipeline.Message[model.RowBatch], 1)
	go func() {
		m, ok := recv.Recv()
		if ok {
			c <- m
		}
	}()
	return c
}

func TestBatcher_SizeBoundAndFlushSuppression(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Close()

	downSend, downRecv, _ := pipeline.NewQueue[model.RowBatch](10)
	s := &Stage{Schema: testSchema(), Size: 2, Pool: pool}
	upSend, done := s.Wrap(10, downSend)

	require.NoError(t, upSend.Send(pipeline.Data(pr("a"))))
	require.NoError(t, upSend.Send(pipeline.Data(pr("b")))) // size-triggered batch of 2
	require.NoError(t, upSend.Send(pipeline.Flush[model.ParsedRecord]()))

	msgs := recvBatches(t, downRecv, 2)
	require.Equal(t, pipeline.KindData, msgs[0].Kind)
	require.Len(t, msgs[0].Payload.Rows, 2)
	require.Equal(t, pipeline.KindFlush, msgs[1].Kind) // no partial batch: suppressed

	require.NoError(t, upSend.Send(pipeline.Data(pr("c"))))
	require.NoError(t, upSend.Send(pipeline.Flush[model.ParsedRecord]())) // partial batch of 1

	msgs = recvBatches(t, downRecv, 2)
	require.Equal(t, pipeline.KindData, msgs[0].Kind)
	require.Len(t, msgs[0].Payload.Rows, 1)
	require.Equal(t, pipeline.KindFlush, msgs[1].Kind)

	require.NoError(t, upSend.Send(pipeline.Shutdown[model.ParsedRecord]()))
	msgs = recvBatches(t, downRecv, 1)
	require.Equal(t, pipeline.KindShutdown, msgs[0].Kind)

	<-done
}
