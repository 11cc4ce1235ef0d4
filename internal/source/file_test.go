package source

import (
	"strings"
	"testing"

	"github.com/asen/hustlog/internal/model"
	"github.com/asen/hustlog/internal/pipeline"
	"github.com/stretchr/testify/require"
)

func TestRunFile_FramesAndShutsDown(t *testing.T) {
	send, recv, _ := pipeline.NewQueue[[]model.RawRecord](10)

	go func() {
		require.NoError(t, RunFile(strings.NewReader("line one\nline two\n"), false, send))
	}()

	msg, ok := recv.Recv()
	require.True(t, ok)
	require.Equal(t, pipeline.KindData, msg.Kind)
	require.Len(t, msg.Payload, 2)
	require.Equal(t, "line one", msg.Payload[0].Text)

	msg, ok = recv.Recv()
	require.True(t, ok)
	require.Equal(t, pipeline.KindFlush, msg.Kind)

	msg, ok = recv.Recv()
	require.True(t, ok)
	require.Equal(t, pipeline.KindShutdown, msg.Kind)
}

func TestRunFile_TrailingUnterminatedLine(t *testing.T) {
	send, recv, _ := pipeline.NewQueue[[]model.RawRecord](10)
	go func() {
		require.NoError(t, RunFile(strings.NewReader("no newline at end"), false, send))
	}()

	msg, ok := recv.Recv()
	require.True(t, ok)
	require.Equal(t, pipeline.KindData, msg.Kind)
	require.Equal(t, "no newline at end", msg.Payload[0].Text)
}
