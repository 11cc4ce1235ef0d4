package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueue_SendRecvRoundTrip(t *testing.T) {
	send, recv, ch := NewQueue[int](4)
	require.NoError(t, send.Send(Data(1)))
	require.NoError(t, send.Send(Data(2)))
	CloseSender(ch)

	m, ok := recv.Recv()
	require.True(t, ok)
	require.Equal(t, KindData, m.Kind)
	require.Equal(t, 1, m.Payload)

	m, ok = recv.Recv()
	require.True(t, ok)
	require.Equal(t, 2, m.Payload)

	_, ok = recv.Recv()
	require.False(t, ok, "receiving past a closed, drained channel should report !ok")
}

func TestSend_AfterCloseReturnsErrClosed(t *testing.T) {
	send, _, ch := NewQueue[string](1)
	CloseSender(ch)
	err := send.Send(Data("x"))
	require.ErrorIs(t, err, ErrClosed)
}

func TestSend_ZeroValueSenderReturnsErrClosed(t *testing.T) {
	var send Sender[int]
	require.ErrorIs(t, send.Send(Data(1)), ErrClosed)
}

func TestFlushAndShutdown_CarryNoPayload(t *testing.T) {
	f := Flush[int]()
	require.Equal(t, KindFlush, f.Kind)
	require.Zero(t, f.Payload)

	s := Shutdown[int]()
	require.Equal(t, KindShutdown, s.Kind)
	require.Zero(t, s.Payload)
}
