package workerpool

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPool_SubmitAwaitRoundTrip(t *testing.T) {
	p := New(4)
	defer p.Close()

	tickets := make([]Ticket, 0, 20)
	for i := 0; i < 20; i++ {
		i := i
		tickets = append(tickets, p.Submit(func() (any, error) {
			return i * i, nil
		}))
	}
	for i, tk := range tickets {
		v, err := tk.Await()
		require.NoError(t, err)
		require.Equal(t, i*i, v)
	}
}

func TestPool_PropagatesError(t *testing.T) {
	p := New(2)
	defer p.Close()

	tk := p.Submit(func() (any, error) {
		return nil, errors.New("boom")
	})
	_, err := tk.Await()
	require.EqualError(t, err, "boom")
}

func TestPool_FIFOPerCallerWithConcurrentWork(t *testing.T) {
	p := New(8)
	defer p.Close()

	var inFlight int32
	var maxInFlight int32
	tickets := make([]Ticket, 0, 50)
	for i := 0; i < 50; i++ {
		i := i
		tickets = append(tickets, p.Submit(func() (any, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				m := atomic.LoadInt32(&maxInFlight)
				if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
					break
				}
			}
			atomic.AddInt32(&inFlight, -1)
			return i, nil
		}))
	}
	for i, tk := range tickets {
		v, err := tk.Await()
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
	require.Greater(t, maxInFlight, int32(1), "expected some jobs to run concurrently")
}

func TestNew_ClampsNonPositiveSize(t *testing.T) {
	p := New(0)
	defer p.Close()
	tk := p.Submit(func() (any, error) { return "ok", nil })
	v, err := tk.Await()
	require.NoError(t, err)
	require.Equal(t, "ok", v)
}
