// Package pipeline implements the bounded-queue message protocol and the
// stage assembly/lifecycle driver described by the design: every stage
// is a single consumer goroutine reading Message[T] off a channel,
// handling Data/Flush/Shutdown in order.
package pipeline

// Kind tags a Message's payload discriminant.
type Kind int

const (
	KindData Kind = iota
	KindFlush
	KindShutdown
)

// Message is the three-variant envelope every stage edge carries:
// Data(payload), Flush, or Shutdown.
type Message[T any] struct {
	Kind    Kind
	Payload T
}

func Data[T any](payload T) Message[T] { return Message[T]{Kind: KindData, Payload: payload} }
func Flush[T any]() Message[T]         { return Message[T]{Kind: KindFlush} }
func Shutdown[T any]() Message[T]      { return Message[T]{Kind: KindShutdown} }

// Sender is a cloneable handle onto a bounded queue's send side. Cloning
// is just copying the struct; the underlying channel is shared, giving
// the MPSC-with-FIFO-per-producer guarantee the design calls for.
type Sender[T any] struct {
	ch chan<- Message[T]
}

// Send blocks (cooperatively, via the bounded channel) when the
// downstream queue is full — this is the pipeline's only backpressure
// mechanism. Each edge has exactly one sender in normal operation, so
// a closed-channel panic would indicate a lifecycle bug upstream; Send
// converts it into ErrClosed instead of crashing the stage.
func (s Sender[T]) Send(m Message[T]) (err error) {
	if s.ch == nil {
		return ErrClosed
	}
	defer func() {
		if recover() != nil {
			err = ErrClosed
		}
	}()
	s.ch <- m
	return nil
}

// Receiver is the single-owner consume side of a queue.
type Receiver[T any] struct {
	ch <-chan Message[T]
}

func (r Receiver[T]) Recv() (Message[T], bool) {
	m, ok := <-r.ch
	return m, ok
}

// NewQueue creates a bounded Message[T] channel of the given depth and
// returns its Sender/Receiver halves.
func NewQueue[T any](depth int) (Sender[T], Receiver[T], chan Message[T]) {
	ch := make(chan Message[T], depth)
	return Sender[T]{ch: ch}, Receiver[T]{ch: ch}, ch
}

// CloseSender closes the underlying channel; safe to call exactly once,
// by the single owner of the send side after it has sent Shutdown.
func CloseSender[T any](ch chan Message[T]) {
	close(ch)
}
