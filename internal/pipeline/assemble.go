package pipeline

import (
	"golang.org/x/sync/errgroup"

	hlog "github.com/asen/hustlog/pkg/log"
)

// Assembly collects each stage's done channel as it is wrapped,
// right-to-left (sink first), so Shutdown can be awaited tail-first:
// the driver awaits in construction order, which is sink-first and
// source-last — the reverse of data flow, matching the design's
// "reversed list of join handles" framing.
type Assembly struct {
	done []<-chan struct{}
	eg   errgroup.Group
}

// Add registers a stage's done channel, in right-to-left construction
// order (sink, then SQL, then batcher, then parser).
func (a *Assembly) Add(done <-chan struct{}) {
	a.done = append(a.done, done)
}

// RunSource runs fn (a blocking source driver, e.g. TCPSource.Run) on
// its own goroutine via errgroup, so the caller can wait for it
// alongside the stage chain without hand-rolling a WaitGroup.
func (a *Assembly) RunSource(fn func() error) {
	a.eg.Go(fn)
}

// Await blocks until every stage has terminated and every source
// goroutine has returned, awaiting stage done channels tail-first
// (i.e. in the order they were Added, sink through parser) and logging
// the source error, if any.
func (a *Assembly) Await() {
	for _, d := range a.done {
		<-d
	}
	if err := a.eg.Wait(); err != nil {
		hlog.Errorf("pipeline: source: %v", err)
	}
}
