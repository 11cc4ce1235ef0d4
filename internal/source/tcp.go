package source

import (
	"errors"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/asen/hustlog/internal/framer"
	"github.com/asen/hustlog/internal/model"
	"github.com/asen/hustlog/internal/pipeline"
	hlog "github.com/asen/hustlog/pkg/log"
)

// TCPSource accepts connections on Addr, spawning one task per
// connection; each owns its own line framer and forwards extracted
// records through a cloned handle onto the shared head sender. A
// gocron ticker issues Flush every TickInterval, and SIGTERM/Ctrl-C
// issues Shutdown and stops the accept loop.
type TCPSource struct {
	Addr           string
	MergeMultiLine bool
	TickInterval   time.Duration
	Down           pipeline.Sender[[]model.RawRecord]
}

// Run blocks until the listener is closed by Shutdown handling.
func (t *TCPSource) Run() error {
	ln, err := net.Listen("tcp", t.Addr)
	if err != nil {
		return err
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(t.TickInterval),
		gocron.NewTask(func() {
			if err := t.Down.Send(pipeline.Flush[[]model.RawRecord]()); err != nil {
				hlog.Errorf("tcp source: tick flush: %v", err)
			}
		}),
	); err != nil {
		return err
	}
	sched.Start()
	defer sched.Shutdown()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		hlog.Info("tcp source: shutting down")
		if err := t.Down.Send(pipeline.Shutdown[[]model.RawRecord]()); err != nil {
			hlog.Errorf("tcp source: sending shutdown: %v", err)
		}
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			return nil
		}
		go t.handleConn(conn)
	}
}

func (t *TCPSource) handleConn(conn net.Conn) {
	defer conn.Close()
	fr := framer.New(t.MergeMultiLine)
	buf := make([]byte, 64*1024)

	for {
		n, err := conn.Read(buf)
		if n > 0 {
			recs := fr.Feed(buf[:n])
			if len(recs) > 0 {
				if sendErr := t.Down.Send(pipeline.Data(recs)); sendErr != nil {
					hlog.Errorf("tcp source: %v", sendErr)
					return
				}
			}
		}
		if err != nil {
			tail := fr.Flush()
			if len(tail) > 0 {
				if sendErr := t.Down.Send(pipeline.Data(tail)); sendErr != nil {
					hlog.Errorf("tcp source: %v", sendErr)
				}
			}
			if !errors.Is(err, io.EOF) {
				hlog.Errorf("tcp source: connection read error: %v", err)
			}
			return
		}
	}
}
