package source

import (
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

type udpDatagram struct {
	remote string
	data   []byte
}

// peerState is one UDP remote's line-framing state plus its last
// activity time, evicted by the demux loop after IdleTimeout of
// inactivity.
type peerState struct {
	framer       *framer.Framer
	lastActivity time.Time
}

// UDPSource owns a single UDP socket and demultiplexes datagrams by
// remote address into per-peer framing state, all processed on one
// goroutine so the peer map needs no locking: the reader goroutine only
// ever hands datagrams off through a channel.
type UDPSource struct {
	Addr           string
	MergeMultiLine bool
	TickInterval   time.Duration
	IdleTimeout    time.Duration
	Down           pipeline.Sender[[]model.RawRecord]
}

func (u *UDPSource) Run() error {
	addr, err := net.ResolveUDPAddr("udp", u.Addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	datagrams := make(chan udpDatagram, 256)
	flushTick := make(chan struct{}, 1)
	shutdownCh := make(chan struct{}, 1)
	readerDone := make(chan struct{})

	go func() {
		defer close(readerDone)
		buf := make([]byte, 64*1024)
		for {
			n, raddr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			cp := make([]byte, n)
			copy(cp, buf[:n])
			select {
			case datagrams <- udpDatagram{remote: raddr.String(), data: cp}:
			case <-shutdownCh:
				return
			}
		}
	}()

	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(u.TickInterval),
		gocron.NewTask(func() {
			select {
			case flushTick <- struct{}{}:
			default:
			}
		}),
	); err != nil {
		return err
	}
	sched.Start()
	defer sched.Shutdown()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	peers := make(map[string]*peerState)

	for {
		select {
		case dg := <-datagrams:
			u.handleDatagram(peers, dg)
		case <-flushTick:
			u.evictIdle(peers, time.Now())
			if err := u.Down.Send(pipeline.Flush[[]model.RawRecord]()); err != nil {
				hlog.Errorf("udp source: forwarding flush: %v", err)
				return err
			}
		case <-sigCh:
			close(shutdownCh)
			conn.Close()
			u.drainAll(peers)
			if err := u.Down.Send(pipeline.Shutdown[[]model.RawRecord]()); err != nil {
				hlog.Errorf("udp source: forwarding shutdown: %v", err)
			}
			<-readerDone
			return nil
		}
	}
}

func (u *UDPSource) handleDatagram(peers map[string]*peerState, dg udpDatagram) {
	p, ok := peers[dg.remote]
	if !ok {
		p = &peerState{framer: framer.New(u.MergeMultiLine)}
		peers[dg.remote] = p
	}
	p.lastActivity = time.Now()
	recs := p.framer.Feed(dg.data)
	if len(recs) > 0 {
		if err := u.Down.Send(pipeline.Data(recs)); err != nil {
			hlog.Errorf("udp source: %v", err)
		}
	}
}

func (u *UDPSource) evictIdle(peers map[string]*peerState, now time.Time) {
	for addr, p := range peers {
		if p.lastActivity.Add(u.IdleTimeout).Before(now) {
			if tail := p.framer.Flush(); len(tail) > 0 {
				if err := u.Down.Send(pipeline.Data(tail)); err != nil {
					hlog.Errorf("udp source: %v", err)
				}
			}
			delete(peers, addr)
		}
	}
}

func (u *UDPSource) drainAll(peers map[string]*peerState) {
	for addr, p := range peers {
		if tail := p.framer.Flush(); len(tail) > 0 {
			if err := u.Down.Send(pipeline.Data(tail)); err != nil {
				hlog.Errorf("udp source: %v", err)
			}
		}
		delete(peers, addr)
	}
}
