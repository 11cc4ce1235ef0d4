// Package source implements the pipeline's ingestion edges: a
// stdin/file reader, a TCP accept loop, and a UDP socket with
// per-peer demultiplexing and idle eviction. Each drives the head
// sender returned by the assembled pipeline.
package source

import (
	"bufio"
	"io"

	"github.com/asen/hustlog/internal/framer"
	"github.com/asen/hustlog/internal/model"
	"github.com/asen/hustlog/internal/pipeline"
	hlog "github.com/asen/hustlog/pkg/log"
)

// RunFile reads r to EOF, framing it into RawRecord batches and
// sending them downstream, then issues Flush and Shutdown. Used for
// both stdin ("-") and plain file paths; each Feed call gets at most
// 64 KiB, matching the per-connection buffering the TCP/UDP sources
// use.
func RunFile(r io.Reader, mergeMultiLine bool, down pipeline.Sender[[]model.RawRecord]) error {
	fr := framer.New(mergeMultiLine)
	br := bufio.NewReaderSize(r, 64*1024)
	buf := make([]byte, 64*1024)

	for {
		n, err := br.Read(buf)
		if n > 0 {
			recs := fr.Feed(buf[:n])
			if len(recs) > 0 {
				if sendErr := down.Send(pipeline.Data(recs)); sendErr != nil {
					return sendErr
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			hlog.Errorf("file source: read error: %v", err)
			break
		}
	}

	if tail := fr.Flush(); len(tail) > 0 {
		if err := down.Send(pipeline.Data(tail)); err != nil {
			return err
		}
	}
	if err := down.Send(pipeline.Flush[[]model.RawRecord]()); err != nil {
		return err
	}
	return down.Send(pipeline.Shutdown[[]model.RawRecord]())
}
