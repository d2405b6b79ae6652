package pipeline

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ReaderResult is the reader loop's join value (spec §4.3 "Reader exit
// value").
type ReaderResult struct {
	Err error
}

// RunReader pulls bytes from src into the pipeline's two slots in strict
// 0, 1, 0, 1, ... alternation, implementing the priming read and
// steady-state protocol of spec §4.3. It returns once src reports EOF, a
// read fails, or the writer stops while the reader waits for a slot to be
// drained.
func RunReader(p *Pipeline, src io.Reader) ReaderResult {
	if p.ReaderState() != ReaderBeforeFirstRead {
		return ReaderResult{Err: errors.New("reader loop entered in unexpected state")}
	}
	defer close(p.readerStopped)

	p.initGate.Lock()

	slot0 := p.slots[0]
	p.readerState.Store(int32(ReaderReadBegun))
	slot0.acquireForRead()
	p.markStarted()

	p.log.Debug("reading into slot", zap.Int("slot", 0))
	n, err := src.Read(slot0.storage)
	if err != nil && err != io.EOF {
		p.readerState.Store(int32(ReaderReadFailed))
		slot0.abortRead()
		p.initGate.Unlock()
		return ReaderResult{Err: errors.Wrap(err, "read")}
	}

	if n == 0 {
		p.readerState.Store(int32(ReaderEndOfFile))
	} else {
		p.readerState.Store(int32(ReaderReadFinished))
	}
	slot0.publishRead(n)
	p.mostRecentlyRead.Store(0)
	p.log.Debug("finished reading slot", zap.Int("slot", 0), zap.Int("bytes", n))

	p.readerReady.Store(true)
	p.initGate.Unlock()

	if n == 0 {
		p.log.Debug("read loop reached end of input on priming read")
		return ReaderResult{}
	}

	// Steady state: alternate starting at slot 1 (spec §4.3).
	i := 1
	lastN := n
	for lastN > 0 {
		slot := p.slots[i]

		p.log.Debug("waiting to read into slot", zap.Int("slot", i))
		if !slot.awaitReadTurn(p.writerStopped) {
			p.log.Debug("writer stopped; read loop exiting early", zap.Int("slot", i))
			break
		}

		p.readerState.Store(int32(ReaderReadBegun))
		slot.dirty.Store(true)

		p.log.Debug("reading into slot", zap.Int("slot", i))
		nn, err := src.Read(slot.storage)
		if err != nil && err != io.EOF {
			p.readerState.Store(int32(ReaderReadFailed))
			slot.abortRead()
			p.log.Debug("read failure")
			return ReaderResult{Err: errors.Wrap(err, "read")}
		}

		if nn == 0 {
			p.readerState.Store(int32(ReaderEndOfFile))
		} else {
			p.readerState.Store(int32(ReaderReadFinished))
		}
		slot.publishRead(nn)
		p.mostRecentlyRead.Store(int32(i))
		p.log.Debug("finished reading slot", zap.Int("slot", i), zap.Int("bytes", nn))

		if nn == 0 {
			p.log.Debug("read loop reached end of input file")
			break
		}
		lastN = nn
		i = 1 - i
	}

	p.log.Debug("read loop exiting")
	return ReaderResult{}
}
