package pipeline

import (
	"io"
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// WriterResult is the writer loop's join value (spec §4.4 "Writer exit
// value").
type WriterResult struct {
	Err error
}

// RunWriter drains filled slots in the same alternation order the reader
// fills them, writing each to dst, implementing spec §4.4. It returns once
// the reader has stopped (at EOF or after a failed read) and every slot it
// filled has been drained, or a write fails.
func RunWriter(p *Pipeline, dst io.Writer) WriterResult {
	if p.WriterState() != WriterBeforeFirstWrite {
		return WriterResult{Err: errors.New("writer loop entered in unexpected state")}
	}
	defer close(p.writerStopped)

	// Wait for the reader's priming read to publish before touching any
	// slot (spec §4.4 "Startup", §9 "Initial-slot race").
	for !p.readerReady.Load() {
		runtime.Gosched()
	}

	j := 0
	for !readerDone(p.ReaderState()) || p.anySlotUndrained() {
		slot := p.slots[j]

		p.log.Debug("waiting to write slot", zap.Int("slot", j))
		if !slot.awaitWriteTurn(p.readerStopped) {
			p.log.Debug("reader stopped with nothing left to drain; write loop exiting early", zap.Int("slot", j))
			break
		}

		p.writerState.Store(int32(WriterWriteBegun))
		m := slot.length()
		p.log.Debug("writing slot", zap.Int("slot", j), zap.Int("bytes", m))

		offset := 0
		for offset < m {
			w, err := dst.Write(slot.storage[offset:m])
			if err != nil {
				p.writerState.Store(int32(WriterWriteFailed))
				slot.abortWrite()
				p.log.Debug("write failure", zap.Error(err))
				return WriterResult{Err: errors.Wrap(err, "write")}
			}
			offset += w
			p.totalCopied.Add(uint64(w))
		}

		p.writerState.Store(int32(WriterWriteFinished))
		slot.publishWrite()
		p.log.Debug("finished writing slot", zap.Int("slot", j))

		j = 1 - j
	}

	p.log.Debug("write loop exiting", zap.String("reader_state", p.ReaderState().String()))
	return WriterResult{}
}
