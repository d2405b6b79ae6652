// Package pipeline implements the dual-buffer ping-pong concurrency core of
// a parallel streaming copy: a reader goroutine and a writer goroutine
// exchange ownership of two fixed-size buffer slots so that input reading
// and output writing overlap, while a supervisor and progress view observe
// the copy from outside the hot path.
package pipeline

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultChunkSize is the default per-buffer capacity: 1 MiB, the upper
// bound of the 128 KiB-1 MiB range empirically found optimal for
// sequential bulk I/O (spec §6).
const DefaultChunkSize = 1 << 20

// Pipeline is the shared coordination state between a reader and a writer
// loop copying a single stream: two buffer slots, the cumulative byte
// counter, timestamps, and the status enums the progress view renders
// (spec §3 "Pipeline-global state").
type Pipeline struct {
	slots [2]*slot

	readerState atomic.Int32
	writerState atomic.Int32

	totalCopied atomic.Uint64

	mostRecentlyRead atomic.Int32
	readerReady      atomic.Bool

	startedAtNanos  atomic.Int64
	finishedAtNanos atomic.Int64

	// initGate is held by the supervisor while it spawns the reader, and by
	// the reader for the duration of its priming read (spec §4.3, §4.5).
	// The writer never takes it: the writer's wait for the priming read to
	// be published is on readerReady.
	initGate sync.Mutex

	// readerStopped and writerStopped close exactly once, when RunReader
	// and RunWriter respectively return after passing their entry state
	// check; the early return on an unexpected entry state leaves the
	// channel open. The other side's
	// slot-wait consults the opposite channel so that one side failing
	// never leaves the other blocked forever on a drain or fill that can
	// no longer happen.
	readerStopped chan struct{}
	writerStopped chan struct{}

	log *zap.Logger
}

// New allocates a pipeline with two chunkSize buffers. Buffers and all
// coordination state live for the duration of one copy; nothing is
// allocated inside the steady-state loops (spec §3 "Lifecycle").
func New(chunkSize int, log *zap.Logger) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pipeline{log: log, readerStopped: make(chan struct{}), writerStopped: make(chan struct{})}
	p.slots[0] = newSlot(chunkSize)
	p.slots[1] = newSlot(chunkSize)
	p.mostRecentlyRead.Store(-1)
	p.readerState.Store(int32(ReaderBeforeFirstRead))
	p.writerState.Store(int32(WriterBeforeFirstWrite))
	return p
}

// ReaderState returns a single-value atomic snapshot of the reader's
// status (spec §4.2).
func (p *Pipeline) ReaderState() ReaderState { return ReaderState(p.readerState.Load()) }

// WriterState returns a single-value atomic snapshot of the writer's
// status (spec §4.2).
func (p *Pipeline) WriterState() WriterState { return WriterState(p.writerState.Load()) }

// TotalCopied returns the cumulative number of bytes delivered to the
// output descriptor so far (spec §3 invariant 4).
func (p *Pipeline) TotalCopied() uint64 { return p.totalCopied.Load() }

// StartedAt returns the instant the priming read began, and whether a copy
// has started yet.
func (p *Pipeline) StartedAt() (time.Time, bool) {
	n := p.startedAtNanos.Load()
	if n == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, n), true
}

// FinishedAt returns the instant the supervisor finalized the copy, and
// whether it has finished yet.
func (p *Pipeline) FinishedAt() (time.Time, bool) {
	n := p.finishedAtNanos.Load()
	if n == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, n), true
}

// markStarted records copy_started_at. Uses time.Now, whose monotonic
// reading survives wall-clock adjustments — the "monotonic clock" the spec
// calls for, without reaching for a platform-specific clock source (spec
// §6 "Clocks").
func (p *Pipeline) markStarted() { p.startedAtNanos.Store(time.Now().UnixNano()) }

// markFinished records copy_finished_at.
func (p *Pipeline) markFinished() { p.finishedAtNanos.Store(time.Now().UnixNano()) }

// anySlotUndrained reports whether either slot still holds data the writer
// has not yet drained (spec §4.4 loop condition, invariant 2).
func (p *Pipeline) anySlotUndrained() bool {
	return p.slots[0].readGeneration() != p.slots[0].writeGeneration() ||
		p.slots[1].readGeneration() != p.slots[1].writeGeneration()
}
