package pipeline

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// maxSlotSpin bounds how many scheduler yields a loop spends polling a
// slot's generation counters before it falls back to blocking on the
// slot's wake channel. Mirrors the spin-then-sleep backoff bufioprop uses
// for its own single-buffer rendezvous.
const maxSlotSpin = 16

// slot is one of the pipeline's two fixed-capacity buffers plus its
// coordination metadata (spec §3, §4.1). Between acquireForRead and
// publishRead the reader is the slot's sole mutator; between
// acquireForWrite and publishWrite only the writer may touch storage.
type slot struct {
	storage []byte

	lock sync.RWMutex

	len      atomic.Uint32
	readGen  atomic.Uint64
	writeGen atomic.Uint64
	dirty    atomic.Bool

	// filled is signaled by publishRead; a writer blocked in
	// awaitWriteTurn wakes on it. drained is signaled by publishWrite; a
	// reader blocked in awaitReadTurn wakes on it.
	filled  chan struct{}
	drained chan struct{}
}

func newSlot(chunkSize int) *slot {
	return &slot{
		storage: make([]byte, chunkSize),
		filled:  make(chan struct{}, 1),
		drained: make(chan struct{}, 1),
	}
}

func wake(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// acquireForRead takes the slot's lock in shared mode (spec §4.1).
func (s *slot) acquireForRead() {
	s.lock.RLock()
}

// abortRead releases a shared-mode acquisition without publishing a read,
// used when the reader backs off to let the writer catch up, or when a
// read fails mid-flight.
func (s *slot) abortRead() {
	s.lock.RUnlock()
}

// publishRead records a completed read of n bytes and releases the lock
// taken by acquireForRead.
func (s *slot) publishRead(n int) {
	s.len.Store(uint32(n))
	s.dirty.Store(true)
	s.readGen.Add(1)
	s.lock.RUnlock()
	wake(s.filled)
}

// acquireForWrite takes the slot's lock in exclusive mode (spec §4.1).
func (s *slot) acquireForWrite() {
	s.lock.Lock()
}

// abortWrite releases an exclusive-mode acquisition without publishing a
// write, used when the writer backs off to wait for new data.
func (s *slot) abortWrite() {
	s.lock.Unlock()
}

// publishWrite records a completed drain and releases the lock taken by
// acquireForWrite.
func (s *slot) publishWrite() {
	s.dirty.Store(false)
	s.writeGen.Add(1)
	s.lock.Unlock()
	wake(s.drained)
}

func (s *slot) length() int            { return int(s.len.Load()) }
func (s *slot) readGeneration() uint64  { return s.readGen.Load() }
func (s *slot) writeGeneration() uint64 { return s.writeGen.Load() }

// awaitReadTurn acquires the slot for reading, retrying until the writer
// has drained the previous fill (read_gen == write_gen + 1 means this slot
// is already one chunk ahead and must not be overwritten; spec §4.3 step
// 2). Returns true with the lock held in shared mode, or false if giveUp
// closes first — meaning the writer has stopped for good and this drain
// will never happen, so there is no point continuing to wait for it.
func (s *slot) awaitReadTurn(giveUp <-chan struct{}) bool {
	spins := 0
	for {
		s.acquireForRead()
		if s.readGen.Load() != s.writeGen.Load()+1 {
			return true
		}
		s.abortRead()
		select {
		case <-giveUp:
			return false
		default:
		}
		if spins < maxSlotSpin {
			runtime.Gosched()
		} else {
			select {
			case <-s.drained:
			case <-giveUp:
			}
		}
		spins++
	}
}

// awaitWriteTurn acquires the slot for writing, retrying until the reader
// has produced data this writer hasn't drained yet (spec §4.4 step 2).
// Returns true with the lock held in exclusive mode, or false if giveUp
// closes first — meaning the reader has stopped for good and no further
// data is coming for this slot.
func (s *slot) awaitWriteTurn(giveUp <-chan struct{}) bool {
	spins := 0
	for {
		s.acquireForWrite()
		if s.readGen.Load() != s.writeGen.Load() {
			return true
		}
		s.abortWrite()
		select {
		case <-giveUp:
			return false
		default:
		}
		if spins < maxSlotSpin {
			runtime.Gosched()
		} else {
			select {
			case <-s.filled:
			case <-giveUp:
			}
		}
		spins++
	}
}
