package pipeline

// ReaderState is the reader loop's status enum (spec §3). The enum feeds
// diagnostics and the progress view, and it also takes part in the
// writer's loop condition: RunWriter keeps going while readerDone reports
// false for this value or either slot's generation counters show undrained
// data, so termination is not derived from the generation counters alone.
type ReaderState int32

const (
	ReaderBeforeFirstRead ReaderState = iota
	ReaderReadBegun
	ReaderReadFinished
	ReaderReadFailed
	ReaderEndOfFile
)

func (s ReaderState) String() string {
	switch s {
	case ReaderBeforeFirstRead:
		return "before-first-read"
	case ReaderReadBegun:
		return "read-begun"
	case ReaderReadFinished:
		return "read-finished"
	case ReaderReadFailed:
		return "read-failed"
	case ReaderEndOfFile:
		return "end-of-file"
	default:
		return "unknown"
	}
}

// readerDone reports whether the reader has reached a terminal state —
// either a clean EOF or a failed read. The writer treats both the same
// way: stop waiting for new data, but still drain whatever is already
// sitting in a slot (spec §4.4 termination, generalized from spec §9's
// EOF-only condition to also cover the reader-failure case, since
// otherwise a failed read leaves the writer spinning on a slot that
// will never be filled again).
func readerDone(s ReaderState) bool {
	return s == ReaderEndOfFile || s == ReaderReadFailed
}

// WriterState is the writer loop's status enum (spec §3).
type WriterState int32

const (
	WriterBeforeFirstWrite WriterState = iota
	WriterWriteBegun
	WriterWriteFinished
	WriterWriteFailed
)

func (s WriterState) String() string {
	switch s {
	case WriterBeforeFirstWrite:
		return "before-first-write"
	case WriterWriteBegun:
		return "write-begun"
	case WriterWriteFinished:
		return "write-finished"
	case WriterWriteFailed:
		return "write-failed"
	default:
		return "unknown"
	}
}
