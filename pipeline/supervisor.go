package pipeline

import (
	"io"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ExitClass classifies a fatal error for the CLI's exit-code mapping
// (spec §7).
type ExitClass int

const (
	ExitOK ExitClass = iota
	ExitNoInput
	ExitCannotCreate
	ExitOSError
	ExitIOError
)

// Result is the supervisor's overall outcome for one copy.
type Result struct {
	TotalCopied uint64
	Class       ExitClass
	ReaderErr   error
	WriterErr   error
}

// Err returns the error that determines Result.Class, or nil on success.
func (r Result) Err() error {
	if r.ReaderErr != nil {
		return r.ReaderErr
	}
	return r.WriterErr
}

// Supervisor allocates a pipeline's buffers, spawns the reader and writer
// loops, joins them, and finalizes the output file (spec §4.5).
type Supervisor struct {
	Pipeline *Pipeline
	log      *zap.Logger
}

// NewSupervisor allocates both buffers up front. chunkSize <= 0 selects
// DefaultChunkSize.
func NewSupervisor(chunkSize int, log *zap.Logger) *Supervisor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Supervisor{
		Pipeline: New(chunkSize, log),
		log:      log,
	}
}

// Run executes one copy from src to dst. dst must support Truncate, which
// *os.File does, for the output finalization step (spec §6).
func (s *Supervisor) Run(src io.Reader, dst *os.File) Result {
	p := s.Pipeline

	// Hold init_gate while spawning the reader, so its priming read starts
	// only after the gate is released (spec §4.5 steps 4-7). The writer
	// does not take the gate; it waits on readerReady instead.
	p.initGate.Lock()

	var g errgroup.Group
	var readerResult ReaderResult
	var writerResult WriterResult

	g.Go(func() error {
		readerResult = RunReader(p, src)
		return nil
	})

	p.initGate.Unlock()
	runtime.Gosched()

	g.Go(func() error {
		writerResult = RunWriter(p, dst)
		return nil
	})

	_ = g.Wait()

	if readerResult.Err != nil {
		s.log.Error("no input", zap.Error(readerResult.Err))
	}
	if writerResult.Err != nil {
		s.log.Error("I/O error", zap.Error(writerResult.Err))
	}

	total := p.TotalCopied()

	// Free buffers is a no-op under the garbage collector; the
	// truncate-then-record-finish ordering below matches the original's
	// own sequence (spec §4.5 step 10).
	if truncErr := dst.Truncate(int64(total)); truncErr != nil && writerResult.Err == nil {
		writerResult.Err = errors.Wrap(truncErr, "truncate output")
	}
	p.markFinished()

	result := Result{TotalCopied: total, ReaderErr: readerResult.Err, WriterErr: writerResult.Err}
	switch {
	case readerResult.Err != nil:
		result.Class = ExitNoInput
	case writerResult.Err != nil:
		result.Class = ExitIOError
	default:
		result.Class = ExitOK
	}
	return result
}
