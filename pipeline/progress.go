package pipeline

import (
	"fmt"
	"time"

	"github.com/boredzo/dd-parallel/internal/format"
)

// ProgressView is the read-only snapshot surface the signal-driven live
// reporter and the supervisor's final summary line both render (spec
// §4.6). It carries no coordination responsibility of its own: every field
// is a single-value atomic load taken by Pipeline.Snapshot, so calling it
// from a signal handler's context can never deadlock (spec §8 "Progress-
// view safety").
type ProgressView struct {
	ReaderState ReaderState
	TotalCopied uint64
	StartedAt   time.Time
	FinishedAt  time.Time
	Final       bool
}

// Snapshot captures a coherent-per-field, not coherent-across-fields, view
// of the pipeline's progress counters (spec §4.2).
func (p *Pipeline) Snapshot(final bool) ProgressView {
	v := ProgressView{
		ReaderState: p.ReaderState(),
		TotalCopied: p.TotalCopied(),
		Final:       final,
	}
	if started, ok := p.StartedAt(); ok {
		v.StartedAt = started
	}
	if final {
		if finished, ok := p.FinishedAt(); ok {
			v.FinishedAt = finished
		} else {
			v.FinishedAt = time.Now()
		}
	}
	return v
}

// Render produces the single progress line described in spec §4.6.
func (v ProgressView) Render() string {
	if v.ReaderState == ReaderBeforeFirstRead {
		return "Copy has not started yet."
	}

	end := v.FinishedAt
	if end.IsZero() {
		end = time.Now()
	}
	elapsed := end.Sub(v.StartedAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	var rate float64
	if elapsed > 0 {
		rate = float64(v.TotalCopied) / elapsed
	}

	verb := "Have copied"
	if v.Final {
		verb = "Copied"
	}
	return fmt.Sprintf("%s %s in %s (overall avg %s/sec)",
		verb,
		format.ByteCount(v.TotalCopied),
		format.Interval(elapsed),
		format.ByteCount(uint64(rate)),
	)
}
