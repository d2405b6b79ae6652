// Package progresssignal installs the SIGINFO/SIGUSR1 progress-reporting
// handler (spec §6). Go's os/signal delivery is itself the "dedicated
// thread consuming an atomic flag" spec §9 recommends in place of
// formatted printing from true signal-handler context: the runtime's
// signal handler only enqueues onto a channel, and the relay goroutine
// below is where the actual render and print happen.
package progresssignal

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
)

// Renderer produces the line to print when the signal arrives.
type Renderer func() string

// Install registers render to run on Signal, writing its result to w, and
// returns a function that stops the relay; calling it again after the
// first call does nothing. Restart-on-signal semantics
// (so an in-flight read/write syscall is not interrupted) are the
// default for signals registered through os/signal; no extra flag is
// needed the way POSIX sigaction's SA_RESTART is in the original.
func Install(w io.Writer, render Renderer) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, Signal)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				fmt.Fprintln(w, render())
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}
