//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package progresssignal

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// Signal is SIGINFO (triggered by ^T at the controlling terminal, or
// `kill -INFO`), the preferred progress-report signal on platforms that
// define it (spec §6).
var Signal = syscall.Signal(unix.SIGINFO)
