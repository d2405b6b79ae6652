//go:build !(darwin || freebsd || netbsd || openbsd || dragonfly)

package progresssignal

import "syscall"

// Signal is SIGUSR1, the progress-report signal used where the platform
// has no SIGINFO (spec §6).
var Signal = syscall.SIGUSR1
