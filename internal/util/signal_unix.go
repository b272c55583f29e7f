//go:build !windows

package util

import (
	"os"
	"syscall"
)

// ShutdownSignals returns the signals that abort a running render.
func ShutdownSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}

// GracefulSignal asks a process to stop.
// On Unix, this sends SIGINT so encoders can finalize their container.
func GracefulSignal(p *os.Process) error {
	return p.Signal(syscall.SIGINT)
}
