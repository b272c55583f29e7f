//go:build windows

package util

import (
	"errors"
	"os"
)

// ErrGracefulNotSupported indicates graceful shutdown is not supported.
// When returned from exec.Cmd.Cancel, Go will wait WaitDelay then kill.
var ErrGracefulNotSupported = errors.New("graceful signal not supported on Windows")

// ShutdownSignals returns the signals that abort a running render.
func ShutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

// GracefulSignal attempts graceful process termination.
// Windows has no SIGINT for child processes; the error makes exec.Cmd
// fall back to Kill after WaitDelay.
func GracefulSignal(_ *os.Process) error {
	return ErrGracefulNotSupported
}
