// Package process runs external tools (HLAE, the game, encoders) and kills
// leftovers by image name.
package process

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/oszuidwest/zwfm-demorecorder/internal/ffmpeg"
	"github.com/oszuidwest/zwfm-demorecorder/internal/util"
)

// ShutdownTimeout is how long a cancelled process gets before it is killed.
const ShutdownTimeout = 3 * time.Second

// Job is one invocation of an external executable.
type Job struct {
	Path string
	Args []string
	Dir  string
}

// Name returns the executable base name for logs.
func (j Job) Name() string {
	return filepath.Base(j.Path)
}

// Runner starts a job and waits for it to exit.
type Runner interface {
	// Run returns the exit code of the process. A non-zero exit is not an
	// error; only failing to start or wait is.
	Run(ctx context.Context, job Job) (int, error)
}

// ExecRunner runs jobs with os/exec.
type ExecRunner struct {
	logger *slog.Logger
}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{logger: logger}
}

// Run starts job and blocks until it exits or ctx is cancelled.
func (r *ExecRunner) Run(ctx context.Context, job Job) (int, error) {
	cmd := exec.CommandContext(ctx, job.Path, job.Args...)
	cmd.Dir = job.Dir

	stderr := util.NewStderrBuffer()
	cmd.Stderr = stderr
	cmd.Cancel = func() error {
		return util.GracefulSignal(cmd.Process)
	}
	cmd.WaitDelay = ShutdownTimeout

	r.logger.Info("starting process", "name", job.Name(), "dir", job.Dir, "args", job.Args)
	if err := cmd.Start(); err != nil {
		return -1, util.WrapError("start "+job.Name(), err)
	}

	err := cmd.Wait()
	code := -1
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return code, ctxErr
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return code, util.WrapError("wait for "+job.Name(), err)
	}

	if code != 0 {
		r.logger.Warn("process exited with non-zero status", "name", job.Name(), "exit_code", code,
			"stderr", ffmpeg.ExtractLastError(stderr.String()))
	} else {
		r.logger.Info("process exited", "name", job.Name())
	}
	return code, nil
}

// Killer terminates every process with a given image name.
type Killer interface {
	KillByName(ctx context.Context, name string) error
}

// SystemKiller kills processes with the platform's process tools.
type SystemKiller struct{}

// KillByName force-kills all processes named name. Matching nothing is not an error.
func (SystemKiller) KillByName(ctx context.Context, name string) error {
	cmd := killCommand(ctx, name)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// No matching process, or it exited while we looked.
			return nil
		}
		return util.WrapError("kill "+name, err)
	}
	return nil
}

// Exists reports whether a process with the given image name is running.
func Exists(ctx context.Context, name string) bool {
	return processExists(ctx, name)
}
