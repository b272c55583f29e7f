// Package encoder turns HLAE's raw frames and audio into a video with either
// VirtualDub (job file) or FFmpeg (argument list).
package encoder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oszuidwest/zwfm-demorecorder/internal/capture"
	"github.com/oszuidwest/zwfm-demorecorder/internal/config"
	"github.com/oszuidwest/zwfm-demorecorder/internal/process"
	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
)

// Precondition failures. Each aborts the encode before any process starts.
var (
	ErrFrameDirMissing   = errors.New("frame directory not found")
	ErrNoFrames          = errors.New("no frame images found")
	ErrOutputUnresolved  = errors.New("output file path not resolved")
	ErrFirstFrameMissing = errors.New("first frame image not found")
	ErrAudioMissing      = errors.New("audio file not found")
)

// PreconditionError reports a missing input detected before launching an encoder.
type PreconditionError struct {
	Encoder types.EncoderKind
	Err     error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Encoder, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// Encoder builds the process invocation for one encode attempt.
type Encoder interface {
	Kind() types.EncoderKind
	// Build validates artifacts and returns the job to run. Any side files
	// the encoder needs are written here.
	Build(a capture.Artifacts) (process.Job, error)
}

// Outcome is the result of one encoder run. ExitCode is reported as-is and
// never used for flow control: encoders exit non-zero on harmless warnings.
type Outcome struct {
	Job      process.Job
	ExitCode int
	Duration time.Duration
}

// BuildAndRun builds enc's job and runs it to completion. started is called
// right before launch and may be nil.
func BuildAndRun(ctx context.Context, enc Encoder, runner process.Runner, a capture.Artifacts, started func(process.Job)) (Outcome, error) {
	job, err := enc.Build(a)
	if err != nil {
		return Outcome{}, err
	}

	if started != nil {
		started(job)
	}

	begin := time.Now()
	code, err := runner.Run(ctx, job)
	out := Outcome{Job: job, ExitCode: code, Duration: time.Since(begin)}
	if err != nil {
		return out, err
	}
	return out, nil
}

// Select returns the encoder the run is configured for.
func Select(cfg *config.Run, resolver *capture.Resolver) Encoder {
	if cfg.UseVirtualDub {
		return &JobFileEncoder{
			ExePath:   cfg.VirtualDub.ExePath,
			JobPath:   resolver.JobPath(),
			FrameRate: cfg.FrameRate,
		}
	}
	return &DirectArgsEncoder{
		Settings:  cfg.FFmpeg,
		FrameRate: cfg.FrameRate,
	}
}

func precondition(kind types.EncoderKind, err error) error {
	return &PreconditionError{Encoder: kind, Err: err}
}
