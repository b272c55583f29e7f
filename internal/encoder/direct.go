package encoder

import (
	"os"
	"path/filepath"

	"github.com/oszuidwest/zwfm-demorecorder/internal/capture"
	"github.com/oszuidwest/zwfm-demorecorder/internal/config"
	"github.com/oszuidwest/zwfm-demorecorder/internal/ffmpeg"
	"github.com/oszuidwest/zwfm-demorecorder/internal/process"
	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
	"github.com/oszuidwest/zwfm-demorecorder/internal/util"
)

// DirectArgsEncoder renders by invoking FFmpeg with a built argument list.
type DirectArgsEncoder struct {
	Settings  config.FFmpegConfig
	FrameRate int
}

// Kind implements Encoder.
func (e *DirectArgsEncoder) Kind() types.EncoderKind {
	return types.EncoderFFmpeg
}

// Build checks the inputs and returns the FFmpeg invocation.
func (e *DirectArgsEncoder) Build(a capture.Artifacts) (process.Job, error) {
	switch {
	case !a.CaptureStarted:
		return process.Job{}, precondition(e.Kind(), ErrFirstFrameMissing)
	case a.AudioFile == "" || !a.AudioExists():
		return process.Job{}, precondition(e.Kind(), ErrAudioMissing)
	case a.OutputFile == "":
		return process.Job{}, precondition(e.Kind(), ErrOutputUnresolved)
	}

	if err := os.MkdirAll(filepath.Dir(a.OutputFile), 0o755); err != nil {
		return process.Job{}, util.WrapError("create output directory", err)
	}

	args := ffmpeg.BuildArgs(ffmpeg.Input{
		FrameRate:       e.FrameRate,
		FrameDir:        a.FrameDir,
		AudioFile:       a.AudioFile,
		VideoCodec:      e.Settings.VideoCodec,
		VideoQuality:    e.Settings.VideoQuality,
		AudioCodec:      e.Settings.AudioCodec,
		AudioBitrate:    e.Settings.AudioBitrate,
		InputParameters: e.Settings.InputParameters,
		ExtraParameters: e.Settings.ExtraParameters,
		OutputFile:      a.OutputFile,
	})

	return process.Job{Path: e.Settings.ExePath, Args: args, Dir: a.TakeDir}, nil
}
