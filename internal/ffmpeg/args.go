// Package ffmpeg builds FFmpeg invocations for turning HLAE frames into a video.
package ffmpeg

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
)

// FramePattern is the image2 input pattern matching HLAE's zero-padded frame names.
const FramePattern = "%05d." + types.FrameExtension

// Input holds everything BuildArgs needs.
type Input struct {
	FrameRate       int
	FrameDir        string
	AudioFile       string
	VideoCodec      string
	VideoQuality    int
	AudioCodec      string
	AudioBitrate    int // kbit/s
	InputParameters string
	ExtraParameters string
	OutputFile      string
}

// ExtractLastError extracts the last meaningful line from FFmpeg stderr.
// Returns empty string if no meaningful line is found.
func ExtractLastError(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if len(line) > 200 {
			return line[:200] + "..."
		}
		return line
	}
	return ""
}

// BuildArgs returns the FFmpeg arguments in their fixed positional order:
// overwrite, input format and rate, optional input parameters, frames, audio,
// video codec and quality, audio codec and bitrate, optional extra parameters, output.
func BuildArgs(in Input) []string {
	args := []string{
		"-y",
		"-f", "image2",
		"-framerate", strconv.Itoa(in.FrameRate),
	}
	args = append(args, splitParameters(in.InputParameters)...)
	args = append(args,
		"-i", filepath.Join(in.FrameDir, FramePattern),
		"-i", in.AudioFile,
		"-vcodec", in.VideoCodec,
		"-crf", strconv.Itoa(in.VideoQuality),
		"-acodec", in.AudioCodec,
		"-b:a", strconv.Itoa(in.AudioBitrate)+"k",
	)
	args = append(args, splitParameters(in.ExtraParameters)...)
	return append(args, in.OutputFile)
}

// splitParameters breaks user supplied parameters into arguments on whitespace.
// The tokens are passed on as-is.
func splitParameters(raw string) []string {
	return strings.Fields(raw)
}
