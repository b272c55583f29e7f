// Package audio inspects the WAV track HLAE records next to the frames.
package audio

import (
	"errors"
	"os"
	"time"

	"github.com/go-audio/wav"

	"github.com/oszuidwest/zwfm-demorecorder/internal/util"
)

// ErrNotWAV is returned when a file is not a readable WAV file.
var ErrNotWAV = errors.New("not a valid wav file")

// Info describes a recorded audio track.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

// Probe reads the WAV header of path.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, util.WrapError("open audio", err)
	}
	defer util.SafeCloseFunc(f, "audio file")()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Info{}, ErrNotWAV
	}

	if err := dec.FwdToPCM(); err != nil {
		return Info{}, util.WrapError("read audio chunks", err)
	}

	info := Info{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}
	info.Duration = pcmDuration(dec.PCMLen(), info)
	return info, nil
}

// pcmDuration converts the size of the data chunk into play time. The
// decoder's own Duration counts header bytes as audio.
func pcmDuration(pcmBytes int64, info Info) time.Duration {
	bytesPerSecond := int64(info.SampleRate) * int64(info.Channels) * int64(info.BitDepth/8)
	if bytesPerSecond <= 0 {
		return 0
	}
	return time.Duration(pcmBytes) * time.Second / time.Duration(bytesPerSecond)
}

// VideoDuration returns how long a frame sequence plays at fps.
func VideoDuration(frames, fps int) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(fps)
}

// Drift returns the absolute difference between audio and video length.
func Drift(audio, video time.Duration) time.Duration {
	if audio > video {
		return audio - video
	}
	return video - audio
}
