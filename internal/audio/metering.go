package audio

import (
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/oszuidwest/zwfm-demorecorder/internal/util"
)

const (
	// MinDB is the minimum dB level (silence).
	MinDB = -60.0
	// SilenceThreshold is the peak level below which a track counts as silent.
	SilenceThreshold = -50.0
	// clipLevel is the normalized magnitude counted as a clipped sample.
	clipLevel = 32760.0

	meterChunk = 8192
)

// LevelData holds raw sample accumulator data for level calculation.
type LevelData struct {
	SumSquaresL float64
	SumSquaresR float64
	PeakL       float64
	PeakR       float64
	ClipCountL  int
	ClipCountR  int
	SampleCount int
}

// ProcessSamples accumulates interleaved integer samples at the given bit
// depth. Mono input is counted on both channels.
func ProcessSamples(samples []int, channels, bitDepth int, data *LevelData) {
	if channels < 1 {
		return
	}
	full := fullScale(bitDepth)

	for i := 0; i+channels-1 < len(samples); i += channels {
		left := float64(samples[i])
		right := left
		if channels > 1 {
			right = float64(samples[i+1])
		}
		// Normalize to 16-bit range so dB math matches any bit depth.
		left, right = left/full*32768, right/full*32768

		data.SumSquaresL += left * left
		data.SumSquaresR += right * right

		if absL := math.Abs(left); absL > data.PeakL {
			data.PeakL = absL
		}
		if absR := math.Abs(right); absR > data.PeakR {
			data.PeakR = absR
		}

		if math.Abs(left) >= clipLevel {
			data.ClipCountL++
		}
		if math.Abs(right) >= clipLevel {
			data.ClipCountR++
		}

		data.SampleCount++
	}
}

func fullScale(bitDepth int) float64 {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	return math.Exp2(float64(bitDepth - 1))
}

// Levels contains calculated audio levels in dB.
type Levels struct {
	RMSL  float64
	RMSR  float64
	PeakL float64
	PeakR float64
	ClipL int
	ClipR int
}

// Silent reports whether both channels peak below threshold dB.
func (l Levels) Silent(threshold float64) bool {
	return l.PeakL < threshold && l.PeakR < threshold
}

// CalculateLevels computes RMS and peak levels from accumulated sample data.
func CalculateLevels(data *LevelData) Levels {
	if data.SampleCount == 0 {
		return Levels{
			RMSL: MinDB, RMSR: MinDB,
			PeakL: MinDB, PeakR: MinDB,
		}
	}

	rmsL := math.Sqrt(data.SumSquaresL / float64(data.SampleCount))
	rmsR := math.Sqrt(data.SumSquaresR / float64(data.SampleCount))

	// Reference: 32768 after normalization in ProcessSamples.
	dbL := 20 * math.Log10(rmsL/32768.0)
	dbR := 20 * math.Log10(rmsR/32768.0)
	peakDbL := 20 * math.Log10(data.PeakL/32768.0)
	peakDbR := 20 * math.Log10(data.PeakR/32768.0)

	return Levels{
		RMSL:  max(dbL, MinDB),
		RMSR:  max(dbR, MinDB),
		PeakL: max(peakDbL, MinDB),
		PeakR: max(peakDbR, MinDB),
		ClipL: data.ClipCountL,
		ClipR: data.ClipCountR,
	}
}

// Measure reads the whole WAV file at path and returns its levels.
func Measure(path string) (Levels, error) {
	f, err := os.Open(path)
	if err != nil {
		return Levels{}, util.WrapError("open audio", err)
	}
	defer util.SafeCloseFunc(f, "audio file")()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Levels{}, ErrNotWAV
	}
	if err := dec.FwdToPCM(); err != nil {
		return Levels{}, util.WrapError("seek to audio data", err)
	}

	channels, bitDepth := int(dec.NumChans), int(dec.BitDepth)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: channels, SampleRate: int(dec.SampleRate)},
		Data:   make([]int, meterChunk*max(channels, 1)),
	}

	var data LevelData
	for {
		n, err := dec.PCMBuffer(buf)
		if err != nil {
			return Levels{}, util.WrapError("read audio samples", err)
		}
		if n == 0 {
			break
		}
		ProcessSamples(buf.Data[:n], channels, bitDepth, &data)
	}
	return CalculateLevels(&data), nil
}
