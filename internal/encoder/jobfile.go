package encoder

import (
	"fmt"
	"path/filepath"

	"github.com/oszuidwest/zwfm-demorecorder/internal/capture"
	"github.com/oszuidwest/zwfm-demorecorder/internal/process"
	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
	"github.com/oszuidwest/zwfm-demorecorder/internal/util"
)

// jobTemplate is a VirtualDub job list. Substitutions: first frame, audio,
// frame rate, frame count, output. Paths must already be escaped.
const jobTemplate = `// VirtualDub job list (Sylia script format)
// This is a program generated file -- edit at your own risk.
//
// $numjobs 1
//

// $job "Job 1"
// $input "%[1]s"
// $output "%[5]s"
// $state 0
// $start_time 0 0
// $end_time 0 0
// $script

VirtualDub.Open("%[1]s","",0);
VirtualDub.audio.SetSource("%[2]s", "");
VirtualDub.audio.SetMode(0);
VirtualDub.audio.SetInterleave(1,500,1,0,0);
VirtualDub.audio.SetClipMode(1,1);
VirtualDub.audio.SetConversion(0,0,0,0,0);
VirtualDub.audio.SetVolume();
VirtualDub.audio.SetCompression();
VirtualDub.audio.EnableFilterGraph(0);
VirtualDub.video.SetInputFormat(0);
VirtualDub.video.SetOutputFormat(7);
VirtualDub.video.SetMode(3);
VirtualDub.video.SetSmartRendering(0);
VirtualDub.video.SetPreserveEmptyFrames(0);
VirtualDub.video.SetFrameRate2(%[3]d,1,1);
VirtualDub.video.SetIVTC(0, 0, 0, 0);
VirtualDub.video.SetCompression();
VirtualDub.video.filters.Clear();
VirtualDub.audio.filters.Clear();
VirtualDub.subset.Clear();
VirtualDub.subset.AddRange(0,%[4]d);
VirtualDub.project.ClearTextInfo();
VirtualDub.SaveAVI("%[5]s");
VirtualDub.audio.SetSource(1);
VirtualDub.Close();

// $endjob
//
//--------------------------------------------------
// $done
`

// JobFileEncoder renders through a VirtualDub job file.
type JobFileEncoder struct {
	ExePath   string
	JobPath   string
	FrameRate int
}

// Kind implements Encoder.
func (e *JobFileEncoder) Kind() types.EncoderKind {
	return types.EncoderVirtualDub
}

// Build checks every input VirtualDub needs, then regenerates the job file.
func (e *JobFileEncoder) Build(a capture.Artifacts) (process.Job, error) {
	switch {
	case !a.FrameDirExists:
		return process.Job{}, precondition(e.Kind(), ErrFrameDirMissing)
	case a.FrameCount() == 0:
		return process.Job{}, precondition(e.Kind(), ErrNoFrames)
	case a.OutputFile == "":
		return process.Job{}, precondition(e.Kind(), ErrOutputUnresolved)
	case !a.CaptureStarted:
		return process.Job{}, precondition(e.Kind(), ErrFirstFrameMissing)
	case a.AudioFile == "" || !a.AudioExists():
		return process.Job{}, precondition(e.Kind(), ErrAudioMissing)
	}

	if err := capture.WriteFile(e.JobPath, []byte(JobText(a, e.FrameRate))); err != nil {
		return process.Job{}, util.WrapError("write job file", err)
	}

	return process.Job{
		Path: e.ExePath,
		Args: []string{"/min", "/s", e.JobPath, "/x"},
		Dir:  filepath.Dir(e.ExePath),
	}, nil
}

// JobText renders the job file for a snapshot.
func JobText(a capture.Artifacts, frameRate int) string {
	return fmt.Sprintf(jobTemplate,
		capture.EscapePath(a.FirstFrame),
		capture.EscapePath(a.AudioFile),
		frameRate,
		a.FrameCount(),
		capture.EscapePath(a.OutputFile),
	)
}
