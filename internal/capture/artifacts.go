package capture

// Artifacts is a point-in-time view of the raw files of the last take.
// HLAE may still be writing, so an Artifacts value is never reused across phases.
type Artifacts struct {
	TakeDir        string
	FrameDir       string
	FrameDirExists bool
	Frames         []string
	FirstFrame     string
	AudioFile      string
	OutputFile     string
	CaptureStarted bool
}

// FrameCount returns the number of frame images in the snapshot.
func (a *Artifacts) FrameCount() int {
	return len(a.Frames)
}

// AudioExists reports whether the resolved audio file is present.
func (a *Artifacts) AudioExists() bool {
	return fileExists(a.AudioFile)
}

// Snapshot resolves the last take once and derives every artifact from it.
func (r *Resolver) Snapshot() Artifacts {
	take := r.LastTake()
	frameDir := FrameDir(take)
	first := FirstFrame(frameDir)

	return Artifacts{
		TakeDir:        take,
		FrameDir:       frameDir,
		FrameDirExists: dirExists(frameDir),
		Frames:         Frames(frameDir),
		FirstFrame:     first,
		AudioFile:      LastAudio(take),
		OutputFile:     r.OutputFile(),
		CaptureStarted: fileExists(first),
	}
}
