// Package types provides shared type definitions used across the recorder.
package types

import "time"

// State represents a phase of a render run.
type State string

const (
	// StateIdle indicates nothing has started yet.
	StateIdle State = "idle"
	// StateCaptureRunning indicates the game and HLAE are playing the demo.
	StateCaptureRunning State = "capture_running"
	// StateCaptureDone indicates the game closed and raw files are on disk.
	StateCaptureDone State = "capture_done"
	// StateEncoding indicates an encoder process is running.
	StateEncoding State = "encoding"
	// StateCleanup indicates raw files are being removed.
	StateCleanup State = "cleanup"
	// StateTerminal indicates the run is over.
	StateTerminal State = "terminal"
)

// EventType identifies a lifecycle notification.
type EventType string

// Lifecycle events re-emitted to listeners.
const (
	EventStateChanged    EventType = "state_changed"
	EventHelperStarted   EventType = "hlae_started"
	EventHelperClosed    EventType = "hlae_closed"
	EventGameStarted     EventType = "game_started"
	EventGameRunning     EventType = "game_running"
	EventGameClosed      EventType = "game_closed"
	EventEncoderStarted  EventType = "encoder_started"
	EventEncoderClosed   EventType = "encoder_closed"
	EventCaptureAborted  EventType = "capture_aborted"
	EventOutputRevealed  EventType = "output_revealed"
	EventRunFailed       EventType = "run_failed"
	EventRunCompleted    EventType = "run_completed"
	EventRawFilesRemoved EventType = "raw_files_removed"
)

// Event is a typed notification published by the orchestrator.
type Event struct {
	RunID    string    `json:"run_id"`
	Type     EventType `json:"type"`
	State    State     `json:"state"`
	Time     time.Time `json:"time"`
	Encoder  string    `json:"encoder,omitzero"`
	ExitCode *int      `json:"exit_code,omitempty"`
	Error    string    `json:"error,omitzero"`
}

// EncoderKind selects the video encoder integration.
type EncoderKind string

const (
	// EncoderVirtualDub renders through a VirtualDub job file.
	EncoderVirtualDub EncoderKind = "virtualdub"
	// EncoderFFmpeg renders by invoking FFmpeg with an argument list.
	EncoderFFmpeg EncoderKind = "ffmpeg"
)

// OutputExtension returns the container extension each encoder produces.
func (k EncoderKind) OutputExtension() string {
	if k == EncoderVirtualDub {
		return "avi"
	}
	return "mp4"
}

// HLAE file naming conventions.
const (
	TakeFolderPrefix = "take"
	StreamName       = "defaultNormal"
	FrameExtension   = "tga"
	FirstFrameName   = "00000." + FrameExtension
	AudioFilePattern = "*.wav"
	UserConfigName   = "movie"
)

// Process image names killed by Cancel.
const (
	ProcessGame       = "csgo.exe"
	ProcessHelper     = "HLAE.exe"
	ProcessVirtualDub = "VirtualDub.exe"
	ProcessFFmpeg     = "ffmpeg.exe"
)

// KnownProcesses lists every external process a run may leave behind.
var KnownProcesses = []string{ProcessGame, ProcessHelper, ProcessVirtualDub, ProcessFFmpeg}

// Run outcomes reported to notifiers and metrics.
const (
	OutcomeCompleted = "completed"
	OutcomeAborted   = "aborted"
	OutcomeFailed    = "failed"
)

// RunResult summarizes one orchestration pass.
type RunResult struct {
	RunID      string      `json:"run_id"`
	Name       string      `json:"name"`
	State      State       `json:"state"`
	Encoder    EncoderKind `json:"encoder,omitzero"`
	EarlyAbort bool        `json:"early_abort"`
	Encoded    bool        `json:"encoded"`
	OutputFile string      `json:"output_file,omitzero"`
	// ExitCode is the encoder's raw exit status. It is never used to decide
	// success: VirtualDub and FFmpeg both exit non-zero on benign warnings.
	ExitCode      int           `json:"exit_code"`
	Frames        int           `json:"frames"`
	AudioDuration time.Duration `json:"audio_duration"`
	Started       time.Time     `json:"started"`
	Finished      time.Time     `json:"finished"`
	Error         string        `json:"error,omitzero"`
}

// Outcome classifies the result as completed, aborted or failed.
func (r RunResult) Outcome() string {
	switch {
	case r.Error != "":
		return OutcomeFailed
	case r.EarlyAbort:
		return OutcomeAborted
	default:
		return OutcomeCompleted
	}
}

// Elapsed returns how long the run took.
func (r RunResult) Elapsed() time.Duration {
	return r.Finished.Sub(r.Started)
}
