// Package orchestrator drives one render run: capture through HLAE, encode
// the raw files, and clean up afterwards.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/oszuidwest/zwfm-demorecorder/internal/audio"
	"github.com/oszuidwest/zwfm-demorecorder/internal/capture"
	"github.com/oszuidwest/zwfm-demorecorder/internal/config"
	"github.com/oszuidwest/zwfm-demorecorder/internal/encoder"
	"github.com/oszuidwest/zwfm-demorecorder/internal/launcher"
	"github.com/oszuidwest/zwfm-demorecorder/internal/process"
	"github.com/oszuidwest/zwfm-demorecorder/internal/script"
	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
	"github.com/oszuidwest/zwfm-demorecorder/internal/util"
)

const (
	// EventBufferSize exceeds the number of events a single run can publish,
	// so publishing never blocks even when nobody listens.
	EventBufferSize = 64

	// CancelTimeout bounds how long Cancel waits for the kill commands.
	CancelTimeout = 10 * time.Second

	// MaxAudioDrift is the audio/video length difference that gets logged.
	MaxAudioDrift = time.Second
)

// ErrAlreadyRun is returned when Run is called twice on one Orchestrator.
var ErrAlreadyRun = errors.New("orchestrator already ran")

// Revealer highlights a finished file in the desktop file browser.
type Revealer interface {
	Reveal(ctx context.Context, path string) error
}

// Notifier is told about every finished run.
type Notifier interface {
	Notify(ctx context.Context, result types.RunResult)
}

// Observer records phase timings and run outcomes.
type Observer interface {
	ObservePhase(state types.State, d time.Duration)
	ObserveRun(result types.RunResult)
}

// Deps are the collaborators of an Orchestrator. Launcher, Runner and Killer
// are required; the rest may be nil.
type Deps struct {
	Launcher launcher.Launcher
	Runner   process.Runner
	Killer   process.Killer
	Revealer Revealer
	Notifier Notifier
	Observer Observer
	Logger   *slog.Logger
}

// Orchestrator runs the capture and encode phases for one configuration.
type Orchestrator struct {
	cfg      *config.Run
	resolver *capture.Resolver
	encoder  encoder.Encoder
	deps     Deps
	logger   *slog.Logger
	runID    string

	events  chan types.Event
	started atomic.Bool

	mu         sync.Mutex
	state      types.State
	stateSince time.Time
}

// New returns an Orchestrator for a copy of cfg. The encoder is chosen here, once.
func New(cfg *config.Run, deps Deps) *Orchestrator {
	cfg = cfg.Clone()
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.NewString()
	resolver := capture.NewResolver(cfg)

	return &Orchestrator{
		cfg:        cfg,
		resolver:   resolver,
		encoder:    encoder.Select(cfg, resolver),
		deps:       deps,
		logger:     logger.With("run_id", runID),
		runID:      runID,
		events:     make(chan types.Event, EventBufferSize),
		state:      types.StateIdle,
		stateSince: time.Now(),
	}
}

// RunID returns the identifier attached to every event of this run.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Events returns the event stream. It is closed once the run is terminal.
func (o *Orchestrator) Events() <-chan types.Event {
	return o.events
}

// State returns the current phase.
func (o *Orchestrator) State() types.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Run executes the run to completion. A capture that never produced its first
// frame is reported through Result.EarlyAbort with a nil error.
func (o *Orchestrator) Run(ctx context.Context) (types.RunResult, error) {
	if !o.started.CompareAndSwap(false, true) {
		return types.RunResult{}, ErrAlreadyRun
	}
	defer close(o.events)

	res := types.RunResult{
		RunID:   o.runID,
		Name:    o.cfg.BaseName(),
		Encoder: o.encoder.Kind(),
		Started: time.Now(),
	}
	o.logger.Info("starting run", "run", o.cfg.String())

	err := o.run(ctx, &res)

	o.transition(types.StateTerminal)
	res.State = types.StateTerminal
	res.Finished = time.Now()
	if err != nil {
		res.Error = err.Error()
		o.emit(types.Event{Type: types.EventRunFailed, Error: res.Error})
		o.logger.Error("run failed", "error", err, "elapsed", res.Elapsed())
	} else {
		o.emit(types.Event{Type: types.EventRunCompleted})
		o.logger.Info("run finished", "outcome", res.Outcome(), "elapsed", res.Elapsed())
	}

	if o.deps.Observer != nil {
		o.deps.Observer.ObserveRun(res)
	}
	if o.deps.Notifier != nil {
		o.deps.Notifier.Notify(context.WithoutCancel(ctx), res)
	}
	return res, err
}

func (o *Orchestrator) run(ctx context.Context, res *types.RunResult) error {
	if o.cfg.GenerateRawFiles {
		o.transition(types.StateCaptureRunning)
		if err := o.capture(ctx); err != nil {
			return err
		}
	}
	o.transition(types.StateCaptureDone)

	snap := o.resolver.Snapshot()
	res.Frames = snap.FrameCount()
	if !snap.CaptureStarted {
		res.EarlyAbort = true
		o.logger.Info("first frame missing, capture was aborted", "take", snap.TakeDir)
		o.emit(types.Event{Type: types.EventCaptureAborted})
		return nil
	}

	if !o.cfg.GenerateVideo {
		return nil
	}

	o.transition(types.StateEncoding)
	if err := o.encode(ctx, snap, res); err != nil {
		return err
	}

	o.transition(types.StateCleanup)
	o.cleanup(ctx, res.OutputFile)
	return nil
}

// capture writes the single-run files, plays the demo and removes the files
// again once the game has closed.
func (o *Orchestrator) capture(ctx context.Context) error {
	userCfg := o.resolver.UserConfigPath()
	scriptPath := o.resolver.ScriptPath()

	if err := capture.WriteFile(userCfg, []byte(script.UserConfig(o.cfg.UserCommands))); err != nil {
		return util.WrapError("write user config", err)
	}
	actions := script.Generate(o.cfg, o.resolver.Root())
	if err := capture.WriteFile(scriptPath, []byte(script.Render(actions))); err != nil {
		return util.WrapError("write script", err)
	}
	o.logger.Info("wrote capture script", "path", scriptPath, "actions", len(actions))

	defer func() {
		for _, path := range []string{scriptPath, userCfg} {
			if err := util.RemoveIfExists(path); err != nil {
				o.logger.Warn("failed to remove single-run file", "path", path, "error", err)
			}
		}
	}()

	opts := launcher.OptionsFrom(o.cfg)
	opts.ScriptPath = scriptPath
	if err := o.deps.Launcher.Launch(ctx, opts, o.launcherCallbacks()); err != nil {
		return util.WrapError("run capture", err)
	}
	return nil
}

func (o *Orchestrator) launcherCallbacks() launcher.Callbacks {
	forward := func(t types.EventType) func() {
		return func() { o.emit(types.Event{Type: t}) }
	}
	return launcher.Callbacks{
		HelperStarted: forward(types.EventHelperStarted),
		HelperClosed:  forward(types.EventHelperClosed),
		GameStarted:   forward(types.EventGameStarted),
		GameRunning:   forward(types.EventGameRunning),
		GameClosed:    forward(types.EventGameClosed),
	}
}

func (o *Orchestrator) encode(ctx context.Context, snap capture.Artifacts, res *types.RunResult) error {
	kind := string(o.encoder.Kind())
	started := func(job process.Job) {
		o.logger.Info("starting encoder", "encoder", kind, "path", job.Path, "frames", snap.FrameCount())
		o.emit(types.Event{Type: types.EventEncoderStarted, Encoder: kind})
	}

	out, err := encoder.BuildAndRun(ctx, o.encoder, o.deps.Runner, snap, started)
	if out.Job.Path != "" {
		code := out.ExitCode
		o.emit(types.Event{Type: types.EventEncoderClosed, Encoder: kind, ExitCode: &code})
	}
	if err != nil {
		return err
	}

	res.Encoded = true
	res.ExitCode = out.ExitCode
	res.OutputFile = snap.OutputFile
	o.logger.Info("encoder closed", "encoder", kind, "exit_code", out.ExitCode, "took", out.Duration)

	o.checkAudio(snap, res)
	return nil
}

// checkAudio compares the WAV length with the captured frames. It only logs.
func (o *Orchestrator) checkAudio(snap capture.Artifacts, res *types.RunResult) {
	info, err := audio.Probe(snap.AudioFile)
	if err != nil {
		o.logger.Debug("skipping audio check", "path", snap.AudioFile, "error", err)
		return
	}
	res.AudioDuration = info.Duration

	video := audio.VideoDuration(snap.FrameCount(), o.cfg.FrameRate)
	if drift := audio.Drift(info.Duration, video); drift > MaxAudioDrift {
		o.logger.Warn("audio and video length differ", "audio", info.Duration, "video", video, "drift", drift)
	}

	levels, err := audio.Measure(snap.AudioFile)
	if err != nil {
		o.logger.Debug("skipping audio level check", "path", snap.AudioFile, "error", err)
		return
	}
	if levels.Silent(audio.SilenceThreshold) {
		o.logger.Warn("captured audio is silent", "path", snap.AudioFile, "peak_db", max(levels.PeakL, levels.PeakR))
	}
}

func (o *Orchestrator) cleanup(ctx context.Context, output string) {
	if o.cfg.CleanUpRawFiles {
		if err := o.resolver.RemoveRoot(); err != nil {
			o.logger.Warn("failed to remove raw files", "path", o.resolver.Root(), "error", err)
		} else {
			o.emit(types.Event{Type: types.EventRawFilesRemoved})
		}
	}

	if o.cfg.OpenInExplorer && o.deps.Revealer != nil {
		if err := o.deps.Revealer.Reveal(ctx, output); err != nil {
			o.logger.Warn("failed to reveal output", "path", output, "error", err)
			return
		}
		o.emit(types.Event{Type: types.EventOutputRevealed})
	}
}

// Cancel kills every known external process. It may be called at any time,
// any number of times, and never fails. A run blocked on one of the killed
// processes continues with whatever exit status the system reports.
func (o *Orchestrator) Cancel() {
	ctx, cancel := context.WithTimeout(context.Background(), CancelTimeout)
	defer cancel()

	var g errgroup.Group
	for _, name := range types.KnownProcesses {
		g.Go(func() error {
			if err := o.deps.Killer.KillByName(ctx, name); err != nil {
				o.logger.Debug("kill failed", "process", name, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	o.logger.Info("cancel requested, killed external processes")
}

func (o *Orchestrator) transition(to types.State) {
	o.mu.Lock()
	from, since := o.state, o.stateSince
	o.state, o.stateSince = to, time.Now()
	o.mu.Unlock()

	if o.deps.Observer != nil && from != types.StateIdle {
		o.deps.Observer.ObservePhase(from, time.Since(since))
	}
	o.logger.Debug("state changed", "from", from, "to", to)
	o.emit(types.Event{Type: types.EventStateChanged})
}

// emit stamps e with the run ID, current state and time, and publishes it.
func (o *Orchestrator) emit(e types.Event) {
	e.RunID = o.runID
	e.State = o.State()
	e.Time = time.Now()
	o.events <- e
}
