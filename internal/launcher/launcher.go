// Package launcher starts CS:GO through HLAE and reports the lifecycle of both.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oszuidwest/zwfm-demorecorder/internal/config"
	"github.com/oszuidwest/zwfm-demorecorder/internal/process"
	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
)

// Polling defaults for the game process watcher.
const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultStartTimeout = 2 * time.Minute
)

// ErrGameNotStarted is returned when the game never appeared after HLAE ran.
var ErrGameNotStarted = errors.New("game process did not start")

// Options is the launch bundle taken from the run configuration.
type Options struct {
	HLAEPath         string
	GamePath         string
	DemoPath         string
	ScriptPath       string
	Width            int
	Height           int
	Fullscreen       bool
	LaunchParameters string
}

// OptionsFrom extracts launch options from a run configuration. ScriptPath
// is left for the caller, which owns the script file.
func OptionsFrom(cfg *config.Run) Options {
	return Options{
		HLAEPath:         cfg.Game.HLAEExePath,
		GamePath:         cfg.Game.CSGOExePath,
		DemoPath:         cfg.Game.DemoPath,
		Width:            cfg.Game.Width,
		Height:           cfg.Game.Height,
		Fullscreen:       cfg.Game.Fullscreen,
		LaunchParameters: cfg.Game.LaunchParameters,
	}
}

// Callbacks receive lifecycle notifications. Any of them may be nil.
// They are called from the launcher's goroutines.
type Callbacks struct {
	HelperStarted func()
	HelperClosed  func()
	GameStarted   func()
	GameRunning   func()
	GameClosed    func()
}

func fire(f func()) {
	if f != nil {
		f()
	}
}

// Launcher starts the game with the capture helper attached.
type Launcher interface {
	// Launch blocks until the game has closed.
	Launch(ctx context.Context, opts Options, cb Callbacks) error
}

// HLAE launches the game through HLAE's command line launcher.
type HLAE struct {
	Runner       process.Runner
	Exists       func(ctx context.Context, name string) bool
	PollInterval time.Duration
	StartTimeout time.Duration
	Logger       *slog.Logger
}

// NewHLAE returns an HLAE launcher that polls the system process table.
func NewHLAE(runner process.Runner, logger *slog.Logger) *HLAE {
	if logger == nil {
		logger = slog.Default()
	}
	return &HLAE{
		Runner:       runner,
		Exists:       process.Exists,
		PollInterval: DefaultPollInterval,
		StartTimeout: DefaultStartTimeout,
		Logger:       logger,
	}
}

// Args builds the HLAE command line for opts.
func Args(opts Options) []string {
	custom := fmt.Sprintf(`-insecure +playdemo "%s"`, opts.DemoPath)
	if opts.ScriptPath != "" {
		custom = fmt.Sprintf(`-insecure +mirv_cmd load "%s" +playdemo "%s"`, opts.ScriptPath, opts.DemoPath)
	}
	if p := strings.TrimSpace(opts.LaunchParameters); p != "" {
		custom = p + " " + custom
	}

	return []string{
		"-csgoLauncher",
		"-noGui",
		"-autoStart",
		"-csgoExe", opts.GamePath,
		"-gfxEnabled", "true",
		"-gfxWidth", strconv.Itoa(opts.Width),
		"-gfxHeight", strconv.Itoa(opts.Height),
		"-gfxFull", strconv.FormatBool(opts.Fullscreen),
		"-customLaunchOptions", custom,
	}
}

// Launch runs HLAE and watches the game process until it exits.
func (h *HLAE) Launch(ctx context.Context, opts Options, cb Callbacks) error {
	job := process.Job{Path: opts.HLAEPath, Args: Args(opts), Dir: filepath.Dir(opts.HLAEPath)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fire(cb.HelperStarted)
		defer fire(cb.HelperClosed)
		// HLAE exits on its own once the game is injected.
		_, err := h.Runner.Run(gctx, job)
		return err
	})
	g.Go(func() error {
		return h.watchGame(gctx, cb)
	})
	return g.Wait()
}

func (h *HLAE) watchGame(ctx context.Context, cb Callbacks) error {
	ticker := time.NewTicker(h.PollInterval)
	defer ticker.Stop()

	deadline := time.Now().Add(h.StartTimeout)
	started, running := false, false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		alive := h.Exists(ctx, types.ProcessGame)
		switch {
		case !started && alive:
			started = true
			h.Logger.Info("game started", "process", types.ProcessGame)
			fire(cb.GameStarted)
		case !started && time.Now().After(deadline):
			return ErrGameNotStarted
		case started && alive && !running:
			running = true
			fire(cb.GameRunning)
		case started && !alive:
			h.Logger.Info("game closed", "process", types.ProcessGame)
			if !running {
				fire(cb.GameRunning)
			}
			fire(cb.GameClosed)
			return nil
		}
	}
}
