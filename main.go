// Package main records a CS:GO demo segment to video: it plays the demo through
// HLAE to capture raw frames and audio, then encodes them with FFmpeg or VirtualDub.
//
// Usage:
//
//	demorecorder [-config run.json] [-env .env] [-listen 127.0.0.1:8090]
//
// If -config is not specified, the recorder looks for run.json in the same
// directory as the binary.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/oszuidwest/zwfm-demorecorder/internal/config"
	"github.com/oszuidwest/zwfm-demorecorder/internal/ffmpeg"
	"github.com/oszuidwest/zwfm-demorecorder/internal/launcher"
	"github.com/oszuidwest/zwfm-demorecorder/internal/metrics"
	"github.com/oszuidwest/zwfm-demorecorder/internal/notify"
	"github.com/oszuidwest/zwfm-demorecorder/internal/orchestrator"
	"github.com/oszuidwest/zwfm-demorecorder/internal/process"
	"github.com/oszuidwest/zwfm-demorecorder/internal/server"
	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
	"github.com/oszuidwest/zwfm-demorecorder/internal/util"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to run config, JSON or YAML (default: run.json next to binary)")
	envFile := flag.String("env", ".env", "Optional .env file with DEMOREC_* overrides")
	listen := flag.String("listen", "", "Serve /events, /status and /metrics on this address")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "text", "Log format: text or json")
	testNotify := flag.Bool("test-notifications", false, "Send test notifications and exit")
	showVersion := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	logger := util.NewLogger(os.Stderr, *logLevel, *logFormat)
	slog.SetDefault(logger)

	if *showVersion {
		slog.Info("version info", "version", Version, "commit", Commit, "build_time", BuildTime)
		return
	}

	if err := config.LoadEnv(*envFile); err != nil {
		slog.Warn("failed to load env file", "path", *envFile, "error", err)
	}

	if *configPath == "" {
		execPath, err := os.Executable()
		if err != nil {
			slog.Error("failed to get executable path", "error", err)
			os.Exit(1)
		}
		*configPath = filepath.Join(filepath.Dir(execPath), "run.json")
	}
	slog.Info("using config file", "path", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg.ApplyEnv()
	if *listen != "" {
		cfg.Listen = *listen
	}
	if err := preflight(cfg); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	notifier := notify.NewRunNotifier(cfg.Notifications)
	if *testNotify {
		sendTestNotifications(cfg)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), util.ShutdownSignals()...)
	defer stop()

	if cfg.GenerateVideo && !cfg.UseVirtualDub {
		checkFFmpeg(ctx, cfg.FFmpeg.ExePath)
	}

	met := metrics.New()
	runner := process.NewExecRunner(logger)
	deps := orchestrator.Deps{
		Launcher: launcher.NewHLAE(runner, logger),
		Runner:   runner,
		Killer:   process.SystemKiller{},
		Revealer: launcher.Explorer{},
		Observer: met,
		Logger:   logger,
	}
	if notifier.Enabled() {
		deps.Notifier = notifier
	}
	orch := orchestrator.New(cfg, deps)

	hub := server.NewHub(met.IncEventsDropped)
	go hub.Forward(orch.Events())

	var httpServer *http.Server
	if cfg.Listen != "" {
		versions := NewVersionChecker(ctx)
		status := func() any {
			return map[string]any{
				"run_id":  orch.RunID(),
				"state":   orch.State(),
				"config":  cfg.String(),
				"version": versions.GetInfo(),
			}
		}
		httpServer = server.New(hub, met.Handler(), status, logger).Start(cfg.Listen)
	}

	res, runErr := runUntilDone(ctx, orch)

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
		cancel()
	}

	if runErr != nil {
		os.Exit(1)
	}
	slog.Info("done", "outcome", res.Outcome(), "output", res.OutputFile, "exit_code", res.ExitCode)
}

// runCanceler is the part of the orchestrator main drives.
type runCanceler interface {
	Run(ctx context.Context) (types.RunResult, error)
	Cancel()
}

// runUntilDone runs r to completion. Cancelling ctx kills the external
// processes through Cancel; the run itself is not cancelled and continues
// with whatever exit status the killed processes report.
func runUntilDone(ctx context.Context, r runCanceler) (types.RunResult, error) {
	runDone := make(chan struct{})
	defer close(runDone)

	go func() {
		select {
		case <-ctx.Done():
			slog.Info("shutdown signal received, killing external processes")
			r.Cancel()
		case <-runDone:
		}
	}()

	return r.Run(context.WithoutCancel(ctx))
}

// preflight validates the config and the inputs a run reads from disk.
func preflight(cfg *config.Run) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.GenerateRawFiles {
		if verr := util.ValidateFile("game.demo_path", cfg.Game.DemoPath); verr != nil {
			return verr
		}
	}
	return nil
}

// checkFFmpeg warns when the configured FFmpeg is missing or too old.
func checkFFmpeg(ctx context.Context, exe string) {
	version, err := ffmpeg.CheckVersion(ctx, exe, ffmpeg.MinimumVersion)
	if err != nil {
		slog.Warn("FFmpeg version check failed", "path", exe, "error", err)
		return
	}
	slog.Info("using FFmpeg", "path", exe, "version", version)
}

func sendTestNotifications(cfg *config.Run) {
	ctx, cancel := context.WithTimeout(context.Background(), notify.WebhookTimeout)
	defer cancel()

	if cfg.HasWebhook() {
		util.LogNotifyResult(func() error { return notify.SendTestWebhook(ctx, cfg.Notifications.WebhookURL) }, "test webhook")
	}
	if cfg.HasEmail() || cfg.Notifications.Email.IsPartial() {
		util.LogNotifyResult(func() error { return notify.SendTestEmail(&cfg.Notifications.Email) }, "test email")
	}
	if cfg.HasLogPath() {
		util.LogNotifyResult(func() error { return notify.WriteTestLog(cfg.Notifications.LogPath) }, "test log")
	}
}
