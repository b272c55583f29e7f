// Package notify sends run completion notifications by webhook, email and log file.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/oszuidwest/zwfm-demorecorder/internal/config"
	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
	"github.com/oszuidwest/zwfm-demorecorder/internal/util"
)

// RunNotifier delivers a finished run to every configured channel.
type RunNotifier struct {
	cfg config.NotificationsConfig
}

// NewRunNotifier returns a RunNotifier for cfg.
func NewRunNotifier(cfg config.NotificationsConfig) *RunNotifier {
	return &RunNotifier{cfg: cfg}
}

// Enabled reports whether any channel is configured.
func (n *RunNotifier) Enabled() bool {
	return util.IsConfigured(n.cfg.WebhookURL) ||
		util.IsConfigured(n.cfg.LogPath) ||
		n.cfg.Email.IsConfigured()
}

// Notify sends res to all channels concurrently and waits for them.
// Failures are logged, never returned.
func (n *RunNotifier) Notify(ctx context.Context, res types.RunResult) {
	var wg sync.WaitGroup

	if util.IsConfigured(n.cfg.WebhookURL) {
		wg.Go(func() {
			util.LogNotifyResult(func() error { return SendRunWebhook(ctx, n.cfg.WebhookURL, res) }, "webhook")
		})
	}
	switch {
	case n.cfg.Email.IsConfigured():
		wg.Go(func() {
			util.LogNotifyResult(func() error { return SendRunEmail(&n.cfg.Email, res) }, "email")
		})
	case n.cfg.Email.IsPartial():
		slog.Warn("email notification skipped", "missing", n.cfg.Email.Missing())
	}
	if util.IsConfigured(n.cfg.LogPath) {
		wg.Go(func() {
			util.LogNotifyResult(func() error { return LogRun(n.cfg.LogPath, res) }, "log")
		})
	}

	wg.Wait()
}

// eventName maps an outcome to the event name used by every channel.
func eventName(res types.RunResult) string {
	return "render_" + res.Outcome()
}
