package util

import "log/slog"

// LogNotifyResult runs a notification sender and logs the outcome.
// Errors are logged internally, so no error is returned.
func LogNotifyResult(fn func() error, notifyType string) {
	if err := fn(); err != nil {
		slog.Warn("notification failed", "type", notifyType, "error", err)
		return
	}
	slog.Debug("notification sent", "type", notifyType)
}
