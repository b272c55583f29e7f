package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
	"github.com/oszuidwest/zwfm-demorecorder/internal/util"
)

// WebhookTimeout bounds a single webhook request.
const WebhookTimeout = 10 * time.Second

// SendRunWebhook posts the run result as JSON to webhookURL.
func SendRunWebhook(ctx context.Context, webhookURL string, res types.RunResult) error {
	payload := map[string]any{
		"event":        eventName(res),
		"run_id":       res.RunID,
		"name":         res.Name,
		"encoder":      res.Encoder,
		"output_file":  res.OutputFile,
		"exit_code":    res.ExitCode,
		"frames":       res.Frames,
		"duration_sec": res.Elapsed().Seconds(),
		"timestamp":    util.RFC3339Now(),
	}
	if res.Error != "" {
		payload["error"] = res.Error
	}
	return sendWebhook(ctx, webhookURL, payload)
}

// SendTestWebhook sends a test POST request to verify webhook configuration.
func SendTestWebhook(ctx context.Context, webhookURL string) error {
	if webhookURL == "" {
		return fmt.Errorf("webhook URL not configured")
	}

	return sendWebhook(ctx, webhookURL, map[string]any{
		"event":     "test",
		"message":   "This is a test notification from the demo recorder",
		"timestamp": util.RFC3339Now(),
	})
}

// sendWebhook sends a POST request with JSON payload to the webhook URL.
func sendWebhook(ctx context.Context, webhookURL string, payload map[string]any) error {
	if !util.IsConfigured(webhookURL) {
		return nil
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return util.WrapError("marshal payload", err)
	}

	ctx, cancel := context.WithTimeout(ctx, WebhookTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return util.WrapError("create webhook request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return util.WrapError("send webhook request", err)
	}
	defer util.SafeCloseFunc(resp.Body, "webhook response body")()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
