//go:build windows

package process

import (
	"context"
	"os/exec"
	"strings"
)

func killCommand(ctx context.Context, name string) *exec.Cmd {
	return exec.CommandContext(ctx, "taskkill", "/F", "/T", "/IM", name)
}

func processExists(ctx context.Context, name string) bool {
	out, err := exec.CommandContext(ctx, "tasklist", "/FI", "IMAGENAME eq "+name, "/NH").Output()
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(out)), strings.ToLower(name))
}
