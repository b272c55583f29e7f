//go:build !windows

package process

import (
	"context"
	"os/exec"
	"strings"
)

// imageName drops the Windows extension so names match the process table
// (for example when the game runs under Wine).
func imageName(name string) string {
	return strings.TrimSuffix(name, ".exe")
}

func killCommand(ctx context.Context, name string) *exec.Cmd {
	return exec.CommandContext(ctx, "pkill", "-KILL", "-x", imageName(name))
}

func processExists(ctx context.Context, name string) bool {
	return exec.CommandContext(ctx, "pgrep", "-x", imageName(name)).Run() == nil
}
