//go:build windows

package launcher

import (
	"os/exec"
	"syscall"
)

func revealCommand(path string) *exec.Cmd {
	cmd := exec.Command("explorer.exe")
	// explorer parses /select, itself and rejects the quoting os/exec applies.
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: `explorer.exe /select,"` + path + `"`}
	return cmd
}
