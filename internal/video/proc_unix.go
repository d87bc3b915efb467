//go:build unix

package video

import (
	"os/exec"
	"syscall"
)

// detach moves ffmpeg into its own process group so a terminal Ctrl-C
// reaches only us. The command context still stops it.
func detach(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}
