//go:build linux || darwin

package video

import (
	"os/exec"
	"syscall"
	"testing"
)

func TestDetach(t *testing.T) {
	cmd := exec.Command(FFmpeg)
	detach(cmd)
	if cmd.SysProcAttr == nil || !cmd.SysProcAttr.Setpgid {
		t.Fatal("ffmpeg would share our process group")
	}

	cmd = exec.Command(FFmpeg)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: false, Noctty: true}
	detach(cmd)
	if !cmd.SysProcAttr.Setpgid || !cmd.SysProcAttr.Noctty {
		t.Error("existing attributes were replaced")
	}
}

func TestDetachStartsNewProcessGroup(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not installed")
	}
	cmd := exec.Command("sleep", "30")
	detach(cmd)
	if err := cmd.Start(); err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		t.Fatal(err)
	}
	if pgid == syscall.Getpgrp() {
		t.Errorf("child is in our process group %d", pgid)
	}
}
