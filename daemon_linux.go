//go:build linux

package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// daemonize re-execs the daemon detached from the terminal, dropping
// the -background flag so the child runs in the foreground of its own
// session.
func daemonize() error {
	args := []string{"serve"}
	for _, a := range os.Args[1:] {
		if a == "-background" || a == "--background" || a == "serve" {
			continue
		}
		args = append(args, a)
	}

	self, err := os.Executable()
	if err != nil {
		return err
	}
	cmd := exec.Command(self, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	fmt.Println("voxd daemon started, pid", cmd.Process.Pid)
	return cmd.Process.Release()
}
