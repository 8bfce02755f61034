package main

import (
	"os"
	"path/filepath"
	"runtime/debug"
)

// initCrashLog routes fatal runtime output to a file next to the other
// logs, so panics in the detached daemon are not lost.
func initCrashLog() {
	dir, err := os.UserHomeDir()
	if err != nil {
		return
	}
	path := filepath.Join(dir, ".config", "voxd", "crash_log.txt")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	debug.SetCrashOutput(f, debug.CrashOptions{})
}
