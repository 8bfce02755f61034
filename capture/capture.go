// Package capture runs one external recording subprocess per track
// (pw-record for microphones, parecord for monitor sources) and owns
// their lifecycle: concurrent start, independent failure, and a
// two-phase stop (graceful signal, bounded wait, forced kill).
package capture

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"
)

// MinTrackBytes is the smallest file considered a real recording;
// anything below is a header-only or truncated WAV.
const MinTrackBytes = 1000

// killWait bounds the wait after a forced kill.
const killWait = 3 * time.Second

const (
	TrackMic    = "mic"
	TrackSystem = "system"
)

// DefaultTool picks the capture binary for this machine: pw-record on
// PipeWire systems, parecord otherwise.
func DefaultTool() string {
	if _, err := exec.LookPath("pw-record"); err == nil {
		return "pw-record"
	}
	return "parecord"
}

// MonitorTool picks the binary for monitor-source capture. parecord
// handles monitor devices more reliably than pw-record's target
// matching, so it wins when present.
func MonitorTool() string {
	if _, err := exec.LookPath("parecord"); err == nil {
		return "parecord"
	}
	return DefaultTool()
}

type TrackSpec struct {
	Name string
	// Tool is the capture binary: "pw-record" or "parecord".
	Tool string
	// Device is the source name, "auto" to detect, "" for the default.
	Device string
	// Path is the WAV file the subprocess writes.
	Path string
}

type TrackResult struct {
	Name string
	Path string
	Size int64
	Err  error
}

// Ok reports whether the track produced usable audio.
func (r TrackResult) Ok() bool {
	return r.Err == nil
}

// Capture is the set of running tracks for one session.
type Capture interface {
	// Stop runs the two-phase stop protocol on every still-running
	// track and reports per-track outcomes. Safe to call once.
	Stop(grace time.Duration) []TrackResult
}

// Recorder starts captures. The session controller depends on this
// interface; tests substitute a fake.
type Recorder interface {
	Start(ctx context.Context, specs []TrackSpec) (Capture, error)
}

// Manager is the real subprocess-backed Recorder.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

type track struct {
	spec     TrackSpec
	cmd      *exec.Cmd
	done     chan struct{}
	startErr error
}

type procCapture struct {
	tracks []*track
	once   sync.Once
	result []TrackResult
}

// Start launches every track's subprocess. Per-track start failures are
// recorded, not fatal: a surviving sibling keeps recording and the
// failure surfaces in that track's Stop result. Only when no track
// starts at all does Start fail.
func (m *Manager) Start(ctx context.Context, specs []TrackSpec) (Capture, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no tracks to capture")
	}

	started := 0
	tracks := make([]*track, 0, len(specs))
	for _, spec := range specs {
		tr := &track{spec: spec, done: make(chan struct{})}
		tracks = append(tracks, tr)

		device, err := resolveDevice(spec)
		if err != nil {
			tr.startErr = err
			close(tr.done)
			continue
		}

		cmd := exec.Command(spec.Tool, toolArgs(spec.Tool, device, spec.Path)...)
		cmd.Stdin = nil
		if err := cmd.Start(); err != nil {
			tr.startErr = fmt.Errorf("starting %s for track %s: %w", spec.Tool, spec.Name, err)
			close(tr.done)
			continue
		}
		tr.cmd = cmd
		started++
		go func(tr *track) {
			tr.cmd.Wait()
			close(tr.done)
		}(tr)
	}

	if started == 0 {
		// Every subprocess refused to start; report the first cause.
		for _, tr := range tracks {
			if tr.startErr != nil {
				return nil, tr.startErr
			}
		}
		return nil, fmt.Errorf("no capture track started")
	}
	return &procCapture{tracks: tracks}, nil
}

func resolveDevice(spec TrackSpec) (string, error) {
	if spec.Device != "auto" {
		return spec.Device, nil
	}
	sources, err := DetectSources()
	if err != nil {
		return "", fmt.Errorf("detecting sources for track %s: %w", spec.Name, err)
	}
	var device string
	if spec.Name == TrackSystem {
		device = sources.Monitor
	} else {
		device = sources.Mic
	}
	if device == "" {
		return "", fmt.Errorf("no source detected for track %s", spec.Name)
	}
	return device, nil
}

func toolArgs(tool, device, path string) []string {
	switch tool {
	case "parecord":
		args := []string{"--file-format=wav"}
		if device != "" {
			args = append(args, "--device", device)
		}
		return append(args, path)
	default: // pw-record
		var args []string
		if device != "" {
			args = append(args, "--target", device)
		}
		return append(args, path)
	}
}

// Stop signals each running subprocess to finish (SIGINT lets the
// recorders close the WAV header), waits up to grace, then kills
// whatever is still alive. Tracks are stopped concurrently so one
// stuck recorder does not extend the wait for the others.
func (c *procCapture) Stop(grace time.Duration) []TrackResult {
	c.once.Do(func() {
		var wg sync.WaitGroup
		for _, tr := range c.tracks {
			if tr.cmd == nil {
				continue
			}
			wg.Add(1)
			go func(tr *track) {
				defer wg.Done()
				stopTrack(tr, grace)
			}(tr)
		}
		wg.Wait()

		c.result = make([]TrackResult, 0, len(c.tracks))
		for _, tr := range c.tracks {
			c.result = append(c.result, tr.result())
		}
	})
	return c.result
}

func stopTrack(tr *track, grace time.Duration) {
	tr.cmd.Process.Signal(os.Interrupt)
	select {
	case <-tr.done:
		return
	case <-time.After(grace):
	}

	tr.cmd.Process.Kill()
	select {
	case <-tr.done:
	case <-time.After(killWait):
	}
}

func (tr *track) result() TrackResult {
	res := TrackResult{Name: tr.spec.Name, Path: tr.spec.Path}
	if tr.startErr != nil {
		res.Err = tr.startErr
		return res
	}
	info, err := os.Stat(tr.spec.Path)
	if err != nil {
		res.Err = fmt.Errorf("track %s produced no file: %w", tr.spec.Name, err)
		return res
	}
	res.Size = info.Size()
	if res.Size < MinTrackBytes {
		res.Err = fmt.Errorf("track %s produced no audio (%d bytes)", tr.spec.Name, res.Size)
	}
	return res
}
