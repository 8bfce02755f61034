// Package session owns the daemon's single-session state machine: at
// most one recording or processing session exists at a time, and every
// session runs one of three pipelines (dictation, screenshot question,
// meeting) from capture to delivered output.
package session

import (
	"errors"
	"fmt"
	"time"
)

type Mode string

const (
	ModeDictate    Mode = "dictate"
	ModeScreenshot Mode = "screenshot"
	ModeMeeting    Mode = "meeting"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDictate, ModeScreenshot, ModeMeeting:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

type State string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StateProcessing State = "processing"
	StateDone       State = "done"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

// Terminal reports whether a session in this state has finished.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateCancelled
}

var (
	// ErrBusy rejects a toggle while another session holds the slot.
	ErrBusy = errors.New("another session is active")
	// ErrDeviceUnavailable means no capture track could be started.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	// ErrEngineUnreachable wraps transcription engine failures.
	ErrEngineUnreachable = errors.New("transcription engine unreachable")
	// ErrInjectionFailed means the text was transcribed but could not
	// be pasted; it remains on the clipboard.
	ErrInjectionFailed = errors.New("paste injection failed")
)

// Status is a point-in-time snapshot of the controller.
type Status struct {
	State   State
	Mode    Mode
	ID      string
	Elapsed time.Duration
	// Detail carries the outcome of the last finished session while
	// the controller is idle: delivered text length, output dir, or
	// the failure reason.
	Detail string
}

func (s Status) String() string {
	switch s.State {
	case StateIdle:
		if s.Detail != "" {
			return fmt.Sprintf("idle (last: %s)", s.Detail)
		}
		return "idle"
	case StateRecording, StateProcessing:
		return fmt.Sprintf("%s %s %s", s.State, s.Mode, s.Elapsed.Round(time.Second))
	}
	return string(s.State)
}
