// Package log writes daemon diagnostics to a file via zerolog, plus a
// plain tab-separated transcript log. The daemon runs detached, so
// everything goes to files, never to the terminal.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog        zerolog.Logger
	diagFile       *os.File
	transcribeFile *os.File
	logMu          sync.Mutex
	logReady       bool
	pid            int
	dir            string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absolute(flagPath)
	}

	// Priority 2: VOXD_LOG_PATH environment variable
	if envPath := os.Getenv("VOXD_LOG_PATH"); envPath != "" {
		return absolute(envPath)
	}

	// Priority 3: $XDG_CONFIG_HOME/voxd/logs
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return filepath.Join(xdgConfig, "voxd", "logs"), nil
}

func absolute(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	transcribePath := filepath.Join(dir, "transcribe_log.txt")
	transcribeFile, err = os.OpenFile(transcribePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if transcribeFile != nil {
		transcribeFile.Close()
		transcribeFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if logReady {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// SessionStart records a session entering Recording.
func SessionStart(id, mode string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("session", id).
		Str("mode", mode).
		Msg("session_start")
}

// SessionEnd records a session reaching a terminal state.
func SessionEnd(id, mode, state string, elapsed time.Duration, err error) {
	if !logReady {
		return
	}
	ev := diagLog.Info().
		Str("session", id).
		Str("mode", mode).
		Str("state", state).
		Float64("elapsed_s", elapsed.Seconds())
	if err != nil {
		ev = ev.Str("error", err.Error())
	}
	ev.Msg("session_end")
}

// Stage records the duration of one pipeline stage.
func Stage(id, stage string, d time.Duration) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("session", id).
		Str("stage", stage).
		Float64("ms", float64(d.Milliseconds())).
		Msg("pipeline_stage")
}

// Track records a finished capture track.
func Track(id, name, path string, size int64, err error) {
	if !logReady {
		return
	}
	ev := diagLog.Info().
		Str("session", id).
		Str("track", name).
		Str("path", path).
		Int64("bytes", size)
	if err != nil {
		ev = ev.Str("error", err.Error())
	}
	ev.Msg("capture_track")
}

// Engine records one speech-engine request.
func Engine(provider string, audioS, dnsMs, tlsMs, ttfbMs, totalMs float64, connReused bool) {
	if !logReady {
		return
	}
	connStatus := "new"
	if connReused {
		connStatus = "reused"
	}
	diagLog.Info().
		Str("provider", provider).
		Str("conn", connStatus).
		Float64("audio_s", audioS).
		Float64("dns_ms", dnsMs).
		Float64("tls_ms", tlsMs).
		Float64("ttfb_ms", ttfbMs).
		Float64("total_ms", totalMs).
		Msg("transcription")
}

// TranscriptionText appends delivered text to the transcript log.
func TranscriptionText(text string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, text)
	transcribeFile.WriteString(line)
}
