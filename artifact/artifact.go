// Package artifact manages the on-disk output of a meeting session.
// Files are written into a staging directory carrying a .partial suffix
// and the directory is renamed to its final name only once the session
// completes, so readers never see half-written output.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voxd/transcriber"
)

const (
	MicFile        = "mic.wav"
	SystemFile     = "system.wav"
	MixedFile      = "mixed.wav"
	TranscriptFile = "transcript.md"
	SummaryFile    = "summary.md"

	stagingSuffix = ".partial"
	dirTimeFormat = "2006-01-02_15-04"
)

type Store struct {
	base string
}

func NewStore(base string) *Store {
	return &Store{base: base}
}

// NewSessionDir creates a staging directory for a session starting at
// the given time. A numeric suffix resolves collisions when two
// sessions start within the same minute.
func (s *Store) NewSessionDir(start time.Time) (*SessionDir, error) {
	if err := os.MkdirAll(s.base, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	name := start.Format(dirTimeFormat)
	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", name, i+1)
		}
		staging := filepath.Join(s.base, candidate+stagingSuffix)
		final := filepath.Join(s.base, candidate)
		if _, err := os.Stat(final); err == nil {
			continue
		}
		err := os.Mkdir(staging, 0755)
		if err == nil {
			return &SessionDir{staging: staging, final: final}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}
}

type SessionDir struct {
	staging string
	final   string
}

// Path is the current directory path. It points at the staging
// directory until Finalize runs.
func (d *SessionDir) Path() string { return d.staging }

// File returns the path for a named artifact inside the session dir.
func (d *SessionDir) File(name string) string {
	return filepath.Join(d.staging, name)
}

// WriteTranscript renders timestamped segments as markdown.
func (d *SessionDir) WriteTranscript(start time.Time, duration time.Duration, segs []transcriber.Segment) error {
	var b strings.Builder
	b.WriteString("# Meeting transcript\n\n")
	fmt.Fprintf(&b, "- Date: %s\n", start.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "- Duration: %s\n\n", formatDuration(duration))
	for _, s := range segs {
		fmt.Fprintf(&b, "[%s] %s\n", formatOffset(s.Start), strings.TrimSpace(s.Text))
	}
	return os.WriteFile(d.File(TranscriptFile), []byte(b.String()), 0644)
}

// WriteSummary stores the meeting summary as markdown.
func (d *SessionDir) WriteSummary(start time.Time, text string) error {
	var b strings.Builder
	b.WriteString("# Meeting summary\n\n")
	fmt.Fprintf(&b, "- Date: %s\n\n", start.Format("2006-01-02 15:04"))
	b.WriteString(strings.TrimSpace(text))
	b.WriteString("\n")
	return os.WriteFile(d.File(SummaryFile), []byte(b.String()), 0644)
}

// Finalize renames the staging directory to its final name and returns
// the final path. Calling it again is a no-op.
func (d *SessionDir) Finalize() (string, error) {
	if d.staging == d.final {
		return d.final, nil
	}
	if err := os.Rename(d.staging, d.final); err != nil {
		return "", fmt.Errorf("finalize session dir: %w", err)
	}
	d.staging = d.final
	return d.final, nil
}

// Discard removes the staging directory and everything in it. After
// Finalize it does nothing.
func (d *SessionDir) Discard() error {
	if d.staging == d.final {
		return nil
	}
	return os.RemoveAll(d.staging)
}

// formatOffset renders seconds from recording start as H:MM:SS or MM:SS.
func formatOffset(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func formatDuration(d time.Duration) string {
	return formatOffset(d.Seconds())
}
