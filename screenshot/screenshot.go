// Package screenshot grabs the current screen as PNG by shelling out
// to whatever capture tool the desktop provides.
package screenshot

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Grabber captures the full screen.
type Grabber interface {
	Capture(ctx context.Context) ([]byte, error)
}

// tools lists known screenshot commands in preference order. Each
// writes a PNG to the path appended as the final argument.
var tools = [][]string{
	{"grim"},
	{"gnome-screenshot", "-f"},
}

type Tool struct{}

func NewTool() *Tool { return &Tool{} }

func (t *Tool) Capture(ctx context.Context) ([]byte, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("voxd-screen-%d.png", os.Getpid()))
	defer os.Remove(path)

	var lastErr error
	for _, tool := range tools {
		if _, err := exec.LookPath(tool[0]); err != nil {
			lastErr = err
			continue
		}
		args := append(tool[1:], path)
		cmd := exec.CommandContext(ctx, tool[0], args...)
		if out, err := cmd.CombinedOutput(); err != nil {
			lastErr = fmt.Errorf("%s: %w: %s", tool[0], err, out)
			continue
		}
		return os.ReadFile(path)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no screenshot tool found")
	}
	return nil, fmt.Errorf("screen capture failed: %w", lastErr)
}

// Fake returns a fixed image, or an error, without touching the screen.
type Fake struct {
	PNG []byte
	Err error
}

func (f *Fake) Capture(context.Context) ([]byte, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.PNG, nil
}
