//go:build linux

package capture

import (
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
)

// DetectSources enumerates PulseAudio/PipeWire sources and picks a
// microphone and a monitor. USB devices (headsets) win over HDMI and
// built-in sources, matching what a user plugged in on purpose.
func DetectSources() (Sources, error) {
	client, err := pulse.NewClient()
	if err != nil {
		return Sources{}, fmt.Errorf("pulse: %w", err)
	}
	defer client.Close()

	sources, err := client.ListSources()
	if err != nil {
		return Sources{}, fmt.Errorf("pulse list sources: %w", err)
	}

	var mics, monitors []string
	for _, s := range sources {
		name := s.Name()
		if strings.HasSuffix(name, ".monitor") {
			monitors = append(monitors, name)
		} else if strings.Contains(name, "input") {
			mics = append(mics, name)
		}
	}

	return Sources{
		Mic:     pickPreferred(mics),
		Monitor: pickPreferred(monitors),
	}, nil
}

func pickPreferred(names []string) string {
	for _, n := range names {
		if isUSB(n) {
			return n
		}
	}
	if len(names) > 0 {
		return names[0]
	}
	return ""
}

func isUSB(name string) bool {
	return strings.Contains(name, ".usb-") || strings.Contains(name, ".usb_")
}
