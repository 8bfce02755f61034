//go:build !linux

package capture

import "errors"

func DetectSources() (Sources, error) {
	return Sources{}, errors.New("source detection is only supported on linux")
}
