package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"voxd/audio"
)

// FakeRecorder writes canned WAV data at Start and reports it at Stop,
// standing in for the subprocess manager in tests.
type FakeRecorder struct {
	// TrackSamples holds the audio each named track "records".
	TrackSamples map[string][]int16
	// StartErr injects a per-track start failure.
	StartErr map[string]error
	// AllFail makes Start itself fail.
	AllFail error

	mu        sync.Mutex
	started   int
	LastSpecs []TrackSpec
}

func (f *FakeRecorder) Start(_ context.Context, specs []TrackSpec) (Capture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AllFail != nil {
		return nil, f.AllFail
	}
	f.started++
	f.LastSpecs = specs

	fc := &fakeCapture{}
	for _, spec := range specs {
		res := TrackResult{Name: spec.Name, Path: spec.Path}
		if err := f.StartErr[spec.Name]; err != nil {
			res.Err = err
			fc.results = append(fc.results, res)
			continue
		}
		samples := f.TrackSamples[spec.Name]
		// Flush to disk immediately: raw audio survives cancellation,
		// like a real recorder writing as it goes.
		if err := audio.WriteFile(spec.Path, samples); err != nil {
			res.Err = err
		} else {
			res.Size = int64(audio.HeaderSize + len(samples)*2)
			if res.Size < MinTrackBytes {
				res.Err = fmt.Errorf("track %s produced no audio (%d bytes)", spec.Name, res.Size)
			}
		}
		fc.results = append(fc.results, res)
	}
	return fc, nil
}

// Starts reports how many captures were started.
func (f *FakeRecorder) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

type fakeCapture struct {
	mu      sync.Mutex
	stopped bool
	results []TrackResult
}

func (c *fakeCapture) Stop(_ time.Duration) []TrackResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	return c.results
}
