package transcriber

import (
	"context"
	"sync"
	"time"
)

// FakeTranscriber returns canned segments without touching the network.
type FakeTranscriber struct {
	segments []Segment
	err      error

	// Delay simulates a slow engine. The fake honors context
	// cancellation while waiting, so tests can exercise aborts.
	Delay time.Duration

	mu    sync.Mutex
	lang  string
	calls int
}

func NewFake(segments []Segment, err error) *FakeTranscriber {
	return &FakeTranscriber{segments: segments, err: err}
}

func (f *FakeTranscriber) Name() string { return "fake" }

func (f *FakeTranscriber) SetLanguage(lang string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lang = lang
}

func (f *FakeTranscriber) GetLanguage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lang
}

func (f *FakeTranscriber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FakeTranscriber) Transcribe(ctx context.Context, _ []int16) ([]Segment, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.segments, nil
}
