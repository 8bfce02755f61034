package enrich

import (
	"context"
	"sync"
)

// FakeEnricher returns canned responses for tests.
type FakeEnricher struct {
	CleanupText string
	CleanupErr  error
	AnswerText  string
	AnswerErr   error
	SummaryText string
	SummaryErr  error

	mu           sync.Mutex
	lastQuestion string
	lastImage    []byte
	summarized   string
}

func (f *FakeEnricher) Cleanup(_ context.Context, text string) (string, error) {
	if f.CleanupErr != nil {
		return "", f.CleanupErr
	}
	if f.CleanupText != "" {
		return f.CleanupText, nil
	}
	return text, nil
}

func (f *FakeEnricher) Answer(_ context.Context, question string, imagePNG []byte) (string, error) {
	f.mu.Lock()
	f.lastQuestion = question
	f.lastImage = imagePNG
	f.mu.Unlock()
	if f.AnswerErr != nil {
		return "", f.AnswerErr
	}
	return f.AnswerText, nil
}

func (f *FakeEnricher) Summarize(_ context.Context, transcript string) (string, error) {
	f.mu.Lock()
	f.summarized = transcript
	f.mu.Unlock()
	if f.SummaryErr != nil {
		return "", f.SummaryErr
	}
	return f.SummaryText, nil
}

func (f *FakeEnricher) LastQuestion() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQuestion
}

func (f *FakeEnricher) LastImage() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastImage
}

func (f *FakeEnricher) Summarized() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summarized
}
