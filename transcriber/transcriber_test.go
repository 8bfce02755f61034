package transcriber

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"voxd/audio"
	"voxd/config"
)

func TestFirstNonEmpty(t *testing.T) {
	h := http.Header{}
	h.Set("X-Rate-Limit", "100")

	if got := firstNonEmpty(h, "X-Missing", "X-Rate-Limit"); got != "100" {
		t.Errorf("got %q, want %q", got, "100")
	}
	if got := firstNonEmpty(h, "X-A", "X-B"); got != "?" {
		t.Errorf("got %q, want %q", got, "?")
	}
}

func TestPayloadFormats(t *testing.T) {
	samples := make([]int16, audio.SampleRate) // 1s of silence

	b := &baseTranscriber{format: "wav"}
	data, ext, err := b.payload(samples)
	if err != nil {
		t.Fatal(err)
	}
	if ext != "wav" || string(data[:4]) != "RIFF" {
		t.Errorf("wav payload: ext=%q header=%q", ext, data[:4])
	}

	b = &baseTranscriber{format: "flac"}
	data, ext, err = b.payload(samples)
	if err != nil {
		t.Fatal(err)
	}
	if ext != "flac" || string(data[:4]) != "fLaC" {
		t.Errorf("flac payload: ext=%q header=%q", ext, data[:4])
	}
}

func TestGroqTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("multipart parse: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-large-v3-turbo" {
			t.Errorf("model = %q", got)
		}
		if got := r.FormValue("response_format"); got != "verbose_json" {
			t.Errorf("response_format = %q", got)
		}
		w.Write([]byte(`{"text":"hello world","duration":2.5,"segments":[
			{"text":"hello","start":0,"end":1.2},
			{"text":"world","start":1.2,"end":2.5}]}`))
	}))
	defer server.Close()

	g := NewGroq("test-key", config.TranscriberConfig{Format: "wav"})
	g.apiURL = server.URL
	g.client = NewTracedClient(server.URL)

	segs, err := g.Transcribe(context.Background(), make([]int16, audio.SampleRate))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[1].Text != "world" || segs[1].Start != 1.2 || segs[1].End != 2.5 {
		t.Errorf("segment = %+v", segs[1])
	}
}

func TestGroqAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-ratelimit-remaining-requests", "0")
		w.Header().Set("x-ratelimit-limit-requests", "20")
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	g := NewGroq("test-key", config.TranscriberConfig{Format: "wav"})
	g.apiURL = server.URL
	g.client = NewTracedClient(server.URL)

	_, err := g.Transcribe(context.Background(), make([]int16, 100))
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "requests 0/20") {
		t.Errorf("error should carry the rate-limit quota: %v", err)
	}
}

func TestOpenAITranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"just a sentence"}`))
	}))
	defer server.Close()

	o := NewOpenAI("test-key", config.TranscriberConfig{Format: "wav"})
	o.apiURL = server.URL
	o.client = NewTracedClient(server.URL)

	segs, err := o.Transcribe(context.Background(), make([]int16, 2*audio.SampleRate))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if segs[0].Text != "just a sentence" {
		t.Errorf("text = %q", segs[0].Text)
	}
	if segs[0].End != 2.0 {
		t.Errorf("end = %v, want recording length", segs[0].End)
	}
}

func TestChunkedOffsets(t *testing.T) {
	fake := NewFake([]Segment{{Start: 0.5, End: 1.0, Text: "chunk"}}, nil)
	c := NewChunked(fake, 5)

	// 12s of audio splits into three chunks roughly 5s apart.
	segs, err := c.Transcribe(context.Background(), make([]int16, 12*audio.SampleRate))
	if err != nil {
		t.Fatal(err)
	}
	if fake.Calls() != 3 {
		t.Fatalf("inner called %d times, want 3", fake.Calls())
	}
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	if segs[0].Start != 0.5 {
		t.Errorf("first segment start = %v", segs[0].Start)
	}
	for i := 1; i < len(segs); i++ {
		if segs[i].Start <= segs[i-1].Start {
			t.Errorf("segment %d start %v not after previous %v", i, segs[i].Start, segs[i-1].Start)
		}
	}
}

func TestChunkedPropagatesError(t *testing.T) {
	fake := NewFake(nil, errors.New("engine down"))
	c := NewChunked(fake, 5)

	if _, err := c.Transcribe(context.Background(), make([]int16, 6*audio.SampleRate)); err == nil {
		t.Fatal("expected inner error to propagate")
	}
}

func TestFakeHonorsCancellation(t *testing.T) {
	fake := NewFake([]Segment{{Text: "late"}}, nil)
	fake.Delay = 5 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := fake.Transcribe(ctx, nil)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("fake did not return after cancellation")
	}
}

func TestNewProviderSelection(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := New(config.TranscriberConfig{}); err == nil {
		t.Error("expected error with no keys and no provider")
	}
	if _, err := New(config.TranscriberConfig{Provider: "groq"}); err == nil {
		t.Error("expected error for groq without key")
	}

	tr, err := New(config.TranscriberConfig{Provider: "fake"})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Name() != "fake" {
		t.Errorf("name = %q", tr.Name())
	}

	t.Setenv("GROQ_API_KEY", "k")
	tr, err = New(config.TranscriberConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Name() != "groq" {
		t.Errorf("auto-selected %q, want groq", tr.Name())
	}

	if _, err := New(config.TranscriberConfig{Provider: "whisperx"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestText(t *testing.T) {
	got := Text([]Segment{{Text: "hello"}, {Text: "world"}})
	if got != "hello world" {
		t.Errorf("Text = %q", got)
	}
	if Text(nil) != "" {
		t.Error("Text(nil) should be empty")
	}
}
