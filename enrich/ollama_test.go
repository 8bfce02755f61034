package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voxd/config"
)

func newTestOllama(t *testing.T, handler http.HandlerFunc, wordLimit int) (*Ollama, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := config.Default().Enrich
	cfg.BaseURL = server.URL
	return NewOllama(cfg, wordLimit), server
}

func decodeGenerate(t *testing.T, r *http.Request) generateRequest {
	t.Helper()
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	return req
}

func TestCleanup(t *testing.T) {
	o, _ := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		req := decodeGenerate(t, r)
		if req.Stream {
			t.Error("stream should be false")
		}
		if !strings.Contains(req.Prompt, "um hello world") {
			t.Errorf("prompt missing transcript: %q", req.Prompt)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "  Hello, world.  "})
	}, 3000)

	got, err := o.Cleanup(context.Background(), "um hello world")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello, world." {
		t.Errorf("got %q", got)
	}
}

func TestCleanupEmptyResponseIsError(t *testing.T) {
	o, _ := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"response": "   "})
	}, 3000)

	if _, err := o.Cleanup(context.Background(), "text"); err == nil {
		t.Fatal("expected error for empty cleanup")
	}
}

func TestCleanupUnreachable(t *testing.T) {
	cfg := config.Default().Enrich
	cfg.BaseURL = "http://127.0.0.1:1"
	o := NewOllama(cfg, 3000)

	if _, err := o.Cleanup(context.Background(), "text"); err == nil {
		t.Fatal("expected error for unreachable ollama")
	}
}

func TestAnswerAttachesImage(t *testing.T) {
	o, _ := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeGenerate(t, r)
		if len(req.Images) != 1 {
			t.Fatalf("got %d images, want 1", len(req.Images))
		}
		if !strings.Contains(req.Prompt, "what is on screen") {
			t.Errorf("prompt = %q", req.Prompt)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "a terminal"})
	}, 3000)

	got, err := o.Answer(context.Background(), "what is on screen", []byte{0x89, 'P', 'N', 'G'})
	if err != nil {
		t.Fatal(err)
	}
	if got != "a terminal" {
		t.Errorf("got %q", got)
	}
}

func TestAnswerWithoutImage(t *testing.T) {
	o, _ := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeGenerate(t, r)
		if len(req.Images) != 0 {
			t.Errorf("got %d images, want 0", len(req.Images))
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "no screenshot needed"})
	}, 3000)

	if _, err := o.Answer(context.Background(), "what day is it", nil); err != nil {
		t.Fatal(err)
	}
}

func TestSummarizeShortTranscript(t *testing.T) {
	var calls int
	o, _ := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]string{"response": "summary"})
	}, 3000)

	got, err := o.Summarize(context.Background(), "short meeting transcript")
	if err != nil {
		t.Fatal(err)
	}
	if got != "summary" || calls != 1 {
		t.Errorf("got %q after %d calls", got, calls)
	}
}

func TestSummarizeIncremental(t *testing.T) {
	var calls int
	o, _ := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		req := decodeGenerate(t, r)
		if strings.Contains(req.Prompt, "partial summaries") {
			json.NewEncoder(w).Encode(map[string]string{"response": "final summary"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "part"})
	}, 10)

	// 12 words with limit 10 forces block-wise summarization.
	transcript := strings.Repeat("word ", 12)
	got, err := o.Summarize(context.Background(), transcript)
	if err != nil {
		t.Fatal(err)
	}
	if got != "final summary" {
		t.Errorf("got %q", got)
	}
	// One block call (12 words fit one 2500-word block) plus the meta call.
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestSummarizeMetaFailureKeepsPartials(t *testing.T) {
	o, _ := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeGenerate(t, r)
		if strings.Contains(req.Prompt, "partial summaries") {
			http.Error(w, "model busy", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "part"})
	}, 10)

	got, err := o.Summarize(context.Background(), strings.Repeat("word ", 12))
	if err != nil {
		t.Fatal(err)
	}
	if got != "part" {
		t.Errorf("got %q, want the partial summary", got)
	}
}

func TestGenerateErrorField(t *testing.T) {
	o, _ := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "model not found"})
	}, 3000)

	if _, err := o.Cleanup(context.Background(), "text"); err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("err = %v", err)
	}
}
