package transcriber

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"voxd/audio"
	"voxd/config"
	"voxd/encoder"
)

// Segment is a timestamped slice of recognized speech. Start and End
// are seconds from the beginning of the recording.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Text joins segment texts into a single transcript string.
func Text(segs []Segment) string {
	var out string
	for i, s := range segs {
		if i > 0 {
			out += " "
		}
		out += s.Text
	}
	return out
}

type Transcriber interface {
	Name() string
	SetLanguage(lang string)
	GetLanguage() string
	// Transcribe sends 16kHz mono samples to the engine and returns
	// timestamped segments ordered by start time.
	Transcribe(ctx context.Context, samples []int16) ([]Segment, error)
}

type baseTranscriber struct {
	client *TracedClient
	apiURL string
	lang   string
	format string
}

func (b *baseTranscriber) SetLanguage(lang string) { b.lang = lang }

func (b *baseTranscriber) GetLanguage() string { return b.lang }

// payload encodes samples in the configured upload format. FLAC cuts
// upload size roughly in half; WAV is kept as an escape hatch for
// engines that reject compressed input.
func (b *baseTranscriber) payload(samples []int16) ([]byte, string, error) {
	if b.format == "wav" {
		return audio.EncodeWAV(samples), "wav", nil
	}
	data, err := encoder.EncodeFLAC(samples)
	if err != nil {
		return nil, "", err
	}
	return data, "flac", nil
}

func firstNonEmpty(h http.Header, keys ...string) string {
	for _, k := range keys {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return "?"
}

// rateLimit reports the remaining/limit request quota from the
// engine's rate-limit headers, "?/?" when the engine sends none.
func rateLimit(h http.Header) string {
	remaining := firstNonEmpty(h, "x-ratelimit-remaining-requests", "x-ratelimit-remaining")
	limit := firstNonEmpty(h, "x-ratelimit-limit-requests", "x-ratelimit-limit")
	return remaining + "/" + limit
}

// New selects an engine from config, falling back to whichever API key
// is present in the environment.
func New(cfg config.TranscriberConfig) (Transcriber, error) {
	groqKey := os.Getenv("GROQ_API_KEY")
	openaiKey := os.Getenv("OPENAI_API_KEY")

	switch cfg.Provider {
	case "groq":
		if groqKey == "" {
			return nil, fmt.Errorf("provider groq selected but GROQ_API_KEY is not set")
		}
		return NewGroq(groqKey, cfg), nil
	case "openai":
		if openaiKey == "" {
			return nil, fmt.Errorf("provider openai selected but OPENAI_API_KEY is not set")
		}
		return NewOpenAI(openaiKey, cfg), nil
	case "fake":
		return NewFake(nil, nil), nil
	case "":
		if groqKey != "" {
			return NewGroq(groqKey, cfg), nil
		}
		if openaiKey != "" {
			return NewOpenAI(openaiKey, cfg), nil
		}
		return nil, fmt.Errorf("set GROQ_API_KEY or OPENAI_API_KEY environment variable")
	}
	return nil, fmt.Errorf("unknown transcription provider %q", cfg.Provider)
}
