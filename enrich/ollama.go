package enrich

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voxd/config"
	"voxd/log"
)

// summaryBlockWords is the block size for incremental summarization of
// transcripts over the configured word limit.
const summaryBlockWords = 2500

type Ollama struct {
	client *http.Client
	cfg    config.EnrichConfig
	// wordLimit is the transcript size above which Summarize switches
	// to block-wise incremental summarization.
	wordLimit int
}

func NewOllama(cfg config.EnrichConfig, summaryWordLimit int) *Ollama {
	return &Ollama{
		client:    &http.Client{Timeout: 5 * time.Minute},
		cfg:       cfg,
		wordLimit: summaryWordLimit,
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Images  []string        `json:"images,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (o *Ollama) generate(ctx context.Context, model, prompt string, images []string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:   model,
		Prompt:  prompt,
		Images:  images,
		Stream:  false,
		Options: generateOptions{Temperature: 0.2},
	})
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(o.cfg.BaseURL, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("ollama error %d: %s", resp.StatusCode, string(body))
	}

	var gResp generateResponse
	if err := json.Unmarshal(body, &gResp); err != nil {
		return "", fmt.Errorf("ollama response parse error: %w", err)
	}
	if gResp.Error != "" {
		return "", fmt.Errorf("ollama: %s", gResp.Error)
	}

	log.Infof("ollama %s responded in %.1fs", model, time.Since(start).Seconds())
	return strings.TrimSpace(gResp.Response), nil
}

func (o *Ollama) Cleanup(ctx context.Context, text string) (string, error) {
	out, err := o.generate(ctx, o.cfg.CleanupModel, o.cfg.CleanupPrompt+"\n\n"+text, nil)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", fmt.Errorf("ollama returned empty cleanup")
	}
	return out, nil
}

func (o *Ollama) Answer(ctx context.Context, question string, imagePNG []byte) (string, error) {
	prompt := "Answer the question about the attached screenshot concisely.\n\nQuestion: " + question
	var images []string
	if imagePNG != nil {
		images = []string{base64.StdEncoding.EncodeToString(imagePNG)}
	} else {
		prompt = "Answer the question concisely.\n\nQuestion: " + question
	}
	return o.generate(ctx, o.cfg.VisionModel, prompt, images)
}

func (o *Ollama) Summarize(ctx context.Context, transcript string) (string, error) {
	words := strings.Fields(transcript)
	if len(words) <= o.wordLimit {
		return o.generate(ctx, o.cfg.SummaryModel, o.cfg.SummaryPrompt+"\n\n"+transcript, nil)
	}
	return o.summarizeIncremental(ctx, words)
}

// summarizeIncremental handles transcripts too long for one prompt:
// fixed-size word blocks are summarized separately, then the partial
// summaries are condensed into one. If the final condensing step fails,
// the joined partials are still a usable summary.
func (o *Ollama) summarizeIncremental(ctx context.Context, words []string) (string, error) {
	var partials []string
	for i := 0; i < len(words); i += summaryBlockWords {
		end := i + summaryBlockWords
		if end > len(words) {
			end = len(words)
		}
		block := strings.Join(words[i:end], " ")
		prompt := "Summarize this part of a meeting transcript. Keep decisions, action items and key points.\n\n" + block
		part, err := o.generate(ctx, o.cfg.SummaryModel, prompt, nil)
		if err != nil {
			return "", fmt.Errorf("summary block %d: %w", len(partials)+1, err)
		}
		partials = append(partials, part)
	}

	joined := strings.Join(partials, "\n\n")
	final, err := o.generate(ctx, o.cfg.SummaryModel,
		o.cfg.SummaryPrompt+"\n\nThe following are partial summaries of one meeting:\n\n"+joined, nil)
	if err != nil {
		log.Warnf("meta-summary failed, keeping partial summaries: %v", err)
		return joined, nil
	}
	return final, nil
}
