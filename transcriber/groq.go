package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"voxd/audio"
	"voxd/config"
	"voxd/log"
)

type Groq struct {
	baseTranscriber
	apiKey string
}

func NewGroq(apiKey string, cfg config.TranscriberConfig) *Groq {
	apiURL := "https://api.groq.com/openai/v1/audio/transcriptions"
	g := &Groq{
		baseTranscriber: baseTranscriber{
			client: NewTracedClient(apiURL),
			apiURL: apiURL,
			lang:   cfg.Language,
			format: cfg.Format,
		},
		apiKey: apiKey,
	}
	go g.client.Warm()
	return g
}

func (g *Groq) Name() string { return "groq" }

type groqResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"segments"`
}

func (g *Groq) Transcribe(ctx context.Context, samples []int16) ([]Segment, error) {
	data, ext, err := g.payload(samples)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio."+ext)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}

	writer.WriteField("model", "whisper-large-v3-turbo")
	writer.WriteField("response_format", "verbose_json")
	if g.lang != "" {
		writer.WriteField("language", g.lang)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", g.apiURL, &body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}

	audioS := audio.Duration(samples).Seconds()
	m := resp.Metrics
	log.Engine(g.Name(), audioS,
		float64(m.DNS.Milliseconds()), float64(m.TLS.Milliseconds()),
		float64(m.TTFB.Milliseconds()), float64(m.Total.Milliseconds()),
		m.ConnReused)

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("groq API error %d (requests %s): %s",
			resp.StatusCode, rateLimit(resp.Header), string(resp.Body))
	}

	var gResp groqResponse
	if err := json.Unmarshal(resp.Body, &gResp); err != nil {
		return nil, fmt.Errorf("groq response parse error: %w", err)
	}

	var segments []Segment
	for _, seg := range gResp.Segments {
		segments = append(segments, Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
	if len(segments) == 0 && gResp.Text != "" {
		end := gResp.Duration
		if end == 0 {
			end = audioS
		}
		segments = append(segments, Segment{End: end, Text: gResp.Text})
	}
	return segments, nil
}
