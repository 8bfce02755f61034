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

type OpenAI struct {
	baseTranscriber
	apiKey string
}

func NewOpenAI(apiKey string, cfg config.TranscriberConfig) *OpenAI {
	apiURL := "https://api.openai.com/v1/audio/transcriptions"
	o := &OpenAI{
		baseTranscriber: baseTranscriber{
			client: NewTracedClient(apiURL),
			apiURL: apiURL,
			lang:   cfg.Language,
			format: cfg.Format,
		},
		apiKey: apiKey,
	}
	go o.client.Warm()
	return o
}

func (o *OpenAI) Name() string { return "openai" }

// gpt-4o-transcribe returns plain text without segment timestamps, so
// the whole response becomes a single segment spanning the recording.
func (o *OpenAI) Transcribe(ctx context.Context, samples []int16) ([]Segment, error) {
	data, ext, err := o.payload(samples)
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

	writer.WriteField("model", "gpt-4o-transcribe")
	writer.WriteField("response_format", "json")
	if o.lang != "" {
		writer.WriteField("language", o.lang)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", o.apiURL, &body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}

	audioS := audio.Duration(samples).Seconds()
	m := resp.Metrics
	log.Engine(o.Name(), audioS,
		float64(m.DNS.Milliseconds()), float64(m.TLS.Milliseconds()),
		float64(m.TTFB.Milliseconds()), float64(m.Total.Milliseconds()),
		m.ConnReused)

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("openai API error %d (requests %s): %s",
			resp.StatusCode, rateLimit(resp.Header), string(resp.Body))
	}

	var oResp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(resp.Body, &oResp); err != nil {
		return nil, fmt.Errorf("openai response parse error: %w", err)
	}

	if oResp.Text == "" {
		return nil, nil
	}
	return []Segment{{End: audioS, Text: oResp.Text}}, nil
}
