package transcriber

import (
	"context"
	"fmt"

	"voxd/audio"
)

// Chunked splits long recordings into chunks before upload and shifts
// segment timestamps so they stay absolute over the full recording.
// Chunk boundaries are moved to nearby quiet points so words are not
// cut mid-utterance.
type Chunked struct {
	inner        Transcriber
	chunkSeconds int
}

func NewChunked(inner Transcriber, chunkSeconds int) *Chunked {
	return &Chunked{inner: inner, chunkSeconds: chunkSeconds}
}

func (c *Chunked) Name() string { return c.inner.Name() }

func (c *Chunked) SetLanguage(lang string) { c.inner.SetLanguage(lang) }

func (c *Chunked) GetLanguage() string { return c.inner.GetLanguage() }

func (c *Chunked) Transcribe(ctx context.Context, samples []int16) ([]Segment, error) {
	chunks := audio.Split(samples, c.chunkSeconds)

	var all []Segment
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		segs, err := c.inner.Transcribe(ctx, chunk.Samples)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		offset := chunk.Offset.Seconds()
		for _, s := range segs {
			s.Start += offset
			s.End += offset
			all = append(all, s)
		}
	}
	return all, nil
}
