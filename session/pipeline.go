package session

import (
	"fmt"
	"time"

	"voxd/artifact"
	"voxd/audio"
	"voxd/capture"
	"voxd/log"
	"voxd/transcriber"
)

// pipeline dispatches a stopped session to its mode's processing chain
// and returns a human-readable outcome for status and notifications.
func (c *Controller) pipeline(sess *session, results []capture.TrackResult) (string, error) {
	switch sess.mode {
	case ModeDictate:
		return c.runDictate(sess, results)
	case ModeScreenshot:
		return c.runScreenshot(sess, results)
	case ModeMeeting:
		return c.runMeeting(sess, results)
	}
	return "", fmt.Errorf("unknown mode %q", sess.mode)
}

func trackByName(results []capture.TrackResult, name string) *capture.TrackResult {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// micSamples loads the mic track, distinguishing a too-short recording
// (not an error, the user tapped the toggle twice) from a dead device.
func micSamples(results []capture.TrackResult) ([]int16, bool, error) {
	r := trackByName(results, capture.TrackMic)
	if r == nil {
		return nil, false, fmt.Errorf("%w: no mic track", ErrDeviceUnavailable)
	}
	if r.Size > 0 && r.Size < capture.MinTrackBytes {
		return nil, true, nil
	}
	if r.Err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrDeviceUnavailable, r.Err)
	}
	samples, err := audio.ReadFile(r.Path)
	if err != nil {
		return nil, false, fmt.Errorf("read mic track: %w", err)
	}
	return samples, false, nil
}

func (c *Controller) transcribe(sess *session, tr transcriber.Transcriber, samples []int16) ([]transcriber.Segment, error) {
	start := time.Now()
	segs, err := tr.Transcribe(sess.ctx, samples)
	log.Stage(sess.id, "transcribe", time.Since(start))
	if err != nil {
		if sess.ctx.Err() != nil {
			return nil, sess.ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrEngineUnreachable, err)
	}
	return segs, nil
}

func (c *Controller) runDictate(sess *session, results []capture.TrackResult) (string, error) {
	samples, tooShort, err := micSamples(results)
	if err != nil {
		return "", err
	}
	if tooShort {
		return "recording too short", nil
	}

	segs, err := c.transcribe(sess, c.deps.Transcriber, samples)
	if err != nil {
		return "", err
	}
	text := transcriber.Text(segs)
	if text == "" {
		return "no speech detected", nil
	}
	log.TranscriptionText(text)

	start := time.Now()
	cleaned, err := c.deps.Enricher.Cleanup(sess.ctx, text)
	log.Stage(sess.id, "cleanup", time.Since(start))
	if err != nil {
		if sess.ctx.Err() != nil {
			return "", sess.ctx.Err()
		}
		// Raw transcription is still useful; deliver it instead.
		log.Warnf("cleanup failed, delivering raw transcription: %v", err)
		cleaned = text
	}

	if err := c.deps.Injector.Deliver(cleaned); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInjectionFailed, err)
	}
	return fmt.Sprintf("delivered %d chars", len(cleaned)), nil
}

func (c *Controller) runScreenshot(sess *session, results []capture.TrackResult) (string, error) {
	samples, tooShort, err := micSamples(results)
	if err != nil {
		return "", err
	}
	if tooShort {
		return "recording too short", nil
	}

	segs, err := c.transcribe(sess, c.deps.Transcriber, samples)
	if err != nil {
		return "", err
	}
	question := transcriber.Text(segs)
	if question == "" {
		return "no question heard", nil
	}
	log.TranscriptionText(question)

	img, err := c.deps.Screen.Capture(sess.ctx)
	if err != nil {
		// The model can still answer from the question alone.
		log.Warnf("screen capture failed, answering without image: %v", err)
		img = nil
	}

	start := time.Now()
	answer, err := c.deps.Enricher.Answer(sess.ctx, question, img)
	log.Stage(sess.id, "answer", time.Since(start))
	if err != nil {
		if sess.ctx.Err() != nil {
			return "", sess.ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrEngineUnreachable, err)
	}
	if answer == "" {
		return "empty answer", nil
	}

	if err := c.deps.Injector.Deliver(answer); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInjectionFailed, err)
	}
	return fmt.Sprintf("answered %d chars", len(answer)), nil
}

func (c *Controller) runMeeting(sess *session, results []capture.TrackResult) (string, error) {
	var mic, system []int16
	if r := trackByName(results, capture.TrackMic); r != nil && r.Ok() {
		mic, _ = audio.ReadFile(r.Path)
	}
	if r := trackByName(results, capture.TrackSystem); r != nil && r.Ok() {
		system, _ = audio.ReadFile(r.Path)
	}
	if mic == nil && system == nil {
		sess.dir.Discard()
		return "", fmt.Errorf("%w: no usable track", ErrDeviceUnavailable)
	}

	mixed := audio.Mix(mic, system)
	if audio.Duration(mixed) < time.Second {
		sess.dir.Discard()
		return "recording too short", nil
	}
	if err := audio.WriteFile(sess.dir.File(artifact.MixedFile), mixed); err != nil {
		return "", fmt.Errorf("write mixed track: %w", err)
	}

	chunked := transcriber.NewChunked(c.deps.Transcriber, c.deps.Config.Meeting.ChunkSeconds)
	segs, err := c.transcribe(sess, chunked, mixed)
	if err != nil {
		return "", err
	}
	if err := sess.dir.WriteTranscript(sess.startedAt, audio.Duration(mixed), segs); err != nil {
		return "", err
	}

	degraded := false
	start := time.Now()
	summary, err := c.deps.Enricher.Summarize(sess.ctx, transcriber.Text(segs))
	log.Stage(sess.id, "summarize", time.Since(start))
	if err != nil {
		if sess.ctx.Err() != nil {
			return "", sess.ctx.Err()
		}
		// The transcript alone is still a valid meeting record.
		log.Warnf("summary failed, keeping transcript only: %v", err)
		degraded = true
	} else if err := sess.dir.WriteSummary(sess.startedAt, summary); err != nil {
		return "", err
	}

	final, err := sess.dir.Finalize()
	if err != nil {
		return "", err
	}
	if degraded {
		return final + " (no summary)", nil
	}
	return final, nil
}
