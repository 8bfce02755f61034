// Package enrich post-processes raw transcripts through a local Ollama
// instance: cleanup for dictation, vision answers for screenshot
// questions and summaries for meeting transcripts.
package enrich

import "context"

type Enricher interface {
	// Cleanup rewrites a raw dictation transcript into polished text.
	Cleanup(ctx context.Context, text string) (string, error)
	// Answer responds to a spoken question about a screenshot. A nil
	// image asks the model to answer from the question alone.
	Answer(ctx context.Context, question string, imagePNG []byte) (string, error)
	// Summarize produces a markdown summary of a meeting transcript.
	Summarize(ctx context.Context, transcript string) (string, error)
}
