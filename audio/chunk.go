package audio

import "time"

// Chunk boundary search parameters. A cut point may move up to
// seamWindow earlier than the nominal chunk length, to the quietest
// seamFrame-sized window found there, so chunks never split mid-word
// when there is any silence to cut at.
const (
	seamWindow = 5 * time.Second
	seamFrame  = 250 * time.Millisecond
)

// Chunk is one bounded slice of a long recording.
type Chunk struct {
	Samples []int16
	// Offset of the chunk start within the full recording.
	Offset time.Duration
}

// Split partitions samples into chunks of at most chunkSeconds each,
// cutting at the quietest point within the seam window before each
// nominal boundary. The chunks are an exact partition of the input:
// no sample is duplicated or dropped, so concatenating the chunks
// reproduces the recording for any chunk duration.
func Split(samples []int16, chunkSeconds int) []Chunk {
	chunkLen := chunkSeconds * SampleRate
	if chunkLen <= 0 || len(samples) == 0 {
		return nil
	}

	var chunks []Chunk
	start := 0
	for start < len(samples) {
		end := start + chunkLen
		if end >= len(samples) {
			end = len(samples)
		} else {
			end = seamPoint(samples, start, end)
		}
		chunks = append(chunks, Chunk{
			Samples: samples[start:end],
			Offset:  time.Duration(start) * time.Second / SampleRate,
		})
		start = end
	}
	return chunks
}

// seamPoint moves the cut from the nominal end to the center of the
// quietest seamFrame window in the preceding seamWindow. Cuts only
// move earlier, never later, so chunk length stays bounded.
func seamPoint(samples []int16, start, nominal int) int {
	window := int(seamWindow.Seconds() * SampleRate)
	frame := int(seamFrame.Seconds() * SampleRate)

	lo := nominal - window
	if lo < start+frame {
		lo = start + frame
	}
	if lo >= nominal {
		return nominal
	}

	best := nominal
	bestRMS := -1.0
	for pos := nominal; pos-frame >= lo; pos -= frame {
		r := RMS(samples[pos-frame : pos])
		if bestRMS < 0 || r < bestRMS {
			bestRMS = r
			best = pos - frame/2
		}
	}
	return best
}
