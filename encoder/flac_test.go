package encoder

import (
	"bytes"
	"math"
	"testing"
)

func tone(n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(8000 * math.Sin(2*math.Pi*440*float64(i)/SampleRate))
	}
	return out
}

func TestEncodeFLACHeader(t *testing.T) {
	data, err := EncodeFLAC(tone(SampleRate))
	if err != nil {
		t.Fatalf("EncodeFLAC: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("fLaC")) {
		t.Errorf("missing fLaC stream marker, got %q", data[:8])
	}
}

func TestEncodeFLACPartialBlock(t *testing.T) {
	// Input not a multiple of BlockSize exercises the tail block.
	data, err := EncodeFLAC(tone(BlockSize + BlockSize/3))
	if err != nil {
		t.Fatalf("EncodeFLAC: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty flac output")
	}
}

func TestEncodeFLACEmpty(t *testing.T) {
	data, err := EncodeFLAC(nil)
	if err != nil {
		t.Fatalf("EncodeFLAC(nil): %v", err)
	}
	if !bytes.HasPrefix(data, []byte("fLaC")) {
		t.Error("empty input should still produce a valid stream header")
	}
}
