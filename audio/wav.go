// Package audio handles the on-disk WAV format used by the capture
// subprocesses: decoding to mono 16 kHz int16, mixing tracks and
// splitting long recordings into transcription chunks.
package audio

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"
)

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	HeaderSize    = 44
)

// ReadFile decodes a WAV file and normalizes it to mono 16 kHz int16,
// downmixing multi-channel audio and resampling when needed. Capture
// tools record at whatever rate the device offers, so normalization
// happens here rather than in the recorder.
func ReadFile(path string) ([]int16, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses WAV bytes into normalized mono 16 kHz samples.
func Decode(data []byte) ([]int16, error) {
	if len(data) < HeaderSize || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a WAV file")
	}

	// Walk the chunk list; fmt and data may be preceded by LIST etc.
	var numChannels, bitsPerSample int
	var rate int
	var pcm []byte
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			size = len(data) - body
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("short fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body:])
			if format != 1 { // PCM
				return nil, fmt.Errorf("unsupported WAV format %d", format)
			}
			numChannels = int(binary.LittleEndian.Uint16(data[body+2:]))
			rate = int(binary.LittleEndian.Uint32(data[body+4:]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14:]))
		case "data":
			pcm = data[body : body+size]
		}
		off = body + size
		if size%2 == 1 {
			off++ // chunks are word-aligned
		}
	}
	if numChannels == 0 || pcm == nil {
		return nil, fmt.Errorf("missing fmt or data chunk")
	}

	samples, err := toInt16(pcm, bitsPerSample)
	if err != nil {
		return nil, err
	}
	samples = downmix(samples, numChannels)
	if rate != SampleRate {
		samples = Resample(samples, rate, SampleRate)
	}
	return samples, nil
}

func toInt16(pcm []byte, bits int) ([]int16, error) {
	switch bits {
	case 16:
		out := make([]int16, len(pcm)/2)
		for i := range out {
			out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		}
		return out, nil
	case 32:
		out := make([]int16, len(pcm)/4)
		for i := range out {
			s := int32(binary.LittleEndian.Uint32(pcm[i*4:]))
			out[i] = int16(s >> 16)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported sample width %d bits", bits)
	}
}

func downmix(samples []int16, channels int) []int16 {
	if channels <= 1 {
		return samples
	}
	out := make([]int16, len(samples)/channels)
	for i := range out {
		var sum int32
		for c := 0; c < channels; c++ {
			sum += int32(samples[i*channels+c])
		}
		out[i] = int16(sum / int32(channels))
	}
	return out
}

// Resample converts between sample rates by linear interpolation.
// Good enough for speech going into a whisper model.
func Resample(samples []int16, from, to int) []int16 {
	if from == to || len(samples) == 0 {
		return samples
	}
	targetLen := int(float64(len(samples)) * float64(to) / float64(from))
	if targetLen == 0 {
		return nil
	}
	out := make([]int16, targetLen)
	step := float64(len(samples)-1) / float64(targetLen-1)
	if targetLen == 1 {
		step = 0
	}
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		frac := pos - float64(j)
		a := float64(samples[j])
		b := a
		if j+1 < len(samples) {
			b = float64(samples[j+1])
		}
		out[i] = int16(a + (b-a)*frac)
	}
	return out
}

// WriteFile writes mono 16 kHz samples as a 16-bit PCM WAV file.
func WriteFile(path string, samples []int16) error {
	return os.WriteFile(path, EncodeWAV(samples), 0644)
}

// EncodeWAV builds a 16-bit mono PCM WAV byte slice.
func EncodeWAV(samples []int16) []byte {
	dataSize := len(samples) * 2
	buf := make([]byte, HeaderSize+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(HeaderSize-8+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], Channels)
	binary.LittleEndian.PutUint32(buf[24:28], SampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], SampleRate*2)
	binary.LittleEndian.PutUint16(buf[32:34], 2) // block align
	binary.LittleEndian.PutUint16(buf[34:36], BitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[HeaderSize+i*2:], uint16(s))
	}
	return buf
}

// Duration of a normalized sample buffer.
func Duration(samples []int16) time.Duration {
	return time.Duration(float64(len(samples)) / SampleRate * float64(time.Second))
}
