package tts

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Canonical audio format. Every engine delivers PCM in this format so the
// playback device is configured once and never reconfigured.
const (
	SampleRate = 22050
	Channels   = 1
	BitDepth   = 16
)

// PCMFormat describes raw little-endian signed integer PCM.
type PCMFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultPCMFormat returns the canonical playback format.
func DefaultPCMFormat() PCMFormat {
	return PCMFormat{SampleRate: SampleRate, Channels: Channels, BitDepth: BitDepth}
}

// BytesPerFrame returns the byte width of one frame across all channels.
func (f PCMFormat) BytesPerFrame() int {
	return f.BitDepth / 8 * f.Channels
}

// Duration returns the playback time of dataLen bytes of audio in this
// format.
func (f PCMFormat) Duration(dataLen int) time.Duration {
	bpf := f.BytesPerFrame()
	if f.SampleRate == 0 || bpf == 0 {
		return 0
	}
	frames := dataLen / bpf
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// DecodeWAV extracts the raw sample data and format from a RIFF/WAVE file.
// Only uncompressed 16-bit integer PCM is supported, which is what speech
// synthesizers emit. The returned slice aliases data.
func DecodeWAV(data []byte) ([]byte, PCMFormat, error) {
	var format PCMFormat
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, format, errors.New("not a RIFF/WAVE file")
	}

	var pcm []byte
	haveFmt := false
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := data[off+8:]
		if size > len(body) {
			return nil, format, fmt.Errorf("truncated %q chunk", id)
		}
		body = body[:size]

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, format, errors.New("malformed fmt chunk")
			}
			audioFormat := binary.LittleEndian.Uint16(body[0:2])
			if audioFormat != 1 {
				return nil, format, fmt.Errorf("unsupported audio format %d, want PCM", audioFormat)
			}
			format.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
			format.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			format.BitDepth = int(binary.LittleEndian.Uint16(body[14:16]))
			haveFmt = true
		case "data":
			pcm = body
		}

		// Chunks are word aligned; odd sizes carry a pad byte.
		off += 8 + size + size%2
	}

	if !haveFmt {
		return nil, format, errors.New("missing fmt chunk")
	}
	if pcm == nil {
		return nil, format, errors.New("missing data chunk")
	}
	if format.BitDepth != 16 {
		return nil, format, fmt.Errorf("unsupported bit depth %d, want 16", format.BitDepth)
	}
	return pcm, format, nil
}

// Resample converts mono 16-bit PCM between sample rates using linear
// interpolation, which is plenty for speech. Channel count and bit depth
// conversions are not supported.
func Resample(pcm []byte, from, to PCMFormat) ([]byte, error) {
	if from.Channels != to.Channels || from.BitDepth != to.BitDepth {
		return nil, errors.New("channel count and bit depth conversion not supported")
	}
	if from.Channels != 1 || from.BitDepth != 16 {
		return nil, errors.New("only mono 16-bit audio can be resampled")
	}
	if from.SampleRate == to.SampleRate {
		return pcm, nil
	}
	if from.SampleRate <= 0 || to.SampleRate <= 0 {
		return nil, errors.New("invalid sample rate")
	}

	in := make([]int16, len(pcm)/2)
	for i := range in {
		in[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}
	if len(in) == 0 {
		return nil, nil
	}

	ratio := float64(to.SampleRate) / float64(from.SampleRate)
	outSamples := int(float64(len(in)) * ratio)
	out := make([]byte, outSamples*2)
	for i := 0; i < outSamples; i++ {
		pos := float64(i) / ratio
		idx := int(pos)
		var v int16
		if idx >= len(in)-1 {
			v = in[len(in)-1]
		} else {
			frac := pos - float64(idx)
			v = int16(float64(in[idx])*(1-frac) + float64(in[idx+1])*frac)
		}
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}
	return out, nil
}
