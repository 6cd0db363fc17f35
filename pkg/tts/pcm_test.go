package tts

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"
)

// buildWAV assembles a minimal RIFF/WAVE file around the given sample
// data.
func buildWAV(sampleRate, channels, bits int, data []byte) []byte {
	var buf bytes.Buffer
	write := func(v any) { binary.Write(&buf, binary.LittleEndian, v) } //nolint:errcheck

	buf.WriteString("RIFF")
	write(uint32(36 + len(data)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	write(uint32(16))
	write(uint16(1))
	write(uint16(channels))
	write(uint32(sampleRate))
	write(uint32(sampleRate * channels * bits / 8))
	write(uint16(channels * bits / 8))
	write(uint16(bits))

	buf.WriteString("data")
	write(uint32(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func TestDecodeWAV(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04, 0x00}
	wav := buildWAV(22050, 1, 16, pcm)

	got, format, err := DecodeWAV(wav)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if !bytes.Equal(got, pcm) {
		t.Error("decoded samples do not match the original data")
	}
	if format.SampleRate != 22050 || format.Channels != 1 || format.BitDepth != 16 {
		t.Errorf("format = %+v, expected mono 16-bit 22050Hz", format)
	}
}

func TestDecodeWAVErrors(t *testing.T) {
	valid := buildWAV(22050, 1, 16, []byte{1, 0, 2, 0})

	nonPCM := append([]byte(nil), valid...)
	nonPCM[20] = 3 // IEEE float format code

	truncated := append([]byte(nil), valid...)
	truncated[40] = 0xFF // data chunk claims more bytes than exist

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not riff", []byte("ID3 this is something else entirely")},
		{"header only", []byte("RIFF\x04\x00\x00\x00WAVE")},
		{"missing data chunk", valid[:len(valid)-12]},
		{"non-pcm format", nonPCM},
		{"truncated data chunk", truncated},
		{"eight bit samples", buildWAV(22050, 1, 8, []byte{1, 2})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := DecodeWAV(tt.data); err == nil {
				t.Error("DecodeWAV accepted malformed input")
			}
		})
	}
}

func TestResamplePassthrough(t *testing.T) {
	pcm := []byte{1, 0, 2, 0}
	out, err := Resample(pcm, DefaultPCMFormat(), DefaultPCMFormat())
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	if !bytes.Equal(out, pcm) {
		t.Error("same-rate resample altered the data")
	}
}

func TestResampleRates(t *testing.T) {
	tests := []struct {
		name     string
		fromRate int
		inBytes  int
		outBytes int
	}{
		{"upsample 2x", 11025, 200, 400},
		{"downsample 2x", 44100, 200, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from := PCMFormat{SampleRate: tt.fromRate, Channels: 1, BitDepth: 16}
			out, err := Resample(make([]byte, tt.inBytes), from, DefaultPCMFormat())
			if err != nil {
				t.Fatalf("Resample failed: %v", err)
			}
			if len(out) != tt.outBytes {
				t.Errorf("resampled to %d bytes, expected %d", len(out), tt.outBytes)
			}
		})
	}
}

func TestResampleInterpolates(t *testing.T) {
	// two samples, 0 and 1000, upsampled 2x
	in := make([]byte, 4)
	binary.LittleEndian.PutUint16(in[0:], 0)
	binary.LittleEndian.PutUint16(in[2:], 1000)

	from := PCMFormat{SampleRate: 11025, Channels: 1, BitDepth: 16}
	out, err := Resample(in, from, DefaultPCMFormat())
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	if len(out) != 8 {
		t.Fatalf("resampled to %d bytes, expected 8", len(out))
	}

	expected := []int16{0, 500, 1000, 1000}
	for i, want := range expected {
		got := int16(binary.LittleEndian.Uint16(out[2*i:]))
		if got != want {
			t.Errorf("sample %d = %d, expected %d", i, got, want)
		}
	}
}

func TestResampleRejectsUnsupportedFormats(t *testing.T) {
	mono := DefaultPCMFormat()
	stereo := PCMFormat{SampleRate: 44100, Channels: 2, BitDepth: 16}

	if _, err := Resample([]byte{0, 0, 0, 0}, stereo, mono); err == nil {
		t.Error("expected an error for a channel count conversion")
	}

	stereoTarget := PCMFormat{SampleRate: 22050, Channels: 2, BitDepth: 16}
	if _, err := Resample([]byte{0, 0, 0, 0}, stereo, stereoTarget); err == nil {
		t.Error("expected an error for stereo input")
	}
}

func TestResampleEmptyInput(t *testing.T) {
	from := PCMFormat{SampleRate: 44100, Channels: 1, BitDepth: 16}
	out, err := Resample(nil, from, DefaultPCMFormat())
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("resampled empty input to %d bytes", len(out))
	}
}

func TestPCMFormatDuration(t *testing.T) {
	f := DefaultPCMFormat()
	if got := f.Duration(SampleRate * 2); got != time.Second {
		t.Errorf("Duration(one second of audio) = %v, expected %v", got, time.Second)
	}
	if got := f.Duration(0); got != 0 {
		t.Errorf("Duration(0) = %v, expected 0", got)
	}

	var zero PCMFormat
	if got := zero.Duration(1000); got != 0 {
		t.Errorf("Duration on a zero format = %v, expected 0", got)
	}
}

func TestPCMFormatBytesPerFrame(t *testing.T) {
	if got := DefaultPCMFormat().BytesPerFrame(); got != 2 {
		t.Errorf("BytesPerFrame() = %d, expected 2", got)
	}
	stereo := PCMFormat{SampleRate: 44100, Channels: 2, BitDepth: 16}
	if got := stereo.BytesPerFrame(); got != 4 {
		t.Errorf("stereo BytesPerFrame() = %d, expected 4", got)
	}
}
