package audio

import (
	"encoding/binary"
	"math"
	"testing"
	"time"
)

// pcmSine produces n samples of a 16-bit mono sine wave at the given amplitude.
func pcmSine(n int, amplitude float64) []byte {
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := int16(amplitude * math.Sin(2*math.Pi*float64(i)/64))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

func TestEncodeWAVHeader(t *testing.T) {
	pcm := pcmSine(160, 1000)
	wav := EncodeWAV(pcm, 16000, 1)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("expected %d bytes, got %d", 44+len(pcm), len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Errorf("missing RIFF/WAVE markers")
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 16000 {
		t.Errorf("sample rate = %d, want 16000", got)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); int(got) != len(pcm) {
		t.Errorf("data size = %d, want %d", got, len(pcm))
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %f, want 0", got)
	}
	silence := make([]byte, 320)
	if got := RMS(silence); got != 0 {
		t.Errorf("RMS(silence) = %f, want 0", got)
	}
	loud := pcmSine(320, 10000)
	quiet := pcmSine(320, 100)
	if RMS(loud) <= RMS(quiet) {
		t.Errorf("expected louder signal to have higher RMS")
	}
}

func TestDuration(t *testing.T) {
	// 16 kHz mono 16-bit: 32 000 bytes per second.
	pcm := make([]byte, 32000)
	if got := Duration(pcm, 16000, 1); got != time.Second {
		t.Errorf("Duration = %v, want 1s", got)
	}
	if got := Duration(pcm, 0, 1); got != 0 {
		t.Errorf("Duration with invalid rate = %v, want 0", got)
	}
}

func TestStereoToMono(t *testing.T) {
	// One stereo frame: L=100, R=200 → mono 150.
	stereo := make([]byte, 4)
	binary.LittleEndian.PutUint16(stereo[0:], 100)
	binary.LittleEndian.PutUint16(stereo[2:], 200)

	mono := StereoToMono(stereo)
	if len(mono) != 2 {
		t.Fatalf("expected 2 bytes, got %d", len(mono))
	}
	if got := int16(binary.LittleEndian.Uint16(mono)); got != 150 {
		t.Errorf("averaged sample = %d, want 150", got)
	}
}

func TestResampleMono16(t *testing.T) {
	src := pcmSine(480, 1000) // 10 ms at 48 kHz
	out := ResampleMono16(src, 48000, 16000)
	if len(out) != 320 { // 10 ms at 16 kHz = 160 samples
		t.Errorf("resampled length = %d bytes, want 320", len(out))
	}
	// Same rate: unchanged.
	if got := ResampleMono16(src, 16000, 16000); &got[0] != &src[0] {
		t.Errorf("expected identity resample to return input unchanged")
	}
}
