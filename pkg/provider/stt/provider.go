// Package stt defines the Provider interface for Speech-to-Text backends.
//
// An STT provider wraps a transcription service (e.g., Deepgram, or a local
// whisper.cpp server) behind a segment-oriented interface: the caller owns
// the decision of when an utterance is complete, hands over one finalized PCM
// segment at a time, and receives a single authoritative transcript back.
//
// Implementors must be safe for concurrent use; multiple sessions may
// transcribe segments through one Provider simultaneously.
package stt

import (
	"context"
	"time"

	"github.com/answercue/answercue/pkg/types"
)

// Segment is one finalized utterance of raw 16-bit signed little-endian PCM
// audio, ready for transcription.
type Segment struct {
	// PCM is the raw audio data. Must not be mutated during Transcribe.
	PCM []byte

	// SampleRate in Hz (e.g., 16000).
	SampleRate int

	// Channels is the channel count: 1 for mono, 2 for stereo.
	Channels int
}

// Duration returns the playback length of the segment, or 0 when the segment
// metadata is invalid.
func (s Segment) Duration() time.Duration {
	if s.SampleRate <= 0 || s.Channels <= 0 {
		return 0
	}
	bytesPerSec := s.SampleRate * s.Channels * 2
	return time.Duration(len(s.PCM)) * time.Second / time.Duration(bytesPerSec)
}

// Provider is the abstraction over any speech-to-text backend.
//
// Transcribe converts one finalized segment into text. It must respect ctx
// cancellation and deadlines, and must return an explicit error rather than a
// partial result when the backend fails. An empty transcript with a nil error
// is valid and means the segment contained no recognizable speech.
type Provider interface {
	Transcribe(ctx context.Context, seg Segment) (types.Transcript, error)
}
