// Package stt defines the Provider interface for speech-to-text backends.
//
// The finvox voice path is batch-oriented: a complete WAV recording is
// captured (via the /api/voice upload or the /ws/voice capture session) and
// transcribed in one call. An empty transcript with a nil error means the
// recogniser ran but understood nothing, which the server reports to the user
// as "Could not understand the audio."
//
// Implementations must be safe for concurrent use.
package stt

import (
	"context"
	"io"
)

// Provider is the abstraction over any batch STT backend.
type Provider interface {
	// Transcribe reads a complete WAV recording from audio and returns the
	// recognised text. It returns "" (with a nil error) when the audio
	// contained no recognisable speech.
	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}
