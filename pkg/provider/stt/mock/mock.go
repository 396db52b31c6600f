// Package mock provides a test double for the stt package interface.
package mock

import (
	"context"
	"io"
	"sync"
)

// Provider is a mock implementation of stt.Provider.
type Provider struct {
	mu sync.Mutex

	// Text is returned from Transcribe when Err is nil.
	Text string

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// Audio records the bytes of every Transcribe call.
	Audio [][]byte
}

// Transcribe records the audio and returns Text, Err.
func (p *Provider) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Audio = append(p.Audio, data)
	if p.Err != nil {
		return "", p.Err
	}
	return p.Text, nil
}
