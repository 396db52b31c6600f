package server

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/finvox/finvox/pkg/types"
)

const (
	// Capture format expected from websocket clients: 16 kHz mono
	// 16-bit signed little-endian PCM.
	captureSampleRate = 16000
	captureChannels   = 1
	captureBits       = 16

	// stopFrame is the text frame that ends a capture and triggers
	// transcription.
	stopFrame = "stop"

	// sessionIdleTimeout closes a websocket session that sends nothing.
	sessionIdleTimeout = 5 * time.Minute
)

// controlFrame is an optional JSON text frame toggling per-session
// options. Any text frame other than "stop" is parsed as one.
type controlFrame struct {
	UseRetriever bool `json:"use_retriever"`
}

// handleVoiceSocket runs a websocket capture session. The client
// streams binary PCM frames and sends a "stop" text frame to finalise;
// the server wraps the buffered audio in a WAV container, transcribes
// it, runs the query pipeline and replies with the result as JSON. The
// buffer then resets so one connection can carry many queries.
func (s *Server) handleVoiceSocket(w http.ResponseWriter, r *http.Request) {
	if s.stt == nil {
		writeError(w, http.StatusNotImplemented, "no speech-to-text provider configured")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("server: websocket accept failed", "err", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "session aborted")

	s.metrics.ActiveVoiceSessions.Add(r.Context(), 1)
	defer s.metrics.ActiveVoiceSessions.Add(context.Background(), -1)

	ctx := r.Context()
	var (
		pcm          bytes.Buffer
		useRetriever bool
	)

	for {
		readCtx, cancel := context.WithTimeout(ctx, sessionIdleTimeout)
		typ, data, err := conn.Read(readCtx)
		cancel()
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			slog.Debug("server: websocket read ended", "err", err)
			return
		}

		switch typ {
		case websocket.MessageBinary:
			if pcm.Len()+len(data) > maxAudioBytes {
				conn.Close(websocket.StatusMessageTooBig, "audio buffer limit exceeded")
				return
			}
			pcm.Write(data)

		case websocket.MessageText:
			if string(data) != stopFrame {
				var ctrl controlFrame
				if err := json.Unmarshal(data, &ctrl); err != nil {
					slog.Debug("server: ignoring unrecognised text frame", "frame", string(data))
					continue
				}
				useRetriever = ctrl.UseRetriever
				continue
			}

			res := s.finishCapture(ctx, pcm.Bytes(), useRetriever)
			pcm.Reset()
			if err := wsjson.Write(ctx, conn, res); err != nil {
				slog.Warn("server: websocket write failed", "err", err)
				return
			}
		}
	}
}

// finishCapture transcribes a completed PCM capture and runs the
// pipeline on the transcript.
func (s *Server) finishCapture(ctx context.Context, pcm []byte, useRetriever bool) types.QueryResult {
	if len(pcm) == 0 {
		return types.QueryResult{Error: transcriptFailedMessage}
	}

	wav := encodeWAV(pcm, captureSampleRate, captureChannels)

	start := time.Now()
	text, err := s.stt.Transcribe(ctx, bytes.NewReader(wav))
	s.metrics.STTDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		slog.Error("server: transcription failed", "err", err)
		s.metrics.RecordProviderRequest(ctx, "stt", "error")
		s.metrics.RecordProviderError(ctx, "stt")
		return types.QueryResult{Error: transcriptFailedMessage}
	}
	s.metrics.RecordProviderRequest(ctx, "stt", "ok")
	if text == "" {
		return types.QueryResult{Error: transcriptFailedMessage}
	}

	slog.Debug("server: voice transcript", "text", text)
	return s.runner.Run(ctx, text, useRetriever)
}

// encodeWAV wraps raw 16-bit little-endian PCM samples in a minimal
// RIFF/WAV container.
func encodeWAV(pcm []byte, sampleRate, channels int) []byte {
	dataSize := len(pcm)
	blockAlign := channels * captureBits / 8
	byteRate := sampleRate * blockAlign

	buf := make([]byte, 44+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(captureBits))

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	copy(buf[44:], pcm)
	return buf
}
