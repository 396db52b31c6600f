package server

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	sttmock "github.com/finvox/finvox/pkg/provider/stt/mock"
	"github.com/finvox/finvox/pkg/types"
)

// stubRunner records Run calls and returns a fixed result.
type stubRunner struct {
	result types.QueryResult
	texts  []string
	flags  []bool
}

func (r *stubRunner) Run(_ context.Context, text string, useRetriever bool) types.QueryResult {
	r.texts = append(r.texts, text)
	r.flags = append(r.flags, useRetriever)
	res := r.result
	res.Query = text
	return res
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *stubRunner) {
	t.Helper()
	runner := &stubRunner{result: types.QueryResult{
		Intent:        "get_revenue",
		FinalResponse: "The revenue for AAPL in 2023 is $383.29 billion.",
	}}
	srv, err := New(":0", runner, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv, runner
}

func TestHandleQuery(t *testing.T) {
	srv, runner := newTestServer(t)

	body := strings.NewReader(`{"text":"What was Apple's revenue in 2023?","use_retriever":true}`)
	req := httptest.NewRequest("POST", "/api/query", body)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var res types.QueryResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if res.FinalResponse != "The revenue for AAPL in 2023 is $383.29 billion." {
		t.Errorf("final response = %q", res.FinalResponse)
	}
	if len(runner.texts) != 1 || runner.texts[0] != "What was Apple's revenue in 2023?" {
		t.Errorf("runner texts = %v", runner.texts)
	}
	if !runner.flags[0] {
		t.Error("use_retriever flag was not forwarded")
	}
}

func TestHandleQuery_EmptyText(t *testing.T) {
	srv, runner := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader(`{"text":""}`))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if len(runner.texts) != 0 {
		t.Errorf("runner should not be called, got %v", runner.texts)
	}
}

func TestHandleQuery_InvalidJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleVoice(t *testing.T) {
	transcriber := &sttmock.Provider{Text: "What was Apple's revenue in 2023?"}
	srv, runner := newTestServer(t, WithSTT(transcriber))

	req := httptest.NewRequest("POST", "/api/voice", bytes.NewReader([]byte("RIFF....WAVE")))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if len(transcriber.Audio) != 1 || string(transcriber.Audio[0]) != "RIFF....WAVE" {
		t.Errorf("transcriber audio = %v", transcriber.Audio)
	}
	if len(runner.texts) != 1 || runner.texts[0] != "What was Apple's revenue in 2023?" {
		t.Errorf("runner texts = %v", runner.texts)
	}
}

func TestHandleVoice_EmptyTranscript(t *testing.T) {
	srv, runner := newTestServer(t, WithSTT(&sttmock.Provider{Text: ""}))

	req := httptest.NewRequest("POST", "/api/voice", bytes.NewReader([]byte("RIFF")))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var res types.QueryResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if res.Error != "Could not understand the audio." {
		t.Errorf("error = %q, want %q", res.Error, "Could not understand the audio.")
	}
	if len(runner.texts) != 0 {
		t.Errorf("runner should not be called for empty transcript, got %v", runner.texts)
	}
}

func TestHandleVoice_TranscriptionError(t *testing.T) {
	srv, _ := newTestServer(t, WithSTT(&sttmock.Provider{Err: errors.New("whisper unreachable")}))

	req := httptest.NewRequest("POST", "/api/voice", bytes.NewReader([]byte("RIFF")))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
}

func TestHandleVoice_NoSTTConfigured(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/voice", bytes.NewReader([]byte("RIFF")))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotImplemented)
	}
}

func TestVoiceSocket_CaptureAndReply(t *testing.T) {
	transcriber := &sttmock.Provider{Text: "What is Tesla's stock price?"}
	srv, runner := newTestServer(t, WithSTT(transcriber))
	runner.result = types.QueryResult{
		Intent:        "get_stock_price",
		FinalResponse: "The current stock price of TSLA is $242.50.",
	}

	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	ctx := context.Background()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/voice"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	pcm := make([]byte, 640)
	if err := conn.Write(ctx, websocket.MessageBinary, pcm); err != nil {
		t.Fatalf("write pcm: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, []byte("stop")); err != nil {
		t.Fatalf("write stop: %v", err)
	}

	var res types.QueryResult
	if err := wsjson.Read(ctx, conn, &res); err != nil {
		t.Fatalf("read result: %v", err)
	}
	if res.FinalResponse != "The current stock price of TSLA is $242.50." {
		t.Errorf("final response = %q", res.FinalResponse)
	}
	if len(runner.texts) != 1 || runner.texts[0] != "What is Tesla's stock price?" {
		t.Errorf("runner texts = %v", runner.texts)
	}

	// The transcriber must have received a WAV container, not raw PCM.
	if len(transcriber.Audio) != 1 {
		t.Fatalf("transcriber calls = %d, want 1", len(transcriber.Audio))
	}
	wav := transcriber.Audio[0]
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Errorf("audio is not a WAV container: % x", wav[:12])
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Errorf("data chunk size = %d, want %d", got, len(pcm))
	}
}

func TestVoiceSocket_StopWithoutAudio(t *testing.T) {
	srv, runner := newTestServer(t, WithSTT(&sttmock.Provider{Text: "ignored"}))

	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	ctx := context.Background()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/voice"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	if err := conn.Write(ctx, websocket.MessageText, []byte("stop")); err != nil {
		t.Fatalf("write stop: %v", err)
	}

	var res types.QueryResult
	if err := wsjson.Read(ctx, conn, &res); err != nil {
		t.Fatalf("read result: %v", err)
	}
	if res.Error != "Could not understand the audio." {
		t.Errorf("error = %q, want %q", res.Error, "Could not understand the audio.")
	}
	if len(runner.texts) != 0 {
		t.Errorf("runner should not be called, got %v", runner.texts)
	}
}

func TestEncodeWAV(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	wav := encodeWAV(pcm, 16000, 1)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("wav length = %d, want %d", len(wav), 44+len(pcm))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Error("missing RIFF/WAVE/data markers")
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 16000 {
		t.Errorf("sample rate = %d, want 16000", got)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(wav[28:32]); got != 32000 {
		t.Errorf("byte rate = %d, want 32000", got)
	}
	if !bytes.Equal(wav[44:], pcm) {
		t.Error("pcm payload was not copied")
	}
}
