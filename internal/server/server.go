// Package server exposes the finvox query pipeline over HTTP.
//
// Endpoints:
//
//   - POST /api/query — JSON text query, returns the full pipeline result.
//   - POST /api/voice — WAV upload, transcribed then run through the
//     pipeline.
//   - GET  /ws/voice  — websocket capture session for streamed PCM audio.
//   - GET  /healthz, /readyz — probes from internal/health.
//   - GET  /metrics — Prometheus scrape endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/finvox/finvox/internal/health"
	"github.com/finvox/finvox/internal/observe"
	"github.com/finvox/finvox/pkg/provider/stt"
	"github.com/finvox/finvox/pkg/types"
)

const (
	// maxAudioBytes caps a single voice upload. 10 MiB is roughly five
	// minutes of 16 kHz mono 16-bit WAV, far beyond any spoken query.
	maxAudioBytes = 10 << 20

	// maxQueryBytes caps the /api/query request body.
	maxQueryBytes = 64 << 10

	shutdownTimeout = 15 * time.Second
)

// transcriptFailedMessage is returned when the recogniser produced no
// usable text for an uploaded recording.
const transcriptFailedMessage = "Could not understand the audio."

// QueryRunner executes one query through the full pipeline. Implemented
// by query.Orchestrator.
type QueryRunner interface {
	Run(ctx context.Context, text string, useRetriever bool) types.QueryResult
}

// Option configures a Server.
type Option func(*Server)

// WithSTT enables the voice endpoints with the given transcriber. Voice
// requests return 501 when no transcriber is configured.
func WithSTT(p stt.Provider) Option {
	return func(s *Server) { s.stt = p }
}

// WithHealth registers the given health handler's probe routes.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) { s.health = h }
}

// WithMetrics overrides the default metrics instance.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// Server is the finvox HTTP front end.
type Server struct {
	addr    string
	runner  QueryRunner
	stt     stt.Provider
	health  *health.Handler
	metrics *observe.Metrics

	httpSrv *http.Server
}

// New creates a Server listening on addr once Run is called.
func New(addr string, runner QueryRunner, opts ...Option) (*Server, error) {
	if runner == nil {
		return nil, errors.New("server: query runner is required")
	}
	s := &Server{addr: addr, runner: runner}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/query", s.handleQuery)
	mux.HandleFunc("POST /api/voice", s.handleVoice)
	mux.HandleFunc("GET /ws/voice", s.handleVoiceSocket)
	mux.Handle("GET /metrics", promhttp.Handler())
	if s.health != nil {
		s.health.Register(mux)
	}
	return observe.Middleware(s.metrics)(mux)
}

// Run serves HTTP until ctx is cancelled, then drains in-flight
// requests with a shutdownTimeout grace period.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server: listening", "addr", s.addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listen on %s: %w", s.addr, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// queryRequest is the POST /api/query body.
type queryRequest struct {
	Text         string `json:"text"`
	UseRetriever bool   `json:"use_retriever"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	body := http.MaxBytesReader(w, r.Body, maxQueryBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	res := s.runner.Run(r.Context(), req.Text, req.UseRetriever)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	if s.stt == nil {
		writeError(w, http.StatusNotImplemented, "no speech-to-text provider configured")
		return
	}

	useRetriever := r.URL.Query().Get("use_retriever") == "true"
	audio := http.MaxBytesReader(w, r.Body, maxAudioBytes)

	start := time.Now()
	text, err := s.stt.Transcribe(r.Context(), audio)
	s.metrics.STTDuration.Record(r.Context(), time.Since(start).Seconds())
	if err != nil {
		slog.Error("server: transcription failed", "err", err)
		s.metrics.RecordProviderRequest(r.Context(), "stt", "error")
		s.metrics.RecordProviderError(r.Context(), "stt")
		writeError(w, http.StatusBadGateway, "transcription failed: "+err.Error())
		return
	}
	s.metrics.RecordProviderRequest(r.Context(), "stt", "ok")
	if text == "" {
		writeJSON(w, http.StatusOK, types.QueryResult{Error: transcriptFailedMessage})
		return
	}

	slog.Debug("server: voice transcript", "text", text)
	res := s.runner.Run(r.Context(), text, useRetriever)
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encoding failed"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
