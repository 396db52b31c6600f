// Package health provides liveness and readiness HTTP handlers.
//
// /healthz reports liveness and always returns 200. /readyz runs every
// registered [Checker] and returns 200 only when all of them pass, so a
// deployment can hold traffic until the metric store and providers are
// reachable. Responses are JSON with a "status" field and a per-check
// "checks" map.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/finvox/finvox/internal/store"
)

// checkTimeout bounds a single readiness check.
const checkTimeout = 5 * time.Second

// Checker is a named readiness probe. Check returns nil when the
// dependency is usable and an error describing the problem otherwise.
type Checker struct {
	// Name labels the check in the JSON response (e.g. "store", "fmp").
	Name string

	// Check probes the dependency. It must respect context cancellation.
	Check func(ctx context.Context) error
}

// StoreChecker probes the local metric store.
func StoreChecker(s store.MetricStore) Checker {
	return Checker{
		Name: "store",
		Check: func(ctx context.Context) error {
			return s.Ping(ctx)
		},
	}
}

type response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler serves the /healthz and /readyz endpoints. The checker list
// is fixed at construction time, so the handler is safe for concurrent
// use.
type Handler struct {
	checkers []Checker
}

// New creates a Handler that runs the given checkers, in order, on each
// /readyz request.
func New(checkers ...Checker) *Handler {
	c := make([]Checker, len(checkers))
	copy(c, checkers)
	return &Handler{checkers: c}
}

// Healthz always returns 200 OK. A process able to serve HTTP is alive.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, response{Status: "ok"})
}

// Readyz returns 200 only when every registered checker passes. Each
// checker runs with a checkTimeout deadline derived from the request
// context.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.checkers))
	ready := true

	for _, c := range h.checkers {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := c.Check(ctx)
		cancel()

		if err != nil {
			checks[c.Name] = "fail: " + err.Error()
			ready = false
		} else {
			checks[c.Name] = "ok"
		}
	}

	res := response{Status: "ok", Checks: checks}
	status := http.StatusOK
	if !ready {
		res.Status = "fail"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, res)
}

// Register adds the health routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
