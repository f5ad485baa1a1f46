// Package health serves the liveness and readiness endpoints.
//
// Liveness (/healthz) only says the process is up. Readiness (/readyz) runs
// the registered dependency checks — the allowance database, the local
// transcription server — and fails the probe when any of them fail, so the
// load balancer stops routing new interview sessions to an instance that
// could not serve them.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// checkTimeout bounds each dependency check. Readiness is polled frequently;
// a hung dependency must not hang the probe.
const checkTimeout = 5 * time.Second

// Checker is one named dependency check. Check returns nil when the
// dependency can serve, and must respect context cancellation.
type Checker struct {
	// Name keys the check's verdict in the response body ("postgres",
	// "whisper").
	Name string

	Check func(ctx context.Context) error
}

// result is the response body of both endpoints.
type result struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler answers /healthz and /readyz. The checker list is fixed at
// construction, so it is safe for concurrent use.
type Handler struct {
	checkers []Checker
}

// New creates a Handler running the given checkers, in order, on every
// readiness request.
func New(checkers ...Checker) *Handler {
	return &Handler{checkers: append([]Checker(nil), checkers...)}
}

// Healthz reports liveness. Serving the request is the whole check.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, result{Status: "ok"})
}

// Readyz reports readiness: 200 when every checker passes, 503 with the
// per-check verdicts otherwise.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	res := result{Status: "ok", Checks: make(map[string]string, len(h.checkers))}
	status := http.StatusOK

	for _, c := range h.checkers {
		if err := h.runCheck(r.Context(), c); err != nil {
			res.Checks[c.Name] = "fail: " + err.Error()
			res.Status = "fail"
			status = http.StatusServiceUnavailable
		} else {
			res.Checks[c.Name] = "ok"
		}
	}

	writeJSON(w, status, res)
}

// runCheck executes one checker under the per-check timeout.
func (h *Handler) runCheck(ctx context.Context, c Checker) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return c.Check(ctx)
}

// Register mounts both endpoints on mux.
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
