package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func passing(name string) Checker {
	return Checker{Name: name, Check: func(_ context.Context) error { return nil }}
}

func failing(name, msg string) Checker {
	return Checker{Name: name, Check: func(_ context.Context) error { return errors.New(msg) }}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) result {
	t.Helper()
	var body result
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestHealthzAlwaysOK(t *testing.T) {
	// Liveness ignores dependencies entirely, even failing ones.
	h := New(failing("postgres", "connection refused"))

	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if body := decodeBody(t, rec); body.Status != "ok" {
		t.Errorf("body status = %q, want ok", body.Status)
	}
}

func TestReadyzAllDependenciesUp(t *testing.T) {
	h := New(passing("postgres"), passing("whisper"))

	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest("GET", "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := decodeBody(t, rec)
	if body.Status != "ok" {
		t.Errorf("body status = %q, want ok", body.Status)
	}
	if body.Checks["postgres"] != "ok" || body.Checks["whisper"] != "ok" {
		t.Errorf("checks = %v, want both ok", body.Checks)
	}
}

func TestReadyzOneDependencyDown(t *testing.T) {
	h := New(failing("postgres", "connection refused"), passing("whisper"))

	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest("GET", "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	body := decodeBody(t, rec)
	if body.Status != "fail" {
		t.Errorf("body status = %q, want fail", body.Status)
	}
	if body.Checks["postgres"] != "fail: connection refused" {
		t.Errorf("postgres = %q", body.Checks["postgres"])
	}
	// The healthy dependency still reports so the failing one can be told
	// apart.
	if body.Checks["whisper"] != "ok" {
		t.Errorf("whisper = %q, want ok", body.Checks["whisper"])
	}
}

func TestReadyzNoCheckersIsReady(t *testing.T) {
	rec := httptest.NewRecorder()
	New().Readyz(rec, httptest.NewRequest("GET", "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestReadyzChecksRespectRequestContext(t *testing.T) {
	h := New(Checker{Name: "slow", Check: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest("GET", "/readyz", nil).WithContext(ctx)

	rec := httptest.NewRecorder()
	h.Readyz(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestRegisterMountsBothEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	New(passing("postgres")).Register(mux)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}
