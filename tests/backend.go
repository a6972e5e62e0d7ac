// Package testutil holds helpers shared by the app level tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/mrejesho/core"
)

// Backend is a stub of the feedback backend REST API. Routes are relative to its "/api/" base.
type Backend struct {
	srv   *httptest.Server
	mux   *http.ServeMux
	mu    sync.Mutex
	calls map[string]int
}

func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{mux: http.NewServeMux(), calls: make(map[string]int)}
	b.srv = httptest.NewServer(b.mux)
	t.Cleanup(b.srv.Close)
	return b
}

// Handle serves route with h, counting the calls.
func (b *Backend) Handle(route string, h http.HandlerFunc) {
	b.mux.HandleFunc("/api/"+route, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[route]++
		b.mu.Unlock()
		h(w, r)
	})
}

// JSON serves route with a fixed JSON body. body may be a string of raw JSON.
func (b *Backend) JSON(route string, status int, body interface{}) {
	b.Handle(route, func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, body)
	})
}

// Calls returns the number of requests route received.
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

func (b *Backend) URL() string {
	return b.srv.URL + "/api/"
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if raw, ok := body.(string); ok {
		_, _ = w.Write([]byte(raw))
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// Config returns an app config for tests, talking to the backend at backendURL.
func Config(backendURL string) *core.Config {
	return &core.Config{
		TestMode:         true,
		Env:              "TEST",
		Build:            "test",
		AppName:          "Mrejesho",
		SecretKey:        "t3st-s3cr3t-k3y",
		FrontendBaseURL:  "http://localhost:5173",
		DefaultFromEmail: mail.Address{Name: "Mrejesho", Address: "noreply@mrejesho.test"},
		Server: core.ServerConfig{
			Address:                    ":0",
			ShutdownTimeout:            time.Second,
			JWTExpirationDelta:         time.Hour,
			JWTRememberExpirationDelta: 24 * time.Hour,
		},
		Backend: core.BackendConfig{BaseURL: backendURL, Timeout: 5 * time.Second},
	}
}

// NopLogger discards every event.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}
