// ABOUTME: Tests for the conversion service covering validation, rendering, failures, CORS and request IDs.
// ABOUTME: Uses httptest against the chi router so no network listener is required.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/mdpreview/render"
)

const testOrigin = "http://localhost:3000"

// newTestServer creates a server with the given renderer (nil for goldmark defaults).
func newTestServer(t *testing.T, r render.Renderer) *Server {
	t.Helper()
	srv, err := NewServer(ServerConfig{
		AllowedOrigin: testOrigin,
		MaxBodyBytes:  1 << 10,
		Renderer:      r,
	})
	require.NoError(t, err)
	return srv
}

func postConvert(t *testing.T, srv http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var payload ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload.Error
}

func TestConvertHeading(t *testing.T) {
	srv := newTestServer(t, nil)

	w := postConvert(t, srv, `{"markdown":"# Hello"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ConvertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.HTML, "<h1")
	assert.Contains(t, resp.HTML, "Hello</h1>")
}

func TestConvertRejectsMissingInput(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"empty string", `{"markdown":""}`},
		{"whitespace only", `{"markdown":"  \n\t "}`},
		{"null", `{"markdown":null}`},
		{"number", `{"markdown":42}`},
		{"array", `{"markdown":["# a"]}`},
		{"malformed json", `{"markdown":`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postConvert(t, srv, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Markdown input is required", decodeError(t, w))
		})
	}
}

func TestConvertRejectsOversizedBody(t *testing.T) {
	srv := newTestServer(t, nil)

	body := `{"markdown":"` + strings.Repeat("a", 2<<10) + `"}`
	w := postConvert(t, srv, body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Markdown input too large", decodeError(t, w))
}

func TestConvertRendererFailureIsGeneric(t *testing.T) {
	tests := []struct {
		name     string
		renderer render.Renderer
	}{
		{"error", render.Func(func(ctx context.Context, md string) (string, error) {
			return "", errors.New("secret internal path /etc/renderer")
		})},
		{"panic", render.Func(func(ctx context.Context, md string) (string, error) {
			panic("secret internal path /etc/renderer")
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.renderer)

			w := postConvert(t, srv, `{"markdown":"# boom"}`)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, "Server error", decodeError(t, w))
			assert.NotContains(t, w.Body.String(), "secret")
		})
	}
}

func TestConvertFailureIsLoggedWithRequestID(t *testing.T) {
	logger, hook := test.NewNullLogger()
	srv, err := NewServer(ServerConfig{
		Renderer: render.Func(func(ctx context.Context, md string) (string, error) {
			return "", errors.New("kaput")
		}),
		Logger: logger,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(`{"markdown":"x"}`))
	req.Header.Set(requestIDHeader, "req-123")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var found bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "markdown conversion failed" {
			found = true
			assert.Equal(t, logrus.ErrorLevel, entry.Level)
			assert.Equal(t, "req-123", entry.Data["request_id"])
		}
	}
	assert.True(t, found, "renderer failure should be logged")
}

func TestConvertIsIdempotent(t *testing.T) {
	srv := newTestServer(t, nil)
	body := `{"markdown":"| a | b |\n|---|---|\n| 1 | 2 |\n\n- [ ] task"}`

	first := postConvert(t, srv, body)
	second := postConvert(t, srv, body)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestConvertMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/convert", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/convert", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	// Browsers send the requested header names lowercased.
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Less(t, w.Code, 300)
	assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "content-type", strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")))
}

func TestCORSRejectsOtherOrigins(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/convert", bytes.NewBufferString(`{"markdown":"# hi"}`))
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDEchoedOrGenerated(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(requestIDHeader), 26, "generated IDs are ULIDs")
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestIndexAndStaticAssets(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/", "/static/js/editor.js", "/static/css/editor.css"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			body, _ := io.ReadAll(w.Result().Body)
			assert.NotEmpty(t, body)
		})
	}
}

func TestIndexUsesPageSettings(t *testing.T) {
	srv, err := NewServer(ServerConfig{Page: &PageData{
		Debounce: 450 * time.Millisecond,
		ViewMode: "bogus",
		Document: "# mine",
	}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `data-debounce-ms="450"`)
	assert.Contains(t, body, `data-timeout-ms="5000"`)
	assert.Contains(t, body, `class="workspace split"`)
	assert.Contains(t, body, "# mine")
	assert.Contains(t, body, `data-theme="light"`)
}

func TestNewServerDefaults(t *testing.T) {
	srv, err := NewServer(ServerConfig{})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:3001", srv.Addr())
	assert.Equal(t, "http://localhost:3000", srv.origin)
	assert.Equal(t, DefaultMaxBodyBytes, srv.maxBody)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	srv, err := NewServer(ServerConfig{Addr: "127.0.0.1:0"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()
	cancel()

	assert.NoError(t, <-done)
}
