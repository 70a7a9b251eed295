// ABOUTME: HTTP handlers for the conversion endpoint, health probe and embedded editor page.
// ABOUTME: Maps validation, size and renderer failures to fixed JSON error payloads without leaking internals.
package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// Error messages returned to callers. Renderer details are never exposed.
const (
	msgMarkdownRequired = "Markdown input is required"
	msgMarkdownTooLarge = "Markdown input too large"
	msgServerError      = "Server error"
)

// ConvertRequest is the body of POST /api/convert. Markdown is decoded as raw
// JSON so that a non-string value can be told apart from a missing key.
type ConvertRequest struct {
	Markdown json.RawMessage `json:"markdown"`
}

// ConvertResponse is the success payload of POST /api/convert.
type ConvertResponse struct {
	HTML string `json:"html"`
}

// ErrorResponse is the failure payload of every API route.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleConvert validates the markdown field and renders it.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: msgMarkdownTooLarge})
			return
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgMarkdownRequired})
		return
	}

	markdown, ok := markdownFromBody(body)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgMarkdownRequired})
		return
	}

	html, err := s.renderer.Render(r.Context(), markdown)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"request_id": requestIDFrom(r.Context()),
			"bytes":      len(markdown),
		}).WithError(err).Error("markdown conversion failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgServerError})
		return
	}

	writeJSON(w, http.StatusOK, ConvertResponse{HTML: html})
}

// markdownFromBody extracts a non-blank markdown string from a request body.
// Missing keys, non-string values, malformed JSON and whitespace-only
// strings all count as missing input.
func markdownFromBody(body []byte) (string, bool) {
	var req ConvertRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", false
	}
	if len(req.Markdown) == 0 {
		return "", false
	}

	var markdown string
	if err := json.Unmarshal(req.Markdown, &markdown); err != nil {
		return "", false
	}
	if strings.TrimSpace(markdown) == "" {
		return "", false
	}
	return markdown, true
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIndex serves the embedded browser editor.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.templates.RenderTo(&buf, "index.html", s.page); err != nil {
		s.logger.WithError(err).WithField("request_id", requestIDFrom(r.Context())).Error("rendering index page")
		http.Error(w, msgServerError, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
