// ============================================================================
// sexpr - Infix to S-expression converter
// ============================================================================
//
// Package:     handler
// Description: HTTP and websocket surface of the converter
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	mdwerror "github.com/msto63/sexpr/foundation/core/error"
	"github.com/msto63/sexpr/internal/service"
	"github.com/msto63/sexpr/internal/store"
	"github.com/msto63/sexpr/pkg/core/health"
	"github.com/msto63/sexpr/pkg/core/logging"
	"github.com/msto63/sexpr/pkg/core/version"
)

// maxBodyBytes bounds request bodies; expressions are single lines
const maxBodyBytes = 64 * 1024

// Handler handles HTTP requests
type Handler struct {
	converter *service.Converter
	health    *health.Registry
	logger    *logging.Logger
	startTime time.Time
}

// ConvertRequest is the body of POST /api/v1/convert and /api/v1/tokenize
type ConvertRequest struct {
	Expression string `json:"expression"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// InfoResponse describes the running server
type InfoResponse struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Uptime    string   `json:"uptime"`
	Endpoints []string `json:"endpoints"`
}

// NewHandler creates a new HTTP handler
func NewHandler(converter *service.Converter, registry *health.Registry) *Handler {
	return &Handler{
		converter: converter,
		health:    registry,
		logger:    logging.New("http-handler"),
		startTime: time.Now(),
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	path = strings.Trim(path, "/")

	switch path {
	case "":
		h.handleRoot(w, r)
	case "healthz", "health":
		h.handleHealth(w, r)
	case "convert":
		h.handleConvert(w, r)
	case "tokenize":
		h.handleTokenize(w, r)
	default:
		h.writeError(w, http.StatusNotFound, "not_found", "Endpoint not found", r.URL.Path)
	}
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, InfoResponse{
		Name:    "sexpr",
		Version: version.Gateway,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Endpoints: []string{
			"GET /healthz",
			"POST /api/v1/convert",
			"POST /api/v1/tokenize",
			"GET /ws",
		},
	})
}

// handleHealth reports the registry; degraded still counts as available
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": string(health.StatusUnknown)})
		return
	}

	report := h.health.Check(r.Context())
	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, report)
}

func (h *Handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	reply, err := h.converter.Convert(r.Context(), store.SourceHTTP, r.Header.Get("X-Request-ID"), req.Expression)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	// a syntax error is a valid answer about the expression
	status := http.StatusOK
	if !reply.OK {
		status = http.StatusUnprocessableEntity
	}
	h.writeJSON(w, status, reply)
}

func (h *Handler) handleTokenize(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	reply, err := h.converter.Tokenize(r.Context(), req.Expression)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request) (*ConvertRequest, bool) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST", r.Method)
		return nil, false
	}

	var req ConvertRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body", err.Error())
		return nil, false
	}
	return &req, true
}

// writeServiceError maps a converter error onto an HTTP status
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	code := mdwerror.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case mdwerror.CodeInvalidInput:
		status = http.StatusBadRequest
	case mdwerror.CodeInputTooLarge:
		status = http.StatusRequestEntityTooLarge
	default:
		h.logger.Error("Conversion failed", "error", err)
	}

	message := err.Error()
	var merr *mdwerror.Error
	if errors.As(err, &merr) {
		message = merr.Message()
	}
	h.writeError(w, status, strings.ToLower(string(code)), message, "")
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}
