// Package transport contains the external-facing adapters: the HTTP
// request/response surface and the serial line emitter. Both are thin shims
// over the acquisition loop and contain no business logic.
package transport

import (
	"errors"
	"io"
	"net/http"

	"github.com/hybridecologies/adcbridge/internal/logging"
	"github.com/hybridecologies/adcbridge/pkg/chancfg"
	"github.com/hybridecologies/adcbridge/pkg/daq"
	"github.com/hybridecologies/adcbridge/pkg/telemetry"
)

// maxConfigBody bounds config write bodies; the grammar never needs more.
const maxConfigBody = 64 * 1024

// Handler serves the HTTP protocol surface.
type Handler struct {
	loop *daq.Loop
	log  logging.Logger
}

// NewHandler builds the HTTP surface over the acquisition loop.
func NewHandler(loop *daq.Loop, log logging.Logger) http.Handler {
	if log == nil {
		log = logging.Noop()
	}
	h := &Handler{loop: loop, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("/data", h.handleData)
	mux.HandleFunc("/config", h.handleConfig)
	mux.HandleFunc("/stream-info", h.handleStreamInfo)
	mux.HandleFunc("/", h.handleNotFound)
	return mux
}

func (h *Handler) handleData(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, telemetry.EncodeError("method not allowed"))
		return
	}
	writeJSON(w, http.StatusOK, h.loop.Telemetry())
}

func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	setCORS(w)

	switch r.Method {
	case http.MethodOptions:
		// CORS preflight: headers only, no body.
		w.WriteHeader(http.StatusNoContent)

	case http.MethodGet:
		body, err := telemetry.EncodeConfig(h.loop.ConfigView())
		if err != nil {
			h.log.Error("failed to encode config view", logging.Err(err))
			writeJSON(w, http.StatusInternalServerError, telemetry.EncodeError("internal error"))
			return
		}
		writeJSON(w, http.StatusOK, body)

	case http.MethodPost:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxConfigBody))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, telemetry.EncodeError("failed to read body"))
			return
		}
		if err := h.loop.ApplyConfig(body); err != nil {
			writeJSON(w, configErrorStatus(err), telemetry.EncodeError(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, telemetry.StatusOK())

	default:
		writeJSON(w, http.StatusMethodNotAllowed, telemetry.EncodeError("method not allowed"))
	}
}

func (h *Handler) handleStreamInfo(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, telemetry.EncodeError("method not allowed"))
		return
	}
	body, err := telemetry.EncodeStreamInfo(h.loop.ConfigView())
	if err != nil {
		h.log.Error("failed to encode stream info", logging.Err(err))
		writeJSON(w, http.StatusInternalServerError, telemetry.EncodeError("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, telemetry.EncodeError("not found"))
}

// configErrorStatus maps apply errors to HTTP status codes. Validation
// failures are client errors; anything else (hardware push failure) is not.
func configErrorStatus(err error) int {
	var invalid *chancfg.InvalidConfigError
	if errors.Is(err, chancfg.ErrInvalidJSON) || errors.As(err, &invalid) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func setCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
